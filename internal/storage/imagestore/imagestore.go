package imagestore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	partialSuffix = ".partial"
	dirPerm       = 0o755
	filePerm      = 0o644

	probeFileName = ".radarfetch-probe"
)

type imageStore struct {
	fs  afero.Fs
	dir string
	log *slog.Logger
}

func NewImageStore(dir string, log *slog.Logger) *imageStore {
	return NewImageStoreWithFS(afero.NewOsFs(), dir, log)
}

func NewImageStoreWithFS(fs afero.Fs, dir string, log *slog.Logger) *imageStore {
	return &imageStore{
		fs:  fs,
		dir: dir,
		log: log.With(slog.String("item", "ImageStore")),
	}
}

// Prepare creates the output directory if it does not exist and probes that
// it is writable, so a doomed run fails before the first network call.
func (s *imageStore) Prepare() error {
	if err := s.fs.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	probe := filepath.Join(s.dir, probeFileName)
	if err := afero.WriteFile(s.fs, probe, nil, filePerm); err != nil {
		return fmt.Errorf("output directory is not writable: %w", err)
	}

	if err := s.fs.Remove(probe); err != nil {
		s.log.Warn("Cannot remove probe file", slog.String("path", probe), slog.Any("error", err))
	}

	return nil
}

// Exists reports whether an output file is already present.
func (s *imageStore) Exists(name string) bool {
	_, err := s.fs.Stat(filepath.Join(s.dir, name))
	if err == nil {
		return true
	}

	if os.IsNotExist(err) {
		return false
	}

	s.log.Warn("Cannot stat file", slog.String("name", name), slog.Any("error", err))

	return false
}

// Save writes the image under a partial name first and renames it into
// place, so an interrupted run never leaves a truncated file under the
// final name.
func (s *imageStore) Save(name string, data []byte) error {
	finalPath := filepath.Join(s.dir, name)
	partialPath := finalPath + partialSuffix

	if err := afero.WriteFile(s.fs, partialPath, data, filePerm); err != nil {
		return fmt.Errorf("cannot write file: %w", err)
	}

	// Not all backends rename over an existing file.
	if exists, _ := afero.Exists(s.fs, finalPath); exists {
		if err := s.fs.Remove(finalPath); err != nil {
			return fmt.Errorf("cannot replace existing file: %w", err)
		}
	}

	if err := s.fs.Rename(partialPath, finalPath); err != nil {
		// Leave nothing half-written behind.
		if rmErr := s.fs.Remove(partialPath); rmErr != nil {
			s.log.Warn("Cannot remove partial file", slog.String("path", partialPath), slog.Any("error", rmErr))
		}

		return fmt.Errorf("cannot rename partial file: %w", err)
	}

	return nil
}
