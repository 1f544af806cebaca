package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jgivc/radarfetch/internal/adapter/archive"
	"github.com/jgivc/radarfetch/internal/config"
	"github.com/jgivc/radarfetch/internal/entity"
	"github.com/jgivc/radarfetch/internal/service/fetch"
	"github.com/jgivc/radarfetch/internal/storage/catalog"
	"github.com/jgivc/radarfetch/internal/storage/imagestore"
	"github.com/spf13/afero"
)

type App struct {
	cfgPath string
	job     entity.Job
}

func New(cfgPath string, job entity.Job) *App {
	return &App{
		cfgPath: cfgPath,
		job:     job,
	}
}

// Run wires the configuration, catalog, archive client and image store
// together and executes one fetch run. The returned error covers conditions
// that prevented the run from starting; per-hour failures are reported in
// the summary and do not fail the run.
func (a *App) Run(ctx context.Context) error {
	cfg, err := config.Load(afero.NewOsFs(), a.cfgPath)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	lo := &slog.HandlerOptions{}
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))

	cat := catalog.New(&cfg.Catalog, log)
	if err := cat.ValidateSite(a.job.Site); err != nil {
		return fmt.Errorf("%w (known sites: %v)", err, cat.Sites())
	}
	if err := cat.ValidateImageType(a.job.ImageType); err != nil {
		return fmt.Errorf("%w (known image types: %v)", err, cat.ImageTypes())
	}

	store := imagestore.NewImageStore(a.job.Directory, log)
	client := archive.NewArchiveClient(&cfg.Archive, log)
	srv := fetch.NewFetchService(client, store, &cfg.Fetcher, log)

	report, err := srv.Run(ctx, a.job)
	if err != nil {
		return err
	}

	a.printSummary(report)

	return nil
}

func (a *App) printSummary(report *entity.Report) {
	fmt.Printf("Run %s: %s/%s\n", report.RunID, report.Site, report.ImageType)
	fmt.Printf("Fetched: %d, skipped: %d, failed: %d\n", report.Fetched, report.Skipped, len(report.Failed))

	if report.Complete() {
		fmt.Println("Done.")

		return
	}

	fmt.Println("Missing hours:")
	for i, ts := range report.Failed {
		fmt.Printf("%d. %s\n", i+1, ts.Format("2006-01-02 15:00"))
	}
}
