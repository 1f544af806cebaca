package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jgivc/radarfetch/internal/config"
	"github.com/jgivc/radarfetch/internal/entity"
	"github.com/stretchr/testify/require"
)

var errArchiveDown = fmt.Errorf("archive down")

type stubClient struct {
	mu       sync.Mutex
	attempts []time.Time
	failAt   map[time.Time]struct{}
}

func (c *stubClient) FetchImage(_ context.Context, req entity.Request) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempts = append(c.attempts, req.Timestamp)
	if _, exists := c.failAt[req.Timestamp]; exists {
		return nil, errArchiveDown
	}

	return []byte("GIF89a-stub"), nil
}

type stubStore struct {
	mu         sync.Mutex
	prepareErr error
	files      map[string][]byte
}

func newStubStore() *stubStore {
	return &stubStore{files: make(map[string][]byte)}
}

func (s *stubStore) Prepare() error {
	return s.prepareErr
}

func (s *stubStore) Exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.files[name]

	return exists
}

func (s *stubStore) Save(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[name] = data

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testJob(startHour, endHour int) entity.Job {
	return entity.Job{
		Site:      "ATL",
		ImageType: "PRECIPET_RAIN_WEATHEROFFICE",
		Range: entity.NewRange(
			time.Date(2021, 2, 1, startHour, 0, 0, 0, time.UTC),
			time.Date(2021, 2, 1, endHour, 0, 0, 0, time.UTC),
		),
		Directory: "/images",
	}
}

func newService(client ArchiveClient, store ImageStore, workers int) *FetchService {
	cfg := &config.FetcherConfig{Workers: workers, SkipExisting: true}

	return NewFetchService(client, store, cfg, testLogger())
}

func TestRunFetchesEveryHourInOrder(t *testing.T) {
	client := &stubClient{}
	store := newStubStore()
	srv := newService(client, store, 1)

	report, err := srv.Run(context.Background(), testJob(0, 2))
	require.NoError(t, err)

	expected := []time.Time{
		time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 2, 1, 1, 0, 0, 0, time.UTC),
		time.Date(2021, 2, 1, 2, 0, 0, 0, time.UTC),
	}
	require.Equal(t, expected, client.attempts)

	require.Equal(t, 3, report.Fetched)
	require.True(t, report.Complete())
	require.Len(t, store.files, 3)
}

func TestRunEmptyRange(t *testing.T) {
	client := &stubClient{}
	store := newStubStore()
	srv := newService(client, store, 1)

	job := testJob(0, 2)
	job.Range = entity.NewRange(job.Range.End, job.Range.Start) // inverted

	report, err := srv.Run(context.Background(), job)
	require.NoError(t, err)

	require.Empty(t, client.attempts)
	require.Equal(t, 0, report.Attempted())
}

func TestRunContinuesAfterFailure(t *testing.T) {
	failed := time.Date(2021, 2, 1, 1, 0, 0, 0, time.UTC)

	client := &stubClient{failAt: map[time.Time]struct{}{failed: {}}}
	store := newStubStore()
	srv := newService(client, store, 1)

	report, err := srv.Run(context.Background(), testJob(0, 3))
	require.NoError(t, err)

	require.Len(t, client.attempts, 4)
	require.Equal(t, 3, report.Fetched)
	require.Equal(t, []time.Time{failed}, report.Failed)
	require.False(t, report.Complete())
}

func TestRunSkipsExistingFiles(t *testing.T) {
	client := &stubClient{}
	store := newStubStore()
	srv := newService(client, store, 1)

	existing := entity.Request{
		Site:      "ATL",
		ImageType: "PRECIPET_RAIN_WEATHEROFFICE",
		Timestamp: time.Date(2021, 2, 1, 1, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(existing.FileName(), []byte("old")))

	report, err := srv.Run(context.Background(), testJob(0, 2))
	require.NoError(t, err)

	require.Len(t, client.attempts, 2)
	require.Equal(t, 2, report.Fetched)
	require.Equal(t, 1, report.Skipped)

	// The existing file is untouched.
	require.Equal(t, []byte("old"), store.files[existing.FileName()])
}

func TestRunIdempotent(t *testing.T) {
	client := &stubClient{}
	store := newStubStore()

	_, err := newService(client, store, 1).Run(context.Background(), testJob(0, 5))
	require.NoError(t, err)
	require.Len(t, client.attempts, 6)

	report, err := newService(client, store, 1).Run(context.Background(), testJob(0, 5))
	require.NoError(t, err)

	// Second run finds everything on disk.
	require.Len(t, client.attempts, 6)
	require.Equal(t, 6, report.Skipped)
	require.Equal(t, 0, report.Fetched)
}

func TestRunWithWorkerPool(t *testing.T) {
	failed := time.Date(2021, 2, 1, 7, 0, 0, 0, time.UTC)

	client := &stubClient{failAt: map[time.Time]struct{}{failed: {}}}
	store := newStubStore()
	srv := newService(client, store, 4)

	report, err := srv.Run(context.Background(), testJob(0, 23))
	require.NoError(t, err)

	require.Len(t, client.attempts, 24)
	require.Equal(t, 23, report.Fetched)
	require.Equal(t, []time.Time{failed}, report.Failed)
	require.Len(t, store.files, 23)
}

func TestRunFatalWhenStoreNotWritable(t *testing.T) {
	client := &stubClient{}
	store := newStubStore()
	store.prepareErr = fmt.Errorf("read-only file system")
	srv := newService(client, store, 1)

	_, err := srv.Run(context.Background(), testJob(0, 2))
	require.Error(t, err)

	// Fatal before any network activity.
	require.Empty(t, client.attempts)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &stubClient{}
	store := newStubStore()
	srv := newService(client, store, 1)

	report, err := srv.Run(ctx, testJob(0, 23))
	require.NoError(t, err)

	// Cancelled before the first hour, nothing attempted.
	require.Empty(t, client.attempts)
	require.Equal(t, 0, report.Attempted())
}
