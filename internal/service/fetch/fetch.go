package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jgivc/radarfetch/internal/common"
	"github.com/jgivc/radarfetch/internal/config"
	"github.com/jgivc/radarfetch/internal/entity"
)

type ArchiveClient interface {
	FetchImage(ctx context.Context, req entity.Request) ([]byte, error)
}

type ImageStore interface {
	Prepare() error
	Exists(name string) bool
	Save(name string, data []byte) error
}

type FetchService struct {
	running atomic.Bool
	client  ArchiveClient
	store   ImageStore
	cfg     *config.FetcherConfig
	log     *slog.Logger
}

func NewFetchService(client ArchiveClient, store ImageStore, cfg *config.FetcherConfig, log *slog.Logger) *FetchService {
	return &FetchService{
		client: client,
		store:  store,
		cfg:    cfg,
		log:    log.With(slog.String("item", "FetchService")),
	}
}

// Run visits every hour of the job's range exactly once and fetches one
// image per hour. A failed hour is recorded in the report and never stops
// the rest of the range. With a single worker the hours are fetched in
// strictly chronological order; with more workers the enumeration is still
// chronological but completions may interleave.
func (s *FetchService) Run(ctx context.Context, job entity.Job) (*entity.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, common.ErrFetchRunHasAlreadyStarted
	}
	defer s.running.Store(false)

	report := entity.NewReport(job)
	log := s.log.With(slog.String("run_id", report.RunID))

	hours := job.Range.Hours()
	if len(hours) == 0 {
		log.Info("Empty range, nothing to fetch")

		return report, nil
	}

	// Fail before any network activity if the output directory is unusable.
	if err := s.store.Prepare(); err != nil {
		return nil, fmt.Errorf("cannot prepare image store: %w", err)
	}

	log.Info("Start fetch run",
		slog.String("site", job.Site),
		slog.String("image_type", job.ImageType),
		slog.Int("hours", len(hours)),
		slog.Int("workers", s.cfg.Workers))

	in := make(chan entity.Request, len(hours))
	out := make(chan entity.Result, len(hours))

	for _, hour := range hours {
		in <- entity.Request{Site: job.Site, ImageType: job.ImageType, Timestamp: hour}
	}
	close(in)

	var wg sync.WaitGroup
	wg.Add(s.cfg.Workers)
	for n := 0; n < s.cfg.Workers; n++ {
		go s.worker(ctx, n, in, out, &wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	for res := range out {
		report.Add(res)

		if res.Status == entity.StatusFailed {
			log.Error("Cannot fetch hour", slog.String("request", res.Request.String()), slog.Any("error", res.Err))
		}
	}
	report.SortFailed()

	log.Info("Fetch run done",
		slog.Int("fetched", report.Fetched),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", len(report.Failed)))

	return report, nil
}

func (s *FetchService) worker(ctx context.Context, n int, in chan entity.Request, out chan entity.Result, wg *sync.WaitGroup) {
	defer wg.Done()

	log := s.log.With(slog.Int("worker_id", n))
	log.Debug("Started")

	for req := range in {
		select {
		case <-ctx.Done():
			log.Info("Interrupted")

			return
		default:
		}

		out <- s.fetchOne(ctx, req)
	}

	log.Debug("Done")
}

func (s *FetchService) fetchOne(ctx context.Context, req entity.Request) entity.Result {
	name := req.FileName()

	if s.cfg.SkipExisting && s.store.Exists(name) {
		return entity.Result{Request: req, Status: entity.StatusSkipped}
	}

	data, err := s.client.FetchImage(ctx, req)
	if err != nil {
		return entity.Result{Request: req, Status: entity.StatusFailed, Err: err}
	}

	if err := s.store.Save(name, data); err != nil {
		return entity.Result{Request: req, Status: entity.StatusFailed, Err: err}
	}

	return entity.Result{Request: req, Status: entity.StatusFetched}
}
