package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	StatusFetched Status = iota
	StatusSkipped
	StatusFailed
)

type Status int

func (s Status) String() string {
	return [...]string{"fetched", "skipped", "failed"}[s]
}

// Result is the outcome of a single hour.
type Result struct {
	Request Request
	Status  Status
	Err     error
}

// Report aggregates the outcomes of one run. Failed keeps the timestamps of
// the hours that could not be fetched so the caller can see exactly which
// images are missing.
type Report struct {
	RunID     string
	Site      string
	ImageType string
	Fetched   int
	Skipped   int
	Failed    []time.Time
}

func NewReport(job Job) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Site:      job.Site,
		ImageType: job.ImageType,
	}
}

func (r *Report) Add(res Result) {
	switch res.Status {
	case StatusFetched:
		r.Fetched++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed = append(r.Failed, res.Request.Timestamp)
	}
}

// SortFailed restores chronological order after concurrent workers have
// reported out of order.
func (r *Report) SortFailed() {
	sort.Slice(r.Failed, func(i, j int) bool {
		return r.Failed[i].Before(r.Failed[j])
	})
}

// Attempted returns the number of hours that produced any outcome.
func (r *Report) Attempted() int {
	return r.Fetched + r.Skipped + len(r.Failed)
}

// Complete reports whether every attempted hour ended up on disk.
func (r *Report) Complete() bool {
	return len(r.Failed) == 0
}
