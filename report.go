package docload

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hupe1980/docload/internal/round"
)

// Report summarizes a job run.
type Report struct {
	Mode         Mode          `json:"mode"`
	URIBase      string        `json:"uri_base"`
	Rounds       int           `json:"rounds"`
	Completed    int           `json:"completed"`
	Items        int           `json:"items"`
	Bytes        int64         `json:"bytes"`
	Splits       int           `json:"splits"`
	Writes       int           `json:"writes"`
	FailedSplits int           `json:"failed_splits"`
	FailedWrites int           `json:"failed_writes"`
	Duration     time.Duration `json:"duration"`

	// RoundStats holds one entry per started round, in round order.
	RoundStats []round.Stats `json:"-"`

	errs []error
}

func newReport(mode Mode, base string, items int, bytes int64, rounds int) *Report {
	return &Report{
		Mode:    mode,
		URIBase: base,
		Rounds:  rounds,
		Items:   items,
		Bytes:   bytes,
	}
}

func (r *Report) add(st *round.State) {
	s := st.Stats()
	r.RoundStats = append(r.RoundStats, s)
	if s.Completed {
		r.Completed++
	}
	r.Splits += s.Splits
	r.Writes += s.Writes
	r.FailedSplits += s.FailedSplits
	r.FailedWrites += s.FailedWrites

	if s.FailedWrites > 0 {
		r.errs = append(r.errs, &RoundError{
			Round:  s.Index,
			Failed: s.FailedWrites,
			Total:  s.Writes,
			cause:  st.Err(),
		})
	}
}

// OK reports whether every round completed without a failed write.
func (r *Report) OK() bool {
	return r.Completed == r.Rounds && r.FailedWrites == 0
}

// Err returns the per-round failures as a single error, or nil.
// Use errors.As with *RoundError to inspect individual rounds.
func (r *Report) Err() error {
	var merr *multierror.Error
	for _, err := range r.errs {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}

// Throughput returns the documents attempted per second.
func (r *Report) Throughput() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Writes) / r.Duration.Seconds()
}
