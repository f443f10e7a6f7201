// Package schedule starts rounds and bounds how many run at once.
//
// Waiting is done by polling at a fixed interval. There is no timeout: a
// round that never completes keeps the scheduler waiting until ctx is
// canceled, which only happens on interrupt.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/hupe1980/docload/internal/rendezvous"
	"github.com/hupe1980/docload/internal/round"
)

const (
	// DefaultCeiling is the number of incomplete rounds that blocks the next one.
	DefaultCeiling = 30

	// DefaultPollInterval is the batched-mode polling period.
	DefaultPollInterval = 200 * time.Millisecond
)

// Scheduler runs rounds under a concurrency throttle.
type Scheduler struct {
	// Ceiling bounds the incomplete rounds in batched mode.
	Ceiling int

	// PollInterval is the period between completion checks.
	PollInterval time.Duration

	Logger *slog.Logger
}

// RunBatched starts loops rounds in index order. Before starting round i it
// waits until fewer than Ceiling of rounds 0..i-1 are incomplete. start must
// launch the round asynchronously and return its state.
//
// After the last round has started, RunBatched waits until every round has
// completed. On cancellation the states started so far are returned with
// ctx.Err().
func (s *Scheduler) RunBatched(ctx context.Context, loops int, start func(i int) *round.State) ([]*round.State, error) {
	ceiling := s.Ceiling
	if ceiling < 1 {
		ceiling = DefaultCeiling
	}

	states := make([]*round.State, 0, max(loops, 0))
	for i := range loops {
		if InFlight(states) >= ceiling {
			s.logger().DebugContext(ctx, "throttling", "round", i, "in_flight", InFlight(states), "ceiling", ceiling)
		}
		if err := s.waitUntil(ctx, func() bool { return InFlight(states) < ceiling }); err != nil {
			return states, err
		}
		states = append(states, start(i))
	}

	if err := s.waitUntil(ctx, func() bool { return InFlight(states) == 0 }); err != nil {
		return states, err
	}
	return states, nil
}

// RunSerial starts loops rounds one after another. Round i+1 is started only
// once the counter returned for round i is done.
func (s *Scheduler) RunSerial(ctx context.Context, loops int, start func(i int) *rendezvous.Counter) error {
	for i := range loops {
		rv := start(i)
		if err := rv.Wait(ctx, s.interval()); err != nil {
			return err
		}
	}
	return nil
}

// InFlight returns the number of states not yet completed.
func InFlight(states []*round.State) int {
	n := 0
	for _, st := range states {
		if !st.Completed() {
			n++
		}
	}
	return n
}

func (s *Scheduler) waitUntil(ctx context.Context, cond func() bool) error {
	if cond() {
		return nil
	}

	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if cond() {
				return nil
			}
		}
	}
}

func (s *Scheduler) interval() time.Duration {
	if s.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return s.PollInterval
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
