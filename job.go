package docload

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/docload/blobstore"
	"github.com/hupe1980/docload/corpus"
	"github.com/hupe1980/docload/internal/chunk"
	"github.com/hupe1980/docload/internal/rendezvous"
	"github.com/hupe1980/docload/internal/resource"
	"github.com/hupe1980/docload/internal/round"
	"github.com/hupe1980/docload/internal/schedule"
)

// Job writes a corpus to a store pool for a number of rounds.
//
// A Job holds no state between runs; Run may be called more than once.
type Job struct {
	corpus *corpus.Corpus
	pool   *blobstore.Pool
	opts   options
}

// New creates a Job. It returns an error if the configuration is invalid.
func New(c *corpus.Corpus, pool *blobstore.Pool, optFns ...Option) (*Job, error) {
	if c == nil {
		return nil, ErrNoCorpus
	}
	if pool == nil || pool.Len() == 0 {
		return nil, ErrNoStore
	}

	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}

	return &Job{corpus: c, pool: pool, opts: o}, nil
}

// Mode returns the configured mode.
func (j *Job) Mode() Mode { return j.opts.mode }

// URIBase returns the prefix of every document name written by the job.
func (j *Job) URIBase() string { return j.opts.uriBase }

// Rounds returns the configured number of rounds.
func (j *Job) Rounds() int { return j.opts.rounds }

// Run executes all rounds and returns once every round has completed.
//
// Write failures do not make Run fail; they are reported by Report.OK and
// Report.Err. Run only returns an error when ctx is canceled, together with
// a report of the rounds started so far. Without cancellation Run waits for
// as long as any write is outstanding.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	o := j.opts
	log := o.logger.WithMode(o.mode)
	start := time.Now()

	var limits *resource.Controller
	if cfg := (resource.Config{
		MaxInFlightWrites: o.maxInFlight,
		WritesPerSec:      o.writeRate,
		BytesPerSec:       o.byteRate,
	}); cfg.Enabled() {
		limits = resource.NewController(cfg)
	}

	log.InfoContext(ctx, "job started",
		"rounds", o.rounds,
		"items", j.corpus.Len(),
		"splits_per_round", chunk.Count(j.corpus.Len(), o.splitSize),
		"uri_base", o.uriBase,
	)

	var (
		wg     sync.WaitGroup
		states []*round.State
		err    error
	)

	// newState registers a round whose completion is logged and recorded
	// before the scheduler can observe it.
	newState := func(i int) *round.State {
		st := round.NewState(i)
		wg.Add(1)
		st.OnComplete(func(st *round.State) {
			defer wg.Done()
			s := st.Stats()
			log.LogRound(ctx, s)
			o.metricsCollector.RecordRound(s.Index, s.Duration, s.FailedWrites)
		})
		return st
	}

	switch o.mode {
	case ModeBatched:
		sched := &schedule.Scheduler{Ceiling: o.ceiling, PollInterval: o.pollInterval, Logger: log.Logger}
		states, err = sched.RunBatched(ctx, o.rounds, func(i int) *round.State {
			log.LogRoundStart(ctx, i, o.rounds)
			st := newState(i)
			w := &round.Batched{
				Corpus:    j.corpus,
				Base:      o.uriBase,
				SplitSize: o.splitSize,
				Store:     j.pool.Pick(),
				Limits:    limits,
				Metrics:   o.metricsCollector,
				Logger:    log.WithRound(i).Logger,
			}
			go w.Run(ctx, st)
			return st
		})

	case ModePerItem:
		sched := &schedule.Scheduler{PollInterval: o.pollInterval, Logger: log.Logger}
		err = sched.RunSerial(ctx, o.rounds, func(i int) *rendezvous.Counter {
			log.LogRoundStart(ctx, i, o.rounds)
			st := newState(i)
			states = append(states, st)
			w := &round.PerItem{
				Corpus:  j.corpus,
				Base:    o.uriBase,
				Store:   j.pool.Pick(),
				Limits:  limits,
				Metrics: o.metricsCollector,
				Logger:  log.WithRound(i).Logger,
			}
			return w.Start(ctx, st)
		})
	}

	if err == nil {
		// Every round has reported; wait for the completion hooks to return.
		wg.Wait()
	}

	report := newReport(o.mode, o.uriBase, j.corpus.Len(), j.corpus.Bytes(), o.rounds)
	for _, st := range states {
		report.add(st)
	}
	report.Duration = time.Since(start)

	if err != nil {
		log.WarnContext(ctx, "job interrupted",
			"started", len(states),
			"completed", report.Completed,
			"error", err,
		)
		return report, err
	}

	log.LogReport(ctx, report)
	return report, nil
}
