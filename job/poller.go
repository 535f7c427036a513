package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxWait      = 300 * time.Second
)

type OutcomeKind int

const (
	OutcomeCompleted OutcomeKind = iota
	OutcomeFailed
	OutcomeTimedOut
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Outcome is the terminal result of waiting on a job. A TimedOut outcome
// keeps the job id so polling can be resumed later.
type Outcome struct {
	Kind  OutcomeKind
	JobID string

	// nil when completed without results
	Payload *Result

	Elapsed time.Duration
	Polls   int
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller waits on a remote job by querying its status on a fixed interval.
//
// Elapsed time is counted in whole intervals, the latency of the status
// request itself is not added. The real wall clock time before a timeout
// may therefore exceed maxWait by the sum of request latencies.
type Poller struct {
	fetcher StatusFetcher
	sleep   SleepFunc
	onPoll  func(snap *Snapshot, elapsed time.Duration)
}

type Option func(*Poller)

func WithSleep(sleep SleepFunc) Option {
	return func(p *Poller) {
		p.sleep = sleep
	}
}

// WithOnPoll registers a progress callback invoked after every status read.
func WithOnPoll(fn func(snap *Snapshot, elapsed time.Duration)) Option {
	return func(p *Poller) {
		p.onPoll = fn
	}
}

func NewPoller(fetcher StatusFetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher: fetcher,
		sleep:   Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// AwaitCompletion polls jobID until it succeeds, fails or maxWait elapses.
// Transport errors are returned as is, wrapped, without retry.
func (p *Poller) AwaitCompletion(
	ctx context.Context,
	jobID string,
	interval, maxWait time.Duration,
) (Outcome, error) {
	if jobID == "" {
		return Outcome{}, ErrEmptyJobID
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	var (
		elapsed time.Duration
		polls   int
	)

	for {
		snap, err := p.fetcher.FetchStatus(ctx, jobID)
		polls++
		if err != nil {
			return Outcome{}, fmt.Errorf("fetch status of job %s: %w", jobID, err)
		}
		if snap == nil {
			return Outcome{}, fmt.Errorf("fetch status of job %s: %w", jobID, ErrNoSnapshot)
		}

		if p.onPoll != nil {
			p.onPoll(snap, elapsed)
		}

		switch snap.Status {
		case StatusSuccess:
			out := Outcome{Kind: OutcomeCompleted, JobID: jobID, Elapsed: elapsed, Polls: polls}
			if len(snap.Results) > 0 {
				res := snap.Results[0]
				out.Payload = &res
			}
			slog.Debug("[poller] job completed", "job_id", jobID, "polls", polls, "elapsed", elapsed)
			return out, nil

		case StatusFail:
			slog.Debug("[poller] job failed", "job_id", jobID, "polls", polls)
			return Outcome{Kind: OutcomeFailed, JobID: jobID, Elapsed: elapsed, Polls: polls}, nil
		}

		if err := p.sleep(ctx, interval); err != nil {
			return Outcome{}, err
		}
		elapsed += interval

		if elapsed >= maxWait {
			slog.Debug("[poller] job timed out", "job_id", jobID, "polls", polls, "elapsed", elapsed)
			return Outcome{Kind: OutcomeTimedOut, JobID: jobID, Elapsed: elapsed, Polls: polls}, nil
		}
	}
}
