package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type scriptedFetcher struct {
	mu       sync.Mutex
	statuses []Status
	results  []Result
	err      error
	calls    int
}

func (f *scriptedFetcher) FetchStatus(_ context.Context, jobID string) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	status := StatusPending
	if len(f.statuses) > 0 {
		status = f.statuses[0]
		if len(f.statuses) > 1 {
			f.statuses = f.statuses[1:]
		}
	}

	snap := &Snapshot{JobID: jobID, Status: status}
	if status == StatusSuccess {
		snap.Results = f.results
	}
	return snap, nil
}

type fakeClock struct {
	sleeps []time.Duration
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	return nil
}

func TestAwaitCompletion(t *testing.T) {
	video := Result{URL: "https://cdn.example/v.mp4", CoverImageURL: "https://cdn.example/v.jpg"}

	tests := []struct {
		name      string
		statuses  []Status
		results   []Result
		interval  time.Duration
		maxWait   time.Duration
		wantKind  OutcomeKind
		wantSleep int
		wantPolls int
		wantURL   string
	}{
		{
			name:      "completes after two pending",
			statuses:  []Status{StatusPending, StatusPending, StatusSuccess},
			results:   []Result{video},
			interval:  10 * time.Second,
			maxWait:   300 * time.Second,
			wantKind:  OutcomeCompleted,
			wantSleep: 2,
			wantPolls: 3,
			wantURL:   video.URL,
		},
		{
			name:      "times out on boundary",
			statuses:  []Status{StatusPending},
			interval:  10 * time.Second,
			maxWait:   25 * time.Second,
			wantKind:  OutcomeTimedOut,
			wantSleep: 3,
			wantPolls: 3,
		},
		{
			name:      "times out when elapsed equals max wait",
			statuses:  []Status{StatusPending},
			interval:  10 * time.Second,
			maxWait:   30 * time.Second,
			wantKind:  OutcomeTimedOut,
			wantSleep: 3,
			wantPolls: 3,
		},
		{
			name:      "fails immediately",
			statuses:  []Status{StatusFail},
			interval:  10 * time.Second,
			maxWait:   300 * time.Second,
			wantKind:  OutcomeFailed,
			wantSleep: 0,
			wantPolls: 1,
		},
		{
			name:      "success without results",
			statuses:  []Status{StatusSuccess},
			interval:  10 * time.Second,
			maxWait:   300 * time.Second,
			wantKind:  OutcomeCompleted,
			wantSleep: 0,
			wantPolls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &scriptedFetcher{statuses: tt.statuses, results: tt.results}
			clock := &fakeClock{}
			p := NewPoller(fetcher, WithSleep(clock.sleep))

			out, err := p.AwaitCompletion(t.Context(), "job-1", tt.interval, tt.maxWait)
			if err != nil {
				t.Fatal(err)
			}
			if out.Kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", out.Kind, tt.wantKind)
			}
			if len(clock.sleeps) != tt.wantSleep {
				t.Errorf("sleeps = %d, want %d", len(clock.sleeps), tt.wantSleep)
			}
			if out.Polls != tt.wantPolls || fetcher.calls != tt.wantPolls {
				t.Errorf("polls = %d (fetcher %d), want %d", out.Polls, fetcher.calls, tt.wantPolls)
			}
			if want := time.Duration(tt.wantSleep) * tt.interval; out.Elapsed != want {
				t.Errorf("elapsed = %v, want %v", out.Elapsed, want)
			}
			if out.JobID != "job-1" {
				t.Errorf("job id = %q", out.JobID)
			}

			switch {
			case tt.wantURL == "" && out.Payload != nil:
				t.Errorf("want nil payload, got %+v", out.Payload)
			case tt.wantURL != "" && (out.Payload == nil || out.Payload.URL != tt.wantURL):
				t.Errorf("payload = %+v, want url %s", out.Payload, tt.wantURL)
			}
		})
	}
}

func TestAwaitCompletionTransportError(t *testing.T) {
	errDown := errors.New("connection refused")
	fetcher := &scriptedFetcher{err: errDown}
	clock := &fakeClock{}

	_, err := NewPoller(fetcher, WithSleep(clock.sleep)).
		AwaitCompletion(t.Context(), "job-1", time.Second, time.Minute)
	if !errors.Is(err, errDown) {
		t.Fatalf("want %v, got %v", errDown, err)
	}
	if fetcher.calls != 1 || len(clock.sleeps) != 0 {
		t.Fatalf("transport error must not be retried: calls=%d sleeps=%d", fetcher.calls, len(clock.sleeps))
	}
}

type nilFetcher struct{}

func (nilFetcher) FetchStatus(context.Context, string) (*Snapshot, error) { return nil, nil }

func TestAwaitCompletionNilSnapshot(t *testing.T) {
	clock := &fakeClock{}
	_, err := NewPoller(nilFetcher{}, WithSleep(clock.sleep)).
		AwaitCompletion(t.Context(), "job-1", time.Second, time.Minute)
	if !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("want ErrNoSnapshot, got %v", err)
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("sleeps = %d", len(clock.sleeps))
	}
}

func TestAwaitCompletionCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	fetcher := &scriptedFetcher{statuses: []Status{StatusPending}}
	_, err := NewPoller(fetcher).AwaitCompletion(ctx, "job-1", time.Hour, 2*time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestAwaitCompletionEmptyID(t *testing.T) {
	_, err := NewPoller(&scriptedFetcher{}).AwaitCompletion(t.Context(), "", time.Second, time.Second)
	if !errors.Is(err, ErrEmptyJobID) {
		t.Fatalf("got %v", err)
	}
}

func TestOnPoll(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []Status{StatusPending, StatusSuccess}}
	clock := &fakeClock{}

	var seen []time.Duration
	p := NewPoller(fetcher,
		WithSleep(clock.sleep),
		WithOnPoll(func(_ *Snapshot, elapsed time.Duration) { seen = append(seen, elapsed) }),
	)
	if _, err := p.AwaitCompletion(t.Context(), "job-1", 5*time.Second, time.Minute); err != nil {
		t.Fatal(err)
	}

	if len(seen) != 2 || seen[0] != 0 || seen[1] != 5*time.Second {
		t.Fatalf("progress = %v", seen)
	}
}

type perJobFetcher map[string]Status

func (f perJobFetcher) FetchStatus(_ context.Context, jobID string) (*Snapshot, error) {
	st, ok := f[jobID]
	if !ok {
		return nil, errors.New("unknown job")
	}
	return &Snapshot{JobID: jobID, Status: st}, nil
}

func TestAwaitAll(t *testing.T) {
	fetcher := perJobFetcher{"a": StatusSuccess, "b": StatusFail}
	p := NewPoller(fetcher, WithSleep(func(context.Context, time.Duration) error { return nil }))

	results, err := p.AwaitAll(t.Context(), []string{"a", "b", "c"}, time.Second, time.Minute, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Outcome.Kind != OutcomeCompleted || results[1].Outcome.Kind != OutcomeFailed {
		t.Errorf("outcomes = %v %v", results[0].Outcome.Kind, results[1].Outcome.Kind)
	}
	if results[2].Err == nil {
		t.Error("want error for unknown job")
	}
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"PROCESSING": StatusPending,
		"SUCCESS":    StatusSuccess,
		"FAIL":       StatusFail,
		"":           StatusPending,
	} {
		if got := ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q) = %s, want %s", in, got, want)
		}
	}
}
