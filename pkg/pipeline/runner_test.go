package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerRunsJobs(t *testing.T) {
	r := NewRunner(4, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	var ran int32
	var jobs []*Job
	for i := 0; i < 100; i++ {
		j, err := r.Submit(ctx, func(ctx context.Context, _ func(Progress)) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		jobs = append(jobs, j)
	}
	r.Close()

	if got := atomic.LoadInt32(&ran); got != 100 {
		t.Fatalf("expected 100 jobs executed, got %d", got)
	}
	for _, j := range jobs {
		if err := j.Wait(); err != nil {
			t.Fatalf("unexpected job error: %v", err)
		}
	}
}

func TestJobResultAndProgress(t *testing.T) {
	r := NewRunner(1, 2)
	r.Start(context.Background())
	defer r.Close()

	boom := errors.New("boom")
	j, err := r.Submit(context.Background(), func(_ context.Context, report func(Progress)) error {
		for i := 0; i < 10; i++ {
			report(Progress{Fraction: float64(i) / 10, Message: "step"})
		}
		return boom
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := j.Wait(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	// Reports beyond the buffer are dropped rather than blocking the task.
	var got []Progress
	for p := range j.Progress() {
		got = append(got, p)
	}
	if len(got) != 2 || got[0].Fraction != 0 || got[1].Fraction != 0.1 {
		t.Fatalf("unexpected progress %v", got)
	}
}

func TestJobPanicBecomesError(t *testing.T) {
	r := NewRunner(1, 0)
	r.Start(context.Background())
	defer r.Close()

	j, err := r.Submit(context.Background(), func(context.Context, func(Progress)) error { panic("bad book") })
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := j.Wait(); err == nil {
		t.Fatal("expected error from panicking task")
	}
}

func TestSubmitAfterClose(t *testing.T) {
	r := NewRunner(1, 0)
	r.Start(context.Background())
	r.Close()
	if _, err := r.Submit(context.Background(), func(context.Context, func(Progress)) error { return nil }); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	r.Close()
}

func TestSubmitUnblocksOnClose(t *testing.T) {
	r := NewRunner(1, 0) // queue capacity 2, no workers started
	noop := func(context.Context, func(Progress)) error { return nil }
	var queued []*Job
	for i := 0; i < 2; i++ {
		j, err := r.Submit(context.Background(), noop)
		if err != nil {
			t.Fatalf("setup submit failed: %v", err)
		}
		queued = append(queued, j)
	}

	done := make(chan error, 1)
	go func() {
		_, err := r.Submit(context.Background(), noop)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	r.Close()

	if err := <-done; !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	for _, j := range queued {
		if err := j.Wait(); !errors.Is(err, ErrPoolClosed) {
			t.Fatalf("queued job should end with ErrPoolClosed, got %v", err)
		}
	}
}

func TestSubmitHonoursContext(t *testing.T) {
	r := NewRunner(1, 0)
	defer r.Close()
	noop := func(context.Context, func(Progress)) error { return nil }
	for i := 0; i < 2; i++ {
		if _, err := r.Submit(context.Background(), noop); err != nil {
			t.Fatal(err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.Submit(ctx, noop); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestCancelledContextFailsQueuedJobs(t *testing.T) {
	r := NewRunner(1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Start(ctx)
	defer r.Close()

	j, err := r.Submit(context.Background(), func(context.Context, func(Progress)) error {
		t.Error("task must not run after cancellation")
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := j.Wait(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
