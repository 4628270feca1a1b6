package parserutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunTasks_IndependentErrors(t *testing.T) {
	boom := errors.New("boom")
	var secondRan bool
	errs := RunTasks(context.Background(),
		Task{Name: "handicaps", Run: func(ctx context.Context) error { return boom }},
		Task{Name: "totals", Run: func(ctx context.Context) error { secondRan = true; return nil }},
	)
	if len(errs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(errs))
	}
	if !errors.Is(errs[0], boom) {
		t.Errorf("errs[0] = %v", errs[0])
	}
	if errs[1] != nil || !secondRan {
		t.Errorf("second task affected by first: err=%v ran=%v", errs[1], secondRan)
	}
}

func TestRunTasks_TimeoutDoesNotBlockSibling(t *testing.T) {
	start := time.Now()
	errs := RunTasks(context.Background(),
		Task{Name: "slow", Timeout: 50 * time.Millisecond, Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
		Task{Name: "fast", Run: func(ctx context.Context) error { return nil }},
	)
	if !errors.Is(errs[0], context.DeadlineExceeded) {
		t.Errorf("slow task err = %v", errs[0])
	}
	if errs[1] != nil {
		t.Errorf("fast task err = %v", errs[1])
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("RunTasks took too long: %v", elapsed)
	}
}

func TestRunTasks_RunsConcurrently(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	task := func(ctx context.Context) error {
		started <- struct{}{}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan []error, 1)
	go func() {
		done <- RunTasks(context.Background(),
			Task{Name: "a", Timeout: 2 * time.Second, Run: task},
			Task{Name: "b", Timeout: 2 * time.Second, Run: task},
		)
	}()
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("tasks did not start concurrently")
		}
	}
	close(release)
	for _, err := range <-done {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
}
