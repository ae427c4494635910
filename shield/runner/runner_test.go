package runner_test

import (
	"context"
	"testing"
	"time"

	"gitlab.com/webshield/shield/runner"
)

func TestRunnerOrder(t *testing.T) {
	r := runner.New("request")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	results := make([]int, 0)
	for i := 0; i < 100; i++ {
		i := i
		r.Post(func() { results = append(results, i) })
	}
	r.Stop()

	if err := r.Run(ctx); err != nil {
		t.Fatalf("error running: %s\n", err)
	}

	if len(results) != 100 {
		t.Fatalf("expected 100 tasks to run got %d\n", len(results))
	}

	for i, v := range results {
		if i != v {
			t.Fatalf("task %d ran out of order (%d)\n", i, v)
		}
	}
}

func TestRunnerPostFromTask(t *testing.T) {
	r := runner.New("interaction")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	go r.Run(ctx)

	done := make(chan struct{})
	r.Post(func() {
		r.Post(func() {
			close(done)
		})
	})

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("nested post never ran")
	}

	r.Stop()
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("error waiting for runner: %s\n", err)
	}

	if r.Post(func() {}) {
		t.Fatalf("expected post after stop to be rejected")
	}
}

func TestRunnerContextCancel(t *testing.T) {
	r := runner.New("request")
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled got %v\n", err)
		}
	case <-time.After(time.Second * 5):
		t.Fatalf("runner did not stop")
	}

	if r.Post(func() {}) {
		t.Fatalf("expected post after cancel to be rejected")
	}
}

func TestRunnerContextCancelDrainsQueue(t *testing.T) {
	r := runner.New("interaction")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := 0
	accepted := 0
	r.Post(func() {
		cancel()
		for i := 0; i < 50; i++ {
			if r.Post(func() { ran++ }) {
				accepted++
			}
		}
	})

	if err := r.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled got %v\n", err)
	}

	if accepted != 50 {
		t.Fatalf("expected 50 accepted tasks got %d\n", accepted)
	}

	if ran != accepted {
		t.Fatalf("expected every accepted task to run, ran %d of %d\n", ran, accepted)
	}
}
