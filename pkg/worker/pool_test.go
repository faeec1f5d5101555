package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"rosterbot/pkg/logger"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestPool_RunsTasks(t *testing.T) {
	p := NewPool(logger.Discard(), Options{Workers: 3})
	p.Start()

	var n atomic.Int32
	for i := 0; i < 20; i++ {
		p.Go("count", func(ctx context.Context) error {
			n.Add(1)
			return nil
		})
	}
	// failing and panicking tasks only get logged
	p.Go("fail", func(ctx context.Context) error { return errors.New("boom") })
	p.Go("panic", func(ctx context.Context) error { panic("boom") })

	if err := p.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := n.Load(); got != 20 {
		t.Fatalf("ran %d tasks, want 20", got)
	}
}

func TestPool_After(t *testing.T) {
	p := NewPool(logger.Discard(), Options{Workers: 1})
	p.Start()
	defer p.Stop(context.Background())

	var fired atomic.Bool
	p.After(10*time.Millisecond, "later", func(ctx context.Context) error {
		fired.Store(true)
		return nil
	})
	waitFor(t, fired.Load)
}

func TestPool_StopCancelsTimers(t *testing.T) {
	p := NewPool(logger.Discard(), Options{Workers: 1})
	p.Start()

	var fired atomic.Bool
	p.After(50*time.Millisecond, "later", func(ctx context.Context) error {
		fired.Store(true)
		return nil
	})
	if err := p.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Fatal("delayed task ran after Stop")
	}
	if p.Submit(Task{Name: "late", Run: func(context.Context) error { return nil }}) {
		t.Fatal("Submit accepted after Stop")
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatal("second Stop should be a no-op")
	}
}

func TestPool_QueueFull(t *testing.T) {
	p := NewPool(logger.Discard(), Options{Workers: 1, QueueSize: 1})
	// not started: nothing drains the queue
	ok1 := p.Submit(Task{Name: "a", Run: func(context.Context) error { return nil }})
	ok2 := p.Submit(Task{Name: "b", Run: func(context.Context) error { return nil }})
	if !ok1 || ok2 {
		t.Fatalf("Submit = %v, %v", ok1, ok2)
	}
	if p.Pending() != 1 {
		t.Fatalf("Pending = %d", p.Pending())
	}
	p.Start()
	_ = p.Stop(context.Background())
}

func TestPool_TaskTimeout(t *testing.T) {
	p := NewPool(logger.Discard(), Options{Workers: 1, Timeout: 20 * time.Millisecond})
	p.Start()
	defer p.Stop(context.Background())

	done := make(chan error, 1)
	p.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	})
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task context never expired")
	}
}
