package common

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

func TestSafeGoRecoversPanic(t *testing.T) {
	done := make(chan struct{})

	SafeGo(arbor.NewLogger(), "panicking-task", func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Goroutine did not run")
	}
	// Reaching here without the test binary dying means the panic was
	// contained.
}

func TestSafeGoIncrementsGoroutineCount(t *testing.T) {
	before := GetGoroutineCount()
	done := make(chan struct{})

	SafeGo(arbor.NewLogger(), "counted-task", func() {
		close(done)
	})

	<-done
	if GetGoroutineCount() <= before {
		t.Errorf("Expected goroutine count above %d, got %d", before, GetGoroutineCount())
	}
}

func TestSafeGoWithContextSkipsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := make(chan struct{}, 1)
	SafeGoWithContext(ctx, arbor.NewLogger(), "cancelled-task", func() {
		ran <- struct{}{}
	})

	select {
	case <-ran:
		t.Error("Function should not run under a cancelled context")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSafeGoWithContextRuns(t *testing.T) {
	done := make(chan struct{})

	SafeGoWithContext(context.Background(), arbor.NewLogger(), "live-task", func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Goroutine did not run")
	}
}
