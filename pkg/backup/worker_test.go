package backup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerScheduleNeverBlocksWhenQueueFull(t *testing.T) {
	w := NewWorker(NewManager(Config{Enabled: false}))

	for i := 0; i < cap(w.triggers); i++ {
		w.triggers <- "fill"
	}

	done := make(chan struct{})
	go func() {
		w.Schedule("overflow")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Schedule must drop the trigger instead of blocking")
	}

	assert.Len(t, w.triggers, cap(w.triggers), "the overflowing trigger must be dropped, not queued")
}

func TestWorkerRunConsumesTriggersAndStopsOnCancel(t *testing.T) {
	primary := &fakeSyncer{changes: true}
	m := testManager(t, primary, &fakeSyncer{})
	m.cfg.RemoteURL = ""

	w := NewWorker(m)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(stopped)
	}()

	w.Schedule("POST /vault/spend")
	w.Schedule("POST /notes/journal")

	require.Eventually(t, func() bool {
		primary.mu.Lock()
		defer primary.mu.Unlock()
		return len(primary.commits) == 2
	}, 5*time.Second, 10*time.Millisecond, "both triggers must result in backup runs")

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run must return once the context is cancelled")
	}
}
