package backup

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Worker decouples backup execution from the request-handling path: API
// handlers hand their trigger label to a buffered channel and return
// immediately; one goroutine consumes the channel and runs the manager.
type Worker struct {
	manager  *Manager
	triggers chan string
}

func NewWorker(manager *Manager) *Worker {
	return &Worker{
		manager:  manager,
		triggers: make(chan string, 16),
	}
}

// Schedule requests a backup attempt without blocking. When the channel
// is full the trigger is dropped; the manager would skip it anyway, and
// the next mutating call will trigger another attempt.
func (w *Worker) Schedule(trigger string) {
	select {
	case w.triggers <- trigger:
	default:
		log.WithField("trigger", trigger).Debug("backup trigger dropped, queue full")
	}
}

// Run consumes triggers until the context is cancelled. Outcomes are only
// logged; there is no caller waiting for them.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case trigger := <-w.triggers:
			run := w.manager.BackupData(ctx, trigger)

			entry := log.WithFields(log.Fields{
				"trigger": run.Trigger,
				"outcome": run.Outcome,
			})
			if run.Detail != "" {
				entry = entry.WithField("detail", run.Detail)
			}
			entry.Info("backup run finished")
		}
	}
}
