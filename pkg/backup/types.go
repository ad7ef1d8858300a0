package backup

import (
	"context"
	"time"
)

type Outcome string

const (
	// OutcomeSuccess means copy, commit and push all went through.
	OutcomeSuccess Outcome = "success"
	// OutcomeSuccessPushFailed means the local commit succeeded but the
	// push did not; local durability was still achieved.
	OutcomeSuccessPushFailed Outcome = "success-with-push-failure"
	// OutcomeNoChanges means the backup working tree was already clean.
	OutcomeNoChanges Outcome = "no-changes"
	// OutcomeSkippedConcurrent means another backup was already running.
	OutcomeSkippedConcurrent Outcome = "skipped-concurrent"
	// OutcomeSkippedDisabled means backups are not enabled in this deployment.
	OutcomeSkippedDisabled Outcome = "skipped-disabled"
	OutcomeFailed          Outcome = "failed"
)

// Run is the ephemeral record of one backup attempt. It is returned to
// the background worker and logged, never persisted.
type Run struct {
	Trigger   string
	StartedAt time.Time
	Outcome   Outcome
	Detail    string
}

// Syncer is the capability interface over the version-control mechanism.
// Two implementations exist: one backed by a git library, one shelling
// out to git directly; the orchestrator is written against this interface
// only.
type Syncer interface {
	Init(ctx context.Context) error
	HasChanges(ctx context.Context) (bool, error)
	CommitAll(ctx context.Context, message string) error
	CurrentBranch(ctx context.Context) (string, error)
	Push(ctx context.Context, branch string) error
}
