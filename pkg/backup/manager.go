package backup

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Enabled     bool
	SourceDir   string
	BackupDir   string
	RemoteURL   string
	AuthorName  string
	AuthorEmail string

	// SSHKey is private key material staged to SSHKeyFile with 0600
	// permissions during initialization.
	SSHKey     string
	SSHKeyFile string

	// Token is embedded into http(s) remote URLs as basic-auth credentials.
	Token string
}

// Manager is the process-wide backup orchestrator. It is constructed once
// at startup and handed to every collaborator that may trigger a backup;
// the busy flag guarantees at most one run executes at any instant.
type Manager struct {
	cfg      Config
	busy     atomic.Bool
	primary  Syncer
	fallback Syncer
}

func NewManager(cfg Config) *Manager {
	cfg.RemoteURL = embedToken(cfg.RemoteURL, cfg.Token)

	keyFile := ""
	if cfg.SSHKey != "" {
		keyFile = cfg.SSHKeyFile
	}

	return &Manager{
		cfg:      cfg,
		primary:  newGitSyncer(cfg.BackupDir, cfg.RemoteURL, cfg.AuthorName, cfg.AuthorEmail, keyFile),
		fallback: newCmdSyncer(cfg.BackupDir, cfg.RemoteURL, cfg.AuthorName, cfg.AuthorEmail, keyFile),
	}
}

// embedToken turns an http(s) remote URL into an authenticated one. SSH
// remotes are left alone; they authenticate via the staged key file.
func embedToken(remoteURL, token string) string {
	if token == "" || remoteURL == "" {
		return remoteURL
	}

	u, err := url.Parse(remoteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return remoteURL
	}

	u.User = url.UserPassword("token", token)
	return u.String()
}

// Initialize prepares the backup directory, stages credential material and
// establishes the local repository. It is idempotent: running it against
// an already prepared deployment succeeds without side effects. Outside of
// enabled deployments it is a no-op.
func (m *Manager) Initialize(ctx context.Context) error {
	if !m.cfg.Enabled {
		log.Debug("backups disabled, skipping backup initialization")
		return nil
	}

	if err := os.MkdirAll(m.cfg.BackupDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create backup directory %q", m.cfg.BackupDir)
	}

	if m.cfg.SSHKey != "" {
		if err := os.WriteFile(m.cfg.SSHKeyFile, []byte(m.cfg.SSHKey), 0o600); err != nil {
			return errors.Wrapf(err, "failed to stage SSH key to %q", m.cfg.SSHKeyFile)
		}
	}

	if err := m.primary.Init(ctx); err != nil {
		log.WithError(err).Warn("repository initialization via library failed, falling back to git commands")
		if err := m.fallback.Init(ctx); err != nil {
			return err
		}
	}

	return m.excludeKeyFromTree()
}

// excludeKeyFromTree keeps staged credential material out of version
// control when the configured key file lies inside the backup working
// tree. Both syncers honor .git/info/exclude.
func (m *Manager) excludeKeyFromTree() error {
	if m.cfg.SSHKey == "" {
		return nil
	}

	rel, err := filepath.Rel(m.cfg.BackupDir, m.cfg.SSHKeyFile)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil
	}

	excludeFile := filepath.Join(m.cfg.BackupDir, ".git", "info", "exclude")
	if err := os.MkdirAll(filepath.Dir(excludeFile), 0o755); err != nil {
		return errors.Wrap(err, "failed to prepare git exclude file")
	}

	line := "/" + filepath.ToSlash(rel)

	existing, err := os.ReadFile(excludeFile)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to read git exclude file")
	}
	for _, l := range strings.Split(string(existing), "\n") {
		if l == line {
			return nil
		}
	}

	f, err := os.OpenFile(excludeFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to open git exclude file")
	}
	defer f.Close()

	_, err = f.WriteString(line + "\n")
	return errors.Wrap(err, "failed to update git exclude file")
}

// IsBusy reports whether a backup run is currently executing.
func (m *Manager) IsBusy() bool {
	return m.busy.Load()
}

// BackupData runs one backup attempt: copy the source directory into the
// backup working tree, then commit and push. Concurrent triggers are
// dropped, not queued; every error is folded into the returned Run.
func (m *Manager) BackupData(ctx context.Context, trigger string) Run {
	run := Run{Trigger: trigger, StartedAt: time.Now()}

	if !m.cfg.Enabled {
		run.Outcome = OutcomeSkippedDisabled
		return run
	}

	if !m.busy.CompareAndSwap(false, true) {
		log.WithField("trigger", trigger).Info("backup already in progress, skipping")
		run.Outcome = OutcomeSkippedConcurrent
		return run
	}
	defer m.busy.Store(false)

	m.execute(ctx, &run)

	return run
}

// execute performs copy + sync, converting panics into a failed outcome
// so nothing ever propagates to the background scheduler.
func (m *Manager) execute(ctx context.Context, run *Run) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("trigger", run.Trigger).Errorf("backup panicked: %v", r)
			run.Outcome = OutcomeFailed
			run.Detail = fmt.Sprintf("panic: %v", r)
		}
	}()

	if err := CopyFiles(m.cfg.SourceDir, m.cfg.BackupDir); err != nil {
		log.WithError(err).Error("backup copy stage failed")
		run.Outcome = OutcomeFailed
		run.Detail = err.Error()
		return
	}

	m.syncToRemote(ctx, run)
}

// syncToRemote commits and pushes the staged changes. The library-backed
// syncer is tried first; if it errors the whole sequence is repeated with
// direct git commands.
func (m *Manager) syncToRemote(ctx context.Context, run *Run) {
	outcome, detail, err := m.syncWith(ctx, m.primary, run.Trigger)
	if err != nil {
		log.WithError(err).Warn("primary VCS sync failed, retrying with git commands")
		outcome, detail, err = m.syncWith(ctx, m.fallback, run.Trigger)
	}

	if err != nil {
		log.WithError(err).WithField("trigger", run.Trigger).Error("backup sync failed")
		run.Outcome = OutcomeFailed
		run.Detail = err.Error()
		return
	}

	run.Outcome = outcome
	run.Detail = detail
}

func (m *Manager) syncWith(ctx context.Context, s Syncer, trigger string) (Outcome, string, error) {
	changed, err := s.HasChanges(ctx)
	if err != nil {
		return "", "", err
	}
	if !changed {
		return OutcomeNoChanges, "", nil
	}

	message := fmt.Sprintf("Backup from %s - %s", trigger, time.Now().Format(time.RFC3339))
	if err := s.CommitAll(ctx, message); err != nil {
		return "", "", err
	}

	if m.cfg.RemoteURL == "" {
		return OutcomeSuccess, "", nil
	}

	// from here on the commit is durable locally; push problems are
	// reported but never escalated to a hard failure
	branch, err := s.CurrentBranch(ctx)
	if err != nil {
		log.WithError(err).Warn("could not resolve current branch, skipping push")
		return OutcomeSuccessPushFailed, err.Error(), nil
	}

	if err := s.Push(ctx, branch); err != nil {
		log.WithError(err).Warn("push to remote failed, local commit kept")
		return OutcomeSuccessPushFailed, err.Error(), nil
	}

	return OutcomeSuccess, "", nil
}
