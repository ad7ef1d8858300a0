package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// cmdSyncer reproduces the gitSyncer behavior with direct git commands.
// It is the fallback when the library-backed mechanism errors, to stay
// resilient against environment differences.
type cmdSyncer struct {
	dir         string
	remoteURL   string
	authorName  string
	authorEmail string
	keyFile     string
}

func newCmdSyncer(dir, remoteURL, authorName, authorEmail, keyFile string) *cmdSyncer {
	return &cmdSyncer{
		dir:         dir,
		remoteURL:   remoteURL,
		authorName:  authorName,
		authorEmail: authorEmail,
		keyFile:     keyFile,
	}
}

func (s *cmdSyncer) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.dir
	cmd.Env = append(os.Environ(), s.env()...)

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, errors.Wrapf(err, "git %s: %s", args[0], output)
	}
	return output, nil
}

// env keeps every git invocation non-interactive.
func (s *cmdSyncer) env() []string {
	env := []string{"GIT_TERMINAL_PROMPT=0"}
	if s.keyFile != "" {
		env = append(env, fmt.Sprintf("GIT_SSH_COMMAND=ssh -i %s -o StrictHostKeyChecking=accept-new", s.keyFile))
	}
	return env
}

func (s *cmdSyncer) Init(ctx context.Context) error {
	// "git init" on an existing repository is a harmless reinitialization
	if _, err := s.run(ctx, "init"); err != nil {
		return err
	}

	if s.remoteURL == "" {
		return nil
	}

	if _, err := s.run(ctx, "remote", "get-url", "origin"); err != nil {
		if _, err := s.run(ctx, "remote", "add", "origin", s.remoteURL); err != nil {
			return err
		}
	}

	return nil
}

func (s *cmdSyncer) HasChanges(ctx context.Context) (bool, error) {
	out, err := s.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (s *cmdSyncer) CommitAll(ctx context.Context, message string) error {
	if _, err := s.run(ctx, "add", "-A"); err != nil {
		return err
	}

	args := []string{}
	if s.authorName != "" && s.authorEmail != "" {
		args = append(args, "-c", "user.name="+s.authorName, "-c", "user.email="+s.authorEmail)
	}
	args = append(args, "commit", "-m", message)

	_, err := s.run(ctx, args...)
	return err
}

func (s *cmdSyncer) CurrentBranch(ctx context.Context) (string, error) {
	return s.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

func (s *cmdSyncer) Push(ctx context.Context, branch string) error {
	_, err := s.run(ctx, "push", "origin", branch)
	return err
}
