package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/pkg/errors"
)

// gitSyncer is the library-backed Syncer implementation.
type gitSyncer struct {
	dir         string
	remoteURL   string
	authorName  string
	authorEmail string
	keyFile     string

	repo *git.Repository
}

func newGitSyncer(dir, remoteURL, authorName, authorEmail, keyFile string) *gitSyncer {
	return &gitSyncer{
		dir:         dir,
		remoteURL:   remoteURL,
		authorName:  authorName,
		authorEmail: authorEmail,
		keyFile:     keyFile,
	}
}

func (s *gitSyncer) Init(_ context.Context) error {
	repo, err := git.PlainOpen(s.dir)
	if err == git.ErrRepositoryNotExists {
		repo, err = git.PlainInit(s.dir, false)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to open or initialize repository in %q", s.dir)
	}
	s.repo = repo

	if s.remoteURL == "" {
		return nil
	}

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{s.remoteURL},
	})
	if err != nil && err != git.ErrRemoteExists {
		return errors.Wrap(err, "failed to configure remote")
	}

	return nil
}

// ensureRepo opens the repository lazily so that a sync attempt after a
// failed or skipped initialization yields an error instead of a nil
// dereference, letting the orchestrator fall back cleanly.
func (s *gitSyncer) ensureRepo() error {
	if s.repo != nil {
		return nil
	}

	repo, err := git.PlainOpen(s.dir)
	if err != nil {
		return errors.Wrapf(err, "failed to open repository in %q", s.dir)
	}
	s.repo = repo
	return nil
}

func (s *gitSyncer) HasChanges(_ context.Context) (bool, error) {
	wt, err := s.worktree()
	if err != nil {
		return false, err
	}

	status, err := wt.Status()
	if err != nil {
		return false, errors.Wrap(err, "failed to read worktree status")
	}

	return !status.IsClean(), nil
}

func (s *gitSyncer) CommitAll(_ context.Context, message string) error {
	wt, err := s.worktree()
	if err != nil {
		return err
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return errors.Wrap(err, "failed to stage changes")
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: s.signature(),
	})
	return errors.Wrap(err, "failed to commit changes")
}

func (s *gitSyncer) CurrentBranch(_ context.Context) (string, error) {
	if err := s.ensureRepo(); err != nil {
		return "", err
	}

	head, err := s.repo.Head()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve HEAD")
	}
	return head.Name().Short(), nil
}

func (s *gitSyncer) Push(ctx context.Context, branch string) error {
	auth, err := s.authMethod()
	if err != nil {
		return err
	}

	if err := s.ensureRepo(); err != nil {
		return err
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))

	err = s.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
	})
	if err == git.NoErrAlreadyUpToDate {
		return nil
	}
	return errors.Wrapf(err, "failed to push %s", branch)
}

func (s *gitSyncer) worktree() (*git.Worktree, error) {
	if err := s.ensureRepo(); err != nil {
		return nil, err
	}

	wt, err := s.repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open worktree")
	}

	wt.Excludes = append(wt.Excludes, s.excludePatterns()...)
	return wt, nil
}

// excludePatterns mirrors git's handling of .git/info/exclude, which the
// library does not read on its own. Staged credential material relies on
// it to stay out of commits.
func (s *gitSyncer) excludePatterns() []gitignore.Pattern {
	content, err := os.ReadFile(filepath.Join(s.dir, ".git", "info", "exclude"))
	if err != nil {
		return nil
	}

	patterns := []gitignore.Pattern{}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns
}

func (s *gitSyncer) signature() *object.Signature {
	sig := &object.Signature{
		Name:  s.authorName,
		Email: s.authorEmail,
		When:  time.Now(),
	}
	if sig.Name == "" {
		sig.Name = "hausmeister"
	}
	if sig.Email == "" {
		sig.Email = "hausmeister@localhost"
	}
	return sig
}

// authMethod returns SSH key auth when a key file is staged. Token-based
// remotes need no explicit auth because the token is embedded in the
// remote URL during initialization.
func (s *gitSyncer) authMethod() (transport.AuthMethod, error) {
	if s.keyFile == "" {
		return nil, nil
	}

	keys, err := gitssh.NewPublicKeysFromFile("git", s.keyFile, "")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load SSH key from %q", s.keyFile)
	}
	return keys, nil
}
