package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// notebook names become file names, so they are restricted to a safe set
var notebookNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

var ErrInvalidNotebookName = errors.New("invalid notebook name")

// Store appends timestamped markdown bullets to per-notebook files inside a
// single data directory. All methods are safe for concurrent use.
type Store struct {
	dataDir string
	mu      sync.Mutex
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Append adds one bullet to the named notebook, creating it when needed.
func (s *Store) Append(notebook, text string) error {
	if !notebookNamePattern.MatchString(notebook) {
		return errors.Wrapf(ErrInvalidNotebookName, "%q", notebook)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create data directory %q", s.dataDir)
	}

	f, err := os.OpenFile(s.path(notebook), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open notebook %q", notebook)
	}
	defer f.Close()

	line := fmt.Sprintf("- **%s** %s\n", time.Now().Format("2006-01-02 15:04"), strings.TrimSpace(text))
	_, err = f.WriteString(line)
	return errors.Wrapf(err, "failed to append to notebook %q", notebook)
}

// Notebooks lists the existing notebook names, sorted.
func (s *Store) Notebooks() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dataDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list data directory %q", s.dataDir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".md"))
	}

	sort.Strings(names)
	return names, nil
}

// Read returns the raw markdown content of one notebook.
func (s *Store) Read(notebook string) (string, error) {
	if !notebookNamePattern.MatchString(notebook) {
		return "", errors.Wrapf(ErrInvalidNotebookName, "%q", notebook)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(notebook))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read notebook %q", notebook)
	}
	return string(data), nil
}

func (s *Store) path(notebook string) string {
	return filepath.Join(s.dataDir, notebook+".md")
}
