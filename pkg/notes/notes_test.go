package notes

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCreatesNotebookWithTimestampedBullet(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Append("journal", "bought new bike lock"))
	require.NoError(t, s.Append("journal", "  trimmed whitespace  "))

	content, err := s.Read("journal")
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^- \*\*\d{4}-\d{2}-\d{2} \d{2}:\d{2}\*\* bought new bike lock$`, content)
	assert.Regexp(t, `(?m)^- \*\*\d{4}-\d{2}-\d{2} \d{2}:\d{2}\*\* trimmed whitespace$`, content)
}

func TestAppendRejectsUnsafeNotebookNames(t *testing.T) {
	s := NewStore(t.TempDir())

	for _, name := range []string{"../escape", "a/b", "", "with space", "null\x00byte"} {
		err := s.Append(name, "text")
		require.Error(t, err, "name %q must be rejected", name)
		assert.True(t, errors.Is(err, ErrInvalidNotebookName))
	}

	notebooks, err := s.Notebooks()
	require.NoError(t, err)
	assert.Empty(t, notebooks)
}

func TestNotebooksListsSorted(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Append("zebra", "z"))
	require.NoError(t, s.Append("alpha", "a"))
	require.NoError(t, s.Append("ideas.2026", "dotted names are fine"))

	notebooks, err := s.Notebooks()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "ideas.2026", "zebra"}, notebooks)
}

func TestNotebooksEmptyWhenDirMissing(t *testing.T) {
	s := NewStore(t.TempDir() + "/never-created")

	notebooks, err := s.Notebooks()
	require.NoError(t, err)
	assert.Empty(t, notebooks)
}

func TestReadUnknownNotebookErrors(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Read("missing")
	assert.Error(t, err)
}
