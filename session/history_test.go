package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryPushEvictsOldest(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c")
	assert.Equal(t, []string{"b", "c"}, h.Lines)
}

func TestSaveLoadHistoryFileRoundTrip(t *testing.T) {
	h := NewHistory(10)
	h.Push("let x = 1")
	h.Push("x + 1")

	path := filepath.Join(t.TempDir(), "history.txt")
	assert.Nil(t, SaveHistoryFile(path, h))

	loaded, err := LoadHistoryFile(path, 10)
	assert.Nil(t, err)
	assert.Equal(t, h.Lines, loaded.Lines)
}

func TestLoadHistoryFileTruncatesToMax(t *testing.T) {
	h := NewHistory(10)
	h.Push("1")
	h.Push("2")
	h.Push("3")
	path := filepath.Join(t.TempDir(), "history.txt")
	assert.Nil(t, SaveHistoryFile(path, h))

	loaded, err := LoadHistoryFile(path, 2)
	assert.Nil(t, err)
	assert.Equal(t, []string{"2", "3"}, loaded.Lines)
}
