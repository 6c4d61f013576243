package surveys

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kru-nsru/survey-portal-backend/internal/apperr"
	"github.com/kru-nsru/survey-portal-backend/internal/logger"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewStoreLoadsDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "intelligent-tk.json", `{
		"id": "intelligent-tk",
		"title": "TK",
		"questions": [{"id": 1, "question": "q", "type": "rating"}]
	}`)
	writeFile(t, dir, "ethical-knowledge.json", `{
		"id": "ethical-knowledge",
		"title": "Ethics",
		"questions": [{"id": 1, "question": "q", "type": "rating"}]
	}`)
	writeFile(t, dir, "notes.txt", "not a survey")

	store, err := NewStore(logger.NewNop(), dir)
	require.NoError(t, err)

	defs := store.List()
	require.Len(t, defs, 2)
	// List order is stable and sorted by id.
	assert.Equal(t, "ethical-knowledge", defs[0].ID)
	assert.Equal(t, "intelligent-tk", defs[1].ID)

	def, err := store.Get("intelligent-tk")
	require.NoError(t, err)
	assert.Equal(t, "TK", def.Title)
	assert.Len(t, def.Questions, 1)
}

func TestNewStoreIDFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "intelligent-tpk.json", `{
		"title": "TPK",
		"questions": []
	}`)

	store, err := NewStore(logger.NewNop(), dir)
	require.NoError(t, err)

	def, err := store.Get("intelligent-tpk")
	require.NoError(t, err)
	assert.Equal(t, "intelligent-tpk", def.ID)
}

func TestNewStoreRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"id": "dup", "title": "A", "questions": []}`)
	writeFile(t, dir, "b.json", `{"id": "dup", "title": "B", "questions": []}`)

	_, err := NewStore(logger.NewNop(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate survey id")
}

func TestNewStoreRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{"id": "broken"`)

	_, err := NewStore(logger.NewNop(), dir)
	require.Error(t, err)
}

func TestGetUnknownSurvey(t *testing.T) {
	store, err := NewStore(logger.NewNop(), t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
