package scraper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"skillfit-go/internal/config"
	"skillfit-go/internal/scorer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupStaleFiles(t *testing.T) {
	scriptDir := t.TempDir()
	cfg := &config.ScraperConfig{
		ScriptDir:         scriptDir,
		ResultsDir:        "results",
		Interpreter:       "sh",
		StaleFileTTLHours: 24,
	}
	e := NewEngine(cfg, NewTaskRegistry(), nil, nil, scorer.DefaultWeights(), nil)

	dir := e.resultsDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))

	stale := filepath.Join(dir, "old-task_final_results.json")
	fresh := filepath.Join(dir, "new-task_final_results.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("{}"), 0o644))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, past, past))

	removed := e.CleanupStaleFiles()
	assert.Equal(t, 1, removed)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestCleanupStaleFilesMissingDir(t *testing.T) {
	cfg := &config.ScraperConfig{
		ScriptDir:  t.TempDir(),
		ResultsDir: "results",
	}
	e := NewEngine(cfg, NewTaskRegistry(), nil, nil, scorer.DefaultWeights(), nil)

	assert.Equal(t, 0, e.CleanupStaleFiles())
}
