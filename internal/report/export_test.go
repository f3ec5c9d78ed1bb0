package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivamtawar/buildxhire/internal/domain"
)

func TestSaveInterviewWritesArtifact(t *testing.T) {
	t.Parallel()

	exporter := NewExporter(t.TempDir())
	path, err := exporter.SaveInterview("sess-1", "cand-1", domain.FinalReport{
		FinalScore: 72.4,
		Category:   "GOOD",
	})
	require.NoError(t, err)
	assert.Equal(t, "interview_sess-1.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var artifact map[string]any
	require.NoError(t, json.Unmarshal(data, &artifact))
	assert.Equal(t, "sess-1", artifact["session_id"])
	assert.Equal(t, "cand-1", artifact["candidate_id"])
	report := artifact["report"].(map[string]any)
	assert.Equal(t, 72.4, report["finalScore"])
}

func TestSaveInterviewSanitizesSessionID(t *testing.T) {
	t.Parallel()

	exporter := NewExporter(t.TempDir())
	path, err := exporter.SaveInterview("../evil/id", "", domain.FinalReport{})
	require.NoError(t, err)
	assert.Equal(t, "interview____evil_id.json", filepath.Base(path))
}

func TestSaveInterviewRequiresSessionID(t *testing.T) {
	t.Parallel()

	exporter := NewExporter(t.TempDir())
	_, err := exporter.SaveInterview("  ", "", domain.FinalReport{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSaveMatchUsesFreshIDs(t *testing.T) {
	t.Parallel()

	exporter := NewExporter(t.TempDir())
	first, err := exporter.SaveMatch(domain.MatchReport{OverallMatch: 80})
	require.NoError(t, err)
	second, err := exporter.SaveMatch(domain.MatchReport{OverallMatch: 81})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(filepath.Base(first), "match_"))
}

func TestSaveRewriteWritesPlainText(t *testing.T) {
	t.Parallel()

	exporter := NewExporter(t.TempDir())
	path, err := exporter.SaveRewrite("Go Engineer. Ten years of channels.")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "rewrite_"))
	assert.True(t, strings.HasSuffix(path, ".txt"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Go Engineer. Ten years of channels.\n", string(data))
}

func TestSaveRewriteRequiresText(t *testing.T) {
	t.Parallel()

	exporter := NewExporter(t.TempDir())
	_, err := exporter.SaveRewrite("   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListReturnsArtifacts(t *testing.T) {
	t.Parallel()

	exporter := NewExporter(t.TempDir())
	_, err := exporter.SaveInterview("sess-1", "", domain.FinalReport{})
	require.NoError(t, err)
	_, err = exporter.SaveMatch(domain.MatchReport{})
	require.NoError(t, err)
	_, err = exporter.SaveRewrite("rewritten")
	require.NoError(t, err)

	names, err := exporter.List()
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func TestListMissingDirIsEmpty(t *testing.T) {
	t.Parallel()

	exporter := NewExporter(filepath.Join(t.TempDir(), "nope"))
	names, err := exporter.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}
