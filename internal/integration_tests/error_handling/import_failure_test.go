package integration_tests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feakit/bulkgridgo/internal/app"
	"github.com/feakit/bulkgridgo/internal/testutil"
)

// TestErrorHandling_OrphanContinuationFailsRun validates that a structural
// deck error surfaces through Run with the file and line that caused it.
func TestErrorHandling_OrphanContinuationFailsRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"decks/model.bdf": "+CONT   1.0\n",
	}

	// --- Act ---
	result := testutil.RunImportTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "importing")
	require.Contains(t, result.Err.Error(), "model.bdf:1")
	require.Contains(t, result.Err.Error(), "continuation")
	require.True(t, strings.Contains(result.LogOutput, "deck import failed"))
}

// TestErrorHandling_NoDeckFilesFound validates the empty-directory error.
func TestErrorHandling_NoDeckFilesFound(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"decks/readme.txt": "nothing importable here\n",
	}

	// --- Act ---
	result := testutil.RunImportTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "no deck files")
}

// TestErrorHandling_UnknownCardSkippedByDefault validates the default
// leniency: unrecognized card types land in the skip report with a warning.
func TestErrorHandling_UnknownCardSkippedByDefault(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"decks/model.bdf": "BEGIN BULK\nFOO,1,2\nGRID,1,,0.0,0.0,0.0\nFOO,3,4\nENDDATA\n",
	}

	// --- Act ---
	result := testutil.RunImportTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	report := result.App.Results()[0].Report
	require.Equal(t, map[string]int{"FOO": 2}, report.Skipped)
	require.Equal(t, 1, report.Records)
	require.True(t, strings.Contains(result.LogOutput, "skipping unknown card type"))
}

// TestErrorHandling_StrictModeRejectsUnknownCard validates that strict mode
// turns an unknown card type into a fatal import error.
func TestErrorHandling_StrictModeRejectsUnknownCard(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"decks/model.bdf": "BEGIN BULK\nGRID,1,,0.0,0.0,0.0\nFOO,1,2\nENDDATA\n",
	}

	// --- Act ---
	result := testutil.RunImportTest(t, files, func(cfg *app.Config) {
		cfg.Strict = true
	})

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "unknown card type")
	require.Contains(t, result.Err.Error(), "model.bdf:3")
}

// TestErrorHandling_DuplicateIdentifierFailsRun validates that two records
// of one card type sharing an identifier abort the import, naming both
// definition sites.
func TestErrorHandling_DuplicateIdentifierFailsRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"decks/model.bdf": "BEGIN BULK\nGRID,7,,0.0,0.0,0.0\nGRID,7,,1.0,0.0,0.0\nENDDATA\n",
	}

	// --- Act ---
	result := testutil.RunImportTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "duplicate identifier")
	require.Contains(t, result.Err.Error(), "model.bdf:2")
	require.Contains(t, result.Err.Error(), "model.bdf:3")
}

// TestErrorHandling_FirstFailureCancelsBatch validates fast-fail across a
// batch: one broken deck fails the run even when its siblings are valid.
func TestErrorHandling_FirstFailureCancelsBatch(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"decks/bad.bdf":  "+ORPHAN  1.0\n",
		"decks/good.bdf": "BEGIN BULK\nGRID,1,,0.0,0.0,0.0\nENDDATA\n",
	}

	// --- Act ---
	result := testutil.RunImportTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "bad.bdf")
	require.Empty(t, result.App.Results(), "a failed batch keeps no partial results")
}
