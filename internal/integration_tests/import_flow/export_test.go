package integration_tests

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feakit/bulkgridgo/internal/app"
	"github.com/feakit/bulkgridgo/internal/testutil"
)

// TestImportFlow_ExportSingleDeck validates that a single-deck run writes
// its JSON export straight to the configured path.
func TestImportFlow_ExportSingleDeck(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"decks/model.bdf": "BEGIN BULK\nGRID,7,,1.0,2.0,3.0\nENDDATA\n",
	}
	var exportPath string

	// --- Act ---
	result := testutil.RunImportTest(t, files, func(cfg *app.Config) {
		exportPath = filepath.Join(filepath.Dir(cfg.DeckPath), "model.json")
		cfg.Export = exportPath
	})

	// --- Assert ---
	require.NoError(t, result.Err)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	content := string(data)
	require.True(t, strings.Contains(content, `"type": "GRID"`))
	require.True(t, strings.Contains(content, `"records": 1`))
	require.True(t, strings.HasSuffix(content, "\n"), "export should end with a newline")
}

// TestImportFlow_ExportBatchWritesDirectory validates that a multi-deck run
// treats the export path as a directory with one JSON file per deck.
func TestImportFlow_ExportBatchWritesDirectory(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"decks/left.bdf":  "BEGIN BULK\nGRID,1,,0.0,0.0,0.0\nENDDATA\n",
		"decks/right.bdf": "BEGIN BULK\nGRID,2,,1.0,0.0,0.0\nENDDATA\n",
	}
	var exportDir string

	// --- Act ---
	result := testutil.RunImportTest(t, files, func(cfg *app.Config) {
		exportDir = filepath.Join(filepath.Dir(cfg.DeckPath), "out")
		cfg.Export = exportDir
	})

	// --- Assert ---
	require.NoError(t, result.Err)

	for _, name := range []string{"left.json", "right.json"} {
		data, err := os.ReadFile(filepath.Join(exportDir, name))
		require.NoError(t, err, "expected an export file per deck")
		require.True(t, strings.Contains(string(data), `"type": "GRID"`))
	}
}
