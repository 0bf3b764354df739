package bulkgridgo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feakit/bulkgridgo"
)

func TestImport_DeckWithInclude(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	mainDeck := "BEGIN BULK\nGRID,1,,0.0,0.0,0.0\nINCLUDE 'extra.bdf'\nENDDATA\n"
	extraDeck := "GRID,2,,1.0,0.0,0.0\n"
	mainPath := filepath.Join(dir, "main.bdf")
	require.NoError(t, os.WriteFile(mainPath, []byte(mainDeck), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.bdf"), []byte(extraDeck), 0644))

	reg, err := bulkgridgo.NewRegistry()
	require.NoError(t, err)

	// --- Act ---
	model, report, err := bulkgridgo.Import(context.Background(), reg, mainPath, bulkgridgo.Options{})

	// --- Assert ---
	require.NoError(t, err)

	grids, ok := model.Get("GRID")
	require.True(t, ok)
	require.Equal(t, []int64{1, 2}, grids.Ints("id"))

	require.Len(t, report.Files, 2, "the include should count as a read file")
	require.Equal(t, 2, report.Records)
	require.True(t, reg.Frozen(), "an import leaves the registry frozen")
}

func TestImportBytes_StrictOption(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	reg, err := bulkgridgo.NewRegistry()
	require.NoError(t, err)
	src := []byte("BEGIN BULK\nNOPE,1\nENDDATA\n")

	// --- Act ---
	_, _, err = bulkgridgo.ImportBytes(context.Background(), reg, "strict.bdf", src, bulkgridgo.Options{Strict: true})

	// --- Assert ---
	require.ErrorContains(t, err, "unknown card type")
}
