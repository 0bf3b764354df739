package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feakit/bulkgridgo/internal/testutil"
)

// TestErrorHandling_InvalidManifestIsRejected validates that a syntactically
// broken card manifest stops the application during startup with a useful
// error instead of a raw panic.
func TestErrorHandling_InvalidManifestIsRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"cards/broken.hcl": `card "BAD" { field "id" {`,
		"decks/model.bdf":  "BEGIN BULK\nGRID,1,,0.0,0.0,0.0\nENDDATA\n",
	}

	// --- Act ---
	result := testutil.RunImportTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "application startup panicked")
	require.Contains(t, result.Err.Error(), "card manifest")
}

// TestErrorHandling_UnknownCheckIsRejected validates manifest validation: a
// field naming a check with no registered function must not register.
func TestErrorHandling_UnknownCheckIsRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"cards/checked.hcl": `
card "CHKD" {
  entity = "checked"

  field "id" {
    kind  = "integer"
    check = "definitely-not-registered"
  }
}
`,
		"decks/model.bdf": "BEGIN BULK\nGRID,1,,0.0,0.0,0.0\nENDDATA\n",
	}

	// --- Act ---
	result := testutil.RunImportTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "application startup panicked")
	require.Contains(t, result.Err.Error(), "has no registered function")
}
