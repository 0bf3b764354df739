package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feakit/bulkgridgo/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an import harness run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunImportTest provides a standardized harness for import tests: it writes
// the given files into a temporary tree and runs a full App over the decks/
// subdirectory. Files keep their relative paths, so "decks/model.bdf" and
// "cards/extra.hcl" land in the directories the App reads from. A startup
// panic (bad manifest) is recovered into HarnessResult.Err.
func RunImportTest(t *testing.T, files map[string]string, mutate ...func(*app.Config)) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	decksDir := filepath.Join(tmpDir, "decks")
	cardsDir := filepath.Join(tmpDir, "cards")
	require.NoError(t, os.Mkdir(decksDir, 0755))
	require.NoError(t, os.Mkdir(cardsDir, 0755))

	hasCards := false
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
		if strings.HasPrefix(name, "cards/") {
			hasCards = true
		}
	}

	cfg := &app.Config{
		DeckPath:  decksDir,
		LogLevel:  "debug",
		LogFormat: "text",
		Workers:   4,
	}
	if hasCards {
		cfg.CardsPath = cardsDir
	}
	for _, fn := range mutate {
		fn(cfg)
	}

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, cfg)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background())

	if os.Getenv("BULKGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
