package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/exptgrid/internal/config"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. It returns the
// app along with the buffers capturing its stdout and its debug-level logs.
func SetupAppTest(t *testing.T, cfg *Config, loaders ...config.Loader) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	if cfg.ScratchDisk == "" {
		cfg.ScratchDisk = DefaultScratchDisk
	}
	testApp := NewApp(outBuffer, logBuffer, cfg, loaders...)

	t.Cleanup(func() {
		if os.Getenv("EXPTGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
