package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/hatremote/internal/commands"
	"github.com/specialistvlad/hatremote/internal/ids"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
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

// ExecutionRecord is one command played by a RecordingHost.
type ExecutionRecord struct {
	Command ids.CommandID
	Actions []commands.Action
}

// RecordingHost records executed commands instead of sending input.
type RecordingHost struct {
	mu      sync.Mutex
	Window  string
	Records []ExecutionRecord
}

func (h *RecordingHost) Execute(_ context.Context, id ids.CommandID, actions []commands.Action) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Records = append(h.Records, ExecutionRecord{Command: id, Actions: actions})
	return nil
}

func (h *RecordingHost) ActiveWindow() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Window, nil
}

// Executed returns the ids of the recorded commands in order.
func (h *RecordingHost) Executed() []ids.CommandID {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ids.CommandID, len(h.Records))
	for i, r := range h.Records {
		out[i] = r.Command
	}
	return out
}

// Test config files written by WriteTestConfigs.
const (
	TestCommands = commands.HeaderPrefix + "WIN\tMAC\n" +
		"copy\tedit\tcopy\tcopy selection\t^c\t$c\n" +
		"paste\tedit\tpaste\t\t^v\n"
	TestSequences = "commandSequence\tboth\tedit\tcopy and paste\t\tWIN\tcopy,paste\n"
	TestVariables = "defineVariable\tclip\n" +
		"initValueForVar\t*\tclip\t>\n" +
		"variableUpdate_append\t*\tcopy\tclip\tc\n"
	TestLayout = "page:Main\n" +
		"copy;paste;text:clip\n" +
		"page:More\n" +
		"both;sel\n" +
		"optionsSelectorPage:sel;Selector\n" +
		"copy;paste\n"
	TestImageResources = "copy_icon\ticons/copy.png\t0,0\t32,32\n"
	TestImageCommands  = "copy\tWIN\tcopy_icon\n"
)

// WriteTestConfigs writes the test configs into a temp dir and returns a
// valid Config pointing at them.
func WriteTestConfigs(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		return path
	}

	cfg := DefaultConfig()
	cfg.CommandsPath = write("commands.csv", TestCommands)
	cfg.InputSequencesPaths = []string{write("sequences.txt", TestSequences)}
	cfg.VariablesPaths = []string{write("variables.txt", TestVariables)}
	cfg.LayoutPath = write("layout.txt", TestLayout)
	cfg.ImageResourcesPath = write("images.txt", TestImageResources)
	cfg.ImagesToCommandsPath = write("images_map.txt", TestImageCommands)
	return cfg
}

// SetupAppTest creates a new app instance for system testing. Logs are
// printed when HAT_TEST_LOGS=true.
func SetupAppTest(t *testing.T, cfg *Config, host *RecordingHost) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(logBuffer, cfg, host)

	t.Cleanup(func() {
		if os.Getenv("HAT_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
