package app

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hatremote/internal/configio"
	"github.com/specialistvlad/hatremote/internal/ids"
	"github.com/specialistvlad/hatremote/internal/session"
)

func TestNewConfig(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.CommandsPath = "commands.csv"
		cfg.LayoutPath = "layout.txt"
		return cfg
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults with paths", mutate: func(*Config) {}},
		{name: "missing commands", mutate: func(c *Config) { c.CommandsPath = "" }, wantErr: ErrMissingCommands},
		{name: "missing layout", mutate: func(c *Config) { c.LayoutPath = "" }, wantErr: ErrMissingLayout},
		{name: "only image resources", mutate: func(c *Config) { c.ImageResourcesPath = "images.txt" }, wantErr: ErrPartialImages},
		{name: "only images to commands", mutate: func(c *Config) { c.ImagesToCommandsPath = "map.txt" }, wantErr: ErrPartialImages},
		{name: "both image configs", mutate: func(c *Config) { c.ImageResourcesPath, c.ImagesToCommandsPath = "a", "b" }},
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }, wantErr: ErrInvalidOption},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantErr: ErrInvalidOption},
		{name: "negative healthcheck port", mutate: func(c *Config) { c.HealthcheckPort = -1 }, wantErr: ErrInvalidOption},
		{name: "negative keys delay", mutate: func(c *Config) { c.KeysDelay = -time.Millisecond }, wantErr: ErrInvalidOption},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: ErrInvalidOption},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: ErrInvalidOption},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			cfg := valid()
			tc.mutate(&cfg)

			// Act
			got, err := NewConfig(cfg)

			// Assert
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cfg, *got)
		})
	}
}

func TestApplySession(t *testing.T) {
	// Arrange
	port, health, delay := 8080, 9090, 25
	stick := true
	level, format := "debug", "text"
	f := &session.File{
		Commands:       "/s/commands.csv",
		Layout:         "/s/layout.txt",
		InputSequences: []string{"/s/seq.txt"},
		Images:         &session.Images{Resources: "/s/images.txt", Commands: "/s/map.txt"},
		Server:         &session.Server{Port: &port, HealthcheckPort: &health, StickEnvToWindow: &stick, KeysDelayMs: &delay},
		Log:            &session.Log{Level: &level, Format: &format},
	}
	cfg := DefaultConfig()
	cfg.VariablesPaths = []string{"kept.txt"}

	// Act
	cfg.ApplySession(f)

	// Assert
	assert.Equal(t, Config{
		CommandsPath:         "/s/commands.csv",
		LayoutPath:           "/s/layout.txt",
		InputSequencesPaths:  []string{"/s/seq.txt"},
		VariablesPaths:       []string{"kept.txt"},
		ImageResourcesPath:   "/s/images.txt",
		ImagesToCommandsPath: "/s/map.txt",
		Port:                 8080,
		HealthcheckPort:      9090,
		StickEnvToWindow:     true,
		KeysDelay:            25 * time.Millisecond,
		LogFormat:            "text",
		LogLevel:             "debug",
	}, cfg)
}

func TestApplySession_EmptyFileKeepsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplySession(&session.File{})
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigs(t *testing.T) {
	// Arrange
	cfg := WriteTestConfigs(t)
	host := &RecordingHost{}
	a, logs := SetupAppTest(t, &cfg, host)
	var progress []string

	// Act
	opts, err := a.LoadConfigs(a.ctx, func(line string) { progress = append(progress, line) })

	// Assert
	require.NoError(t, err)
	cmds := opts.Layer.Commands()
	assert.Equal(t, []string{"WIN", "MAC"}, cmds.Environments())
	assert.Equal(t, 3, cmds.Len(), "copy, paste and the sequence")
	assert.Same(t, host, opts.Host)
	require.NotNil(t, opts.Images)
	assert.Equal(t, map[ids.CommandID]ids.ImageID{"copy": "copy_icon"}, opts.Images.ImagesForEnv(0))
	assert.Len(t, opts.Layer.Layout().Pages, 2)

	require.NotEmpty(t, progress)
	assert.Contains(t, progress[0], cfg.CommandsPath)
	assert.Equal(t, "configs loaded", progress[len(progress)-1])
	assert.Contains(t, logs.String(), "reading layout from")
}

func TestLoadConfigs_EachCallIsIndependent(t *testing.T) {
	// Arrange
	cfg := WriteTestConfigs(t)
	a, _ := SetupAppTest(t, &cfg, &RecordingHost{})

	// Act
	first, err := a.LoadConfigs(a.ctx, nil)
	require.NoError(t, err)
	second, err := a.LoadConfigs(a.ctx, nil)
	require.NoError(t, err)

	// Assert
	assert.NotSame(t, first.Layer, second.Layer)
	assert.NotSame(t, first.Layer.Commands(), second.Layer.Commands())
}

func TestLoadConfigs_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		mutate     func(t *testing.T, cfg *Config)
		parseError bool
	}{
		{
			name:   "missing commands file",
			mutate: func(t *testing.T, cfg *Config) { cfg.CommandsPath = filepath.Join(t.TempDir(), "nope.csv") },
		},
		{
			name: "broken commands header",
			mutate: func(t *testing.T, cfg *Config) {
				require.NoError(t, os.WriteFile(cfg.CommandsPath, []byte("id\tWIN\n"), 0o600))
			},
			parseError: true,
		},
		{
			name: "unknown command in variables",
			mutate: func(t *testing.T, cfg *Config) {
				require.NoError(t, os.WriteFile(cfg.VariablesPaths[0], []byte("defineVariable\tv\nvariableUpdate_append\t*\tcut\tv\tx\n"), 0o600))
			},
			parseError: true,
		},
		{
			name: "selector id collides with a command",
			mutate: func(t *testing.T, cfg *Config) {
				require.NoError(t, os.WriteFile(cfg.LayoutPath, []byte("page:Main\ncopy\noptionsSelectorPage:copy;Copy\npaste\n"), 0o600))
			},
		},
		{
			name: "image for an unknown environment",
			mutate: func(t *testing.T, cfg *Config) {
				require.NoError(t, os.WriteFile(cfg.ImagesToCommandsPath, []byte("copy\tLINUX\tcopy_icon\n"), 0o600))
			},
			parseError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			cfg := WriteTestConfigs(t)
			tc.mutate(t, &cfg)
			a, _ := SetupAppTest(t, &cfg, &RecordingHost{})

			// Act
			_, err := a.LoadConfigs(a.ctx, nil)

			// Assert
			require.Error(t, err)
			assert.True(t, IsConfigError(err), "got %T: %v", err, err)
			assert.Equal(t, tc.parseError, configio.IsParseError(err), "%v", err)
		})
	}
}

func TestCheck(t *testing.T) {
	t.Run("valid configs", func(t *testing.T) {
		cfg := WriteTestConfigs(t)
		a, logs := SetupAppTest(t, &cfg, &RecordingHost{})

		require.NoError(t, a.Check(context.Background()))
		assert.Contains(t, logs.String(), "Configs are valid.")
	})

	t.Run("invalid configs", func(t *testing.T) {
		cfg := WriteTestConfigs(t)
		cfg.LayoutPath = filepath.Join(t.TempDir(), "missing.txt")
		a, _ := SetupAppTest(t, &cfg, &RecordingHost{})

		err := a.Check(context.Background())
		assert.True(t, IsConfigError(err))
	})
}

func TestPreview(t *testing.T) {
	t.Run("known environment", func(t *testing.T) {
		// Arrange
		cfg := WriteTestConfigs(t)
		cfg.LogLevel = "error"
		var out bytes.Buffer
		a := NewApp(&out, &cfg, &RecordingHost{})

		// Act
		err := a.Preview(context.Background(), "WIN")

		// Assert
		require.NoError(t, err)
		for _, want := range []string{"WIN", "Environment selection", "Main", "copy", "paste", ">", "copy and paste", "Selector ▸"} {
			assert.Contains(t, out.String(), want)
		}
	})

	t.Run("unknown environment", func(t *testing.T) {
		cfg := WriteTestConfigs(t)
		a, _ := SetupAppTest(t, &cfg, &RecordingHost{})

		err := a.Preview(context.Background(), "LINUX")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown environment "LINUX"`)
		assert.False(t, IsConfigError(err))
	})
}

func TestHealthHandler(t *testing.T) {
	// Arrange
	cfg := WriteTestConfigs(t)
	a, logs := SetupAppTest(t, &cfg, &RecordingHost{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	// Act
	a.healthHandler(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
	assert.Contains(t, logs.String(), "Health check endpoint hit.")
}

func TestHealthCheckServer_Disabled(t *testing.T) {
	cfg := WriteTestConfigs(t)
	a, _ := SetupAppTest(t, &cfg, &RecordingHost{})

	a.healthCheckServer()

	assert.Nil(t, a.httpServer)
	assert.NoError(t, a.closeHealthCheckServer())
}

func TestCloseHealthCheckServer_WaitsForInFlightRequests(t *testing.T) {
	// Arrange
	cfg := WriteTestConfigs(t)
	a, _ := SetupAppTest(t, &cfg, &RecordingHost{})
	cancelled, cancel := context.WithCancel(a.ctx)
	cancel()
	a.ctx = cancelled

	entered := make(chan struct{})
	release := make(chan struct{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a.httpServer = &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	})}
	go func() { _ = a.httpServer.Serve(ln) }()

	respCh := make(chan error, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err == nil {
			resp.Body.Close()
		}
		respCh <- err
	}()
	<-entered

	// Act
	closed := make(chan error, 1)
	go func() { closed <- a.closeHealthCheckServer() }()
	time.Sleep(50 * time.Millisecond)
	close(release)

	// Assert
	select {
	case err := <-closed:
		assert.NoError(t, err, "shutdown must not inherit the cancelled app context")
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not finish")
	}
	assert.NoError(t, <-respCh)
}

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", wantDebug: true},
		{name: "info json", level: "info", format: "json", wantJSON: true},
		{name: "unknown level falls back to info", level: "loud", format: "text"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(tc.level, tc.format, &buf)

			logger.Debug("debug line")
			logger.Info("info line")

			assert.Equal(t, tc.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))
			assert.Contains(t, buf.String(), "info line")
			assert.Equal(t, tc.wantJSON, bytes.HasPrefix(buf.Bytes(), []byte("{")))
		})
	}
}

func TestRecordingHost(t *testing.T) {
	h := &RecordingHost{Window: "w1"}
	require.NoError(t, h.Execute(context.Background(), "copy", nil))
	require.NoError(t, h.Execute(context.Background(), "paste", nil))

	win, err := h.ActiveWindow()
	assert.NoError(t, err)
	assert.Equal(t, "w1", win)
	assert.Equal(t, []ids.CommandID{"copy", "paste"}, h.Executed())
}
