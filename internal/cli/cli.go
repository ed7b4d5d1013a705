package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/hatremote/internal/app"
	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/session"
)

// Version is printed by -version.
var Version = "dev"

// Process exit codes.
const (
	ExitUsage           = 2
	ExitMissingCommands = 3
	ExitMissingLayout   = 4
	ExitConfig          = 5
	ExitPartialImages   = 6
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Mode selects what the process does with the configuration.
type Mode int

const (
	ModeRun Mode = iota
	ModeCheck
	ModePreview
)

// Invocation is the parsed command line.
type Invocation struct {
	Config     *app.Config
	Mode       Mode
	PreviewEnv string
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// discoverSession is replaced in tests.
var discoverSession = session.Discover

// Parse processes command-line arguments. It returns the Invocation, a
// boolean indicating if the program should exit cleanly, or an ExitError.
// Values come from the defaults, then the session file, then the flags that
// were set explicitly.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("hatremote", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
hatremote - Drive the host's keyboard and mouse from a remote button grid.

Usage:
  hatremote [options]

The config files may be given as flags or in an HCL session file. Without
-session, $XDG_CONFIG_HOME/hatremote/session.hcl is used when it exists.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := app.DefaultConfig()
	var (
		inputSequences stringList
		variables      stringList
	)
	sessionFlag := flagSet.String("session", "", "Path to an HCL session file.")
	commandsFlag := flagSet.String("commands", "", "Path to the commands config.")
	layoutFlag := flagSet.String("layout", "", "Path to the layout config.")
	flagSet.Var(&inputSequences, "input-sequences", "Path to an input sequences config. Repeatable.")
	flagSet.Var(&variables, "variables", "Path to a variables config. Repeatable.")
	imageResourcesFlag := flagSet.String("image-resources", "", "Path to the image resources config.")
	imagesToCommandsFlag := flagSet.String("images-to-commands", "", "Path to the images to commands config.")
	portFlag := flagSet.Int("port", defaults.Port, "Port of the remote server.")
	healthPortFlag := flagSet.Int("healthcheck-port", defaults.HealthcheckPort, "Port for the HTTP health check server. 0 is disabled.")
	keysDelayFlag := flagSet.Int("keys-delay", 0, "Delay after every simulated key event, in milliseconds.")
	stickFlag := flagSet.Bool("stick-env-to-window", false, "Bind each environment to the window that is on top when it is selected.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	checkFlag := flagSet.Bool("check", false, "Validate the configs and exit.")
	previewFlag := flagSet.String("preview", "", "Print the layout resolved for the named environment and exit.")
	versionFlag := flagSet.Bool("version", false, "Print the version and exit.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("unexpected arguments: %v", flagSet.Args())}
	}
	if *versionFlag {
		fmt.Fprintf(output, "hatremote %s\n", Version)
		return nil, true, nil
	}
	if *checkFlag && *previewFlag != "" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "-check and -preview cannot be combined"}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := defaults
	sessionPath := *sessionFlag
	if sessionPath == "" {
		if found, ok := discoverSession(); ok {
			sessionPath = found
		}
	}
	if sessionPath != "" {
		ctx := ctxlog.WithLogger(context.Background(), slog.Default())
		f, err := session.Load(ctx, sessionPath)
		if err != nil {
			return nil, false, &ExitError{Code: ExitConfig, Message: err.Error()}
		}
		cfg.ApplySession(f)
		slog.Debug("Session file applied.", "path", sessionPath)
	}

	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "commands":
			cfg.CommandsPath = *commandsFlag
		case "layout":
			cfg.LayoutPath = *layoutFlag
		case "input-sequences":
			cfg.InputSequencesPaths = inputSequences
		case "variables":
			cfg.VariablesPaths = variables
		case "image-resources":
			cfg.ImageResourcesPath = *imageResourcesFlag
		case "images-to-commands":
			cfg.ImagesToCommandsPath = *imagesToCommandsFlag
		case "port":
			cfg.Port = *portFlag
		case "healthcheck-port":
			cfg.HealthcheckPort = *healthPortFlag
		case "keys-delay":
			cfg.KeysDelay = time.Duration(*keysDelayFlag) * time.Millisecond
		case "stick-env-to-window":
			cfg.StickEnvToWindow = *stickFlag
		case "log-format":
			cfg.LogFormat = *logFormatFlag
		case "log-level":
			cfg.LogLevel = *logLevelFlag
		}
	})
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, configExitError(err)
	}

	inv := &Invocation{Config: config, Mode: ModeRun}
	switch {
	case *checkFlag:
		inv.Mode = ModeCheck
	case *previewFlag != "":
		inv.Mode = ModePreview
		inv.PreviewEnv = *previewFlag
	}
	slog.Debug("CLI parser finished successfully.", "config", config)
	return inv, false, nil
}

func configExitError(err error) *ExitError {
	code := ExitUsage
	switch {
	case errors.Is(err, app.ErrMissingCommands):
		code = ExitMissingCommands
	case errors.Is(err, app.ErrMissingLayout):
		code = ExitMissingLayout
	case errors.Is(err, app.ErrPartialImages):
		code = ExitPartialImages
	}
	return &ExitError{Code: code, Message: err.Error()}
}

// StartupError maps an error returned by the App to the process exit code.
func StartupError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if app.IsConfigError(err) {
		return &ExitError{Code: ExitConfig, Message: err.Error()}
	}
	return err
}
