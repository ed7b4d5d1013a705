// Command hatctl presses buttons on a running hatremote server from a
// terminal, the way a remote surface would.
//
//	hatctl -url http://desk:12345 WIN copy
//
// Each argument is the text of a button to press, in order. The layout shown
// after the last press is printed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/specialistvlad/hatremote/internal/cli"
	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/preview"
	"github.com/specialistvlad/hatremote/internal/remoteclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	url      string
	timeout  time.Duration
	settle   time.Duration
	insecure bool
	asJSON   bool
	logLevel string
	presses  []string
}

func parseArgs(args []string, output io.Writer) (*options, bool, error) {
	flagSet := flag.NewFlagSet("hatctl", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
hatctl - Press buttons on a running hatremote server.

Usage:
  hatctl [options] [BUTTON_TEXT...]

Options:
`)
		flagSet.PrintDefaults()
	}

	opts := &options{}
	flagSet.StringVar(&opts.url, "url", "http://localhost:12345", "Address of the hatremote server.")
	flagSet.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Time allowed for the whole exchange.")
	flagSet.DurationVar(&opts.settle, "settle", 500*time.Millisecond, "Time to wait for a new layout after each press.")
	flagSet.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification.")
	flagSet.BoolVar(&opts.asJSON, "json", false, "Print the layout as JSON.")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &cli.ExitError{Code: cli.ExitUsage, Message: err.Error()}
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return nil, false, &cli.ExitError{Code: cli.ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if opts.timeout <= 0 {
		return nil, false, &cli.ExitError{Code: cli.ExitUsage, Message: "timeout must be positive"}
	}
	opts.presses = flagSet.Args()
	return opts, false, nil
}

func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	opts, shouldExit, err := parseArgs(args, outW)
	if err != nil || shouldExit {
		return err
	}

	var level slog.Level
	_ = level.UnmarshalText([]byte(opts.logLevel))
	logger := slog.New(slog.NewTextHandler(errW, &slog.HandlerOptions{Level: level}))
	ctx = ctxlog.WithLogger(ctx, logger)

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	client, err := remoteclient.Dial(ctx, opts.url, remoteclient.Options{
		InsecureSkipVerify: opts.insecure,
		Settle:             opts.settle,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	view := client.Layout()
	for _, text := range opts.presses {
		logger.Info("Pressing button.", "text", text)
		if view, err = client.Press(ctx, text); err != nil {
			return err
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(outW)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	_, err = fmt.Fprint(outW, preview.RenderView(view))
	return err
}
