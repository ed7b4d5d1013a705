// Package session loads the HCL session file: the set of config files a
// hatremote server works with plus its server and log options.
//
// Expressions may use config_dir, the directory of the session file, and env,
// a map of the process environment:
//
//	commands = "${env.HOME}/hat/commands.csv"
//	layout   = "${config_dir}/layout.txt"
//
// Relative paths are resolved against config_dir.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/hatremote/internal/ctxlog"
)

// DefaultRelPath is looked up in the XDG config directories.
const DefaultRelPath = "hatremote/session.hcl"

// File is the decoded session file. Optional scalars are pointers so that a
// missing attribute can be told apart from a zero value.
type File struct {
	Commands       string   `hcl:"commands,optional"`
	Layout         string   `hcl:"layout,optional"`
	InputSequences []string `hcl:"input_sequences,optional"`
	Variables      []string `hcl:"variables,optional"`

	Images *Images `hcl:"images,block"`
	Server *Server `hcl:"server,block"`
	Log    *Log    `hcl:"log,block"`
}

type Images struct {
	Resources string `hcl:"resources"`
	Commands  string `hcl:"commands"`
}

type Server struct {
	Port             *int  `hcl:"port,optional"`
	HealthcheckPort  *int  `hcl:"healthcheck_port,optional"`
	StickEnvToWindow *bool `hcl:"stick_env_to_window,optional"`
	KeysDelayMs      *int  `hcl:"keys_delay_ms,optional"`
}

type Log struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// Discover returns the session file from the XDG config directories.
func Discover() (string, bool) {
	path, err := xdg.SearchConfigFile(DefaultRelPath)
	if err != nil {
		return "", false
	}
	return path, true
}

// Load reads and decodes the session file at path.
func Load(ctx context.Context, path string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading session file.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session file path %s: %w", path, err)
	}
	f, err := Decode(src, abs, filepath.Dir(abs), os.Environ())
	if err != nil {
		return nil, err
	}
	logger.Debug("Session file decoded.", "path", abs, "input_sequences", len(f.InputSequences), "variables", len(f.Variables))
	return f, nil
}

// Decode parses src as a session file named filename. environ holds
// "KEY=value" pairs for the env variable.
func Decode(src []byte, filename, configDir string, environ []string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse session file %s: %w", filename, diags)
	}

	var f File
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(configDir, environ), &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode session file %s: %w", filename, diags)
	}
	f.resolvePaths(configDir)
	return &f, nil
}

func evalContext(configDir string, environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	env := cty.MapValEmpty(cty.String)
	if len(vars) > 0 {
		env = cty.MapVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"config_dir": cty.StringVal(configDir),
			"env":        env,
		},
	}
}

func (f *File) resolvePaths(dir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	resolve(&f.Commands)
	resolve(&f.Layout)
	for i := range f.InputSequences {
		resolve(&f.InputSequences[i])
	}
	for i := range f.Variables {
		resolve(&f.Variables[i])
	}
	if f.Images != nil {
		resolve(&f.Images.Resources)
		resolve(&f.Images.Commands)
	}
}
