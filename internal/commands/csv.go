package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/hatremote/internal/configio"
	"github.com/specialistvlad/hatremote/internal/ids"
)

// HeaderPrefix opens every commands config.
const HeaderPrefix = "command_id\tcommand_category\tcommand_note\tcommand_description\t"

const fileTypeCommands = "commands config"

// ParseCommandsCSV reads the main commands config. The first non-empty line
// is the header; after it only zero-length lines are skipped.
func ParseCommandsCSV(r io.Reader, b ActionBuilder) (*Container, error) {
	lines, err := configio.ReadLines(r, configio.SkipEmpty)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &configio.ParseError{FileType: fileTypeCommands, Err: errors.New("no data in the commands config stream")}
	}

	envs, err := ParseHeader(lines[0].Text)
	if err != nil {
		return nil, configio.Wrap(fileTypeCommands, lines[0].Number, err)
	}
	c := NewContainer(envs)
	for _, line := range lines[1:] {
		fields, err := ParseDataRow(line.Text)
		if err == nil {
			err = c.PushRow(fields, b)
		}
		if err != nil {
			return nil, configio.Wrap(fileTypeCommands, line.Number, err)
		}
	}
	return c, nil
}

// ParseHeader checks the mandatory prefix and returns the environment names.
func ParseHeader(header string) ([]string, error) {
	rest, ok := strings.CutPrefix(header, HeaderPrefix)
	if !ok {
		return nil, fmt.Errorf("header must start with %q", HeaderPrefix)
	}
	envs, err := configio.Split(rest, '\t', func(value string, _ int, hasMore bool) (bool, error) {
		if value == "" && hasMore {
			return false, errors.New("empty environment name in the header")
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if len(envs) == 0 {
		return nil, errors.New("header names no environments")
	}
	return envs, nil
}

// ParseDataRow splits a command row and validates its mandatory fields.
func ParseDataRow(row string) ([]string, error) {
	return configio.Split(row, '\t', validateMandatoryField)
}

func validateMandatoryField(value string, index int, _ bool) (bool, error) {
	switch index {
	case 0:
		if value == "" {
			return false, errors.New("each row needs a non-empty command id")
		}
		if err := ids.ValidateIdentifier(value); err != nil {
			return false, fmt.Errorf("command id: %w", err)
		}
	case 1:
		if err := ids.ValidateIdentifier(value); err != nil {
			return false, fmt.Errorf("command category: %w", err)
		}
	case 2:
		if value == "" {
			return false, errors.New("each row needs a non-empty note")
		}
	}
	return true, nil
}

func splitList(s string) []string {
	return configio.SplitAll(s, ',')
}
