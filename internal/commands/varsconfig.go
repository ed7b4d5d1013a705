package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/specialistvlad/hatremote/internal/configio"
	"github.com/specialistvlad/hatremote/internal/ids"
	"github.com/specialistvlad/hatremote/internal/variables"
)

// Row type keywords of the variables config.
const (
	KeywordDefineVariable    = "defineVariable"
	KeywordInitValue         = "initValueForVar"
	KeywordAssignText        = "variableUpdate_reset"
	KeywordAppendText        = "variableUpdate_append"
	KeywordClearLastChars    = "variableUpdate_backspace"
	KeywordAppendFromAnother = "variableUpdate_appendValueFromAnotherLabel"
	KeywordAssignFromAnother = "variableUpdate_assignValueFromAnotherLabel"
)

const fileTypeVariables = "variables config"

// ConsumeVariables reads a variables config. Declarations and references are
// processed in file order, so a variable or command must appear before it is
// used. On error c is left unchanged.
func (c *Container) ConsumeVariables(r io.Reader) error {
	lines, err := configio.ReadLines(r, configio.SkipBlankAndComments)
	if err != nil {
		return err
	}
	scratch := c.Clone()
	for _, line := range lines {
		if err := scratch.pushVariableRow(line.Text); err != nil {
			return configio.Wrap(fileTypeVariables, line.Number, err)
		}
	}
	*c = *scratch
	return nil
}

func (c *Container) pushVariableRow(row string) error {
	fields := configio.SplitAll(row, '\t')
	switch fields[0] {
	case KeywordDefineVariable:
		return c.defineVariable(fields)
	case KeywordInitValue:
		return c.initValue(fields)
	case KeywordAssignText, KeywordAppendText, KeywordClearLastChars,
		KeywordAppendFromAnother, KeywordAssignFromAnother:
		return c.addVariableOperation(fields)
	}
	return fmt.Errorf("unknown row type %q", fields[0])
}

// defineVariable: keyword, variable id.
func (c *Container) defineVariable(fields []string) error {
	if len(fields) != 2 {
		return fmt.Errorf("%s expects exactly one variable id", KeywordDefineVariable)
	}
	if fields[1] == "" {
		return errors.New("empty variable id")
	}
	if err := ids.ValidateIdentifier(fields[1]); err != nil {
		return fmt.Errorf("variable id: %w", err)
	}
	return c.vars.DeclareForAll(ids.VariableID(fields[1]))
}

// initValue: keyword, environments, variable id, value. An empty
// environments field sets nothing.
func (c *Container) initValue(fields []string) error {
	if len(fields) < 3 || len(fields) > 4 {
		return fmt.Errorf("%s expects environments, variable id and value", KeywordInitValue)
	}
	id := ids.VariableID(fields[2])
	if !c.vars.DeclaredForAll(id) {
		return fmt.Errorf("%w: %s", variables.ErrUndeclared, id)
	}
	enabled, err := c.envSpec(fields[1])
	if err != nil {
		return err
	}
	value := ""
	if len(fields) == 4 {
		value = fields[3]
	}
	for env, on := range enabled {
		if !on {
			continue
		}
		if err := c.vars.ForEnv(env).SetValue(id, value); err != nil {
			return err
		}
	}
	return nil
}

// addVariableOperation: keyword, environments, trigger command, target
// variable, parameter.
func (c *Container) addVariableOperation(fields []string) error {
	if len(fields) < 4 || len(fields) > 5 {
		return fmt.Errorf("%s expects environments, command id, variable id and a parameter", fields[0])
	}
	for len(fields) < 5 {
		fields = append(fields, "")
	}
	if fields[1] == "" {
		return errors.New("variable operation is not enabled for any environment")
	}
	enabled, err := c.envSpec(fields[1])
	if err != nil {
		return err
	}
	cmdIdx, ok := c.Index(ids.CommandID(fields[2]))
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, fields[2])
	}
	target := ids.VariableID(fields[3])
	if !c.vars.DeclaredForAll(target) {
		return fmt.Errorf("%w: %s", variables.ErrUndeclared, target)
	}

	op, err := variableOperation(fields[0], target, fields[4])
	if err != nil {
		return err
	}
	if op.Source.NonEmpty() && !c.vars.DeclaredForAll(op.Source) {
		return fmt.Errorf("%w: %s", variables.ErrUndeclared, op.Source)
	}
	for env, on := range enabled {
		if !on {
			continue
		}
		if err := c.vars.ForEnv(env).AddOperation(cmdIdx, op); err != nil {
			return err
		}
	}
	return nil
}

func variableOperation(keyword string, target ids.VariableID, param string) (variables.Operation, error) {
	switch keyword {
	case KeywordAssignText:
		return variables.AssignText(target, param), nil
	case KeywordAppendText:
		return variables.AppendText(target, param), nil
	case KeywordAssignFromAnother:
		return variables.AssignValue(target, ids.VariableID(param)), nil
	case KeywordAppendFromAnother:
		return variables.AppendValue(target, ids.VariableID(param)), nil
	}
	n, err := strconv.ParseUint(param, 10, 31)
	if err != nil {
		return variables.Operation{}, fmt.Errorf("invalid characters count %q: expected an unsigned integer", param)
	}
	return variables.ClearTailCharacters(target, int(n)), nil
}
