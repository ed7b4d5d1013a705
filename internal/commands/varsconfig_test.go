package commands

import (
	"strings"
	"testing"

	"github.com/specialistvlad/hatremote/internal/ids"
	"github.com/specialistvlad/hatremote/internal/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variablesBase(t *testing.T) *Container {
	t.Helper()
	const rest = "\tcategoryStr\tnoteStr\tdescStr\tvalueForEnv1\tvalueForEnv2\n"
	return parseCSV(t, HeaderPrefix+"ENV_0\tENV_1\n"+
		"COMMAND_0"+rest+
		"COMMAND_1"+rest+
		"COMMAND_2"+rest)
}

func consumeVariables(t *testing.T, base *Container, text string) (*Container, error) {
	t.Helper()
	plain := base.Clone()
	err := plain.ConsumeVariables(strings.NewReader(text))
	withBOM := base.Clone()
	errBOM := withBOM.ConsumeVariables(strings.NewReader(utf8BOM + text))
	require.Equal(t, err == nil, errBOM == nil)
	if err != nil {
		return nil, err
	}
	require.True(t, plain.VariablesEqual(withBOM))
	return plain, nil
}

func TestConsumeVariables_BuildsPerEnvironmentManagers(t *testing.T) {
	// --- Arrange ---
	base := variablesBase(t)
	text := strings.Join([]string{
		"defineVariable\tVAR_0",
		"initValueForVar\t*\tVAR_0\tinit0",
		"defineVariable\tVAR_1",
		"initValueForVar\tENV_0\tVAR_1\tinit1",
		"defineVariable\tVAR_2",
		"initValueForVar\t\tVAR_2\tnever",
		"# operations",
		"variableUpdate_reset\t*\tCOMMAND_0\tVAR_0\tupdated",
		"variableUpdate_append\tENV_0\tCOMMAND_1\tVAR_1\t_tail",
		"variableUpdate_assignValueFromAnotherLabel\tENV_1\tCOMMAND_2\tVAR_2\tVAR_1",
		"variableUpdate_appendValueFromAnotherLabel\t*\tCOMMAND_0\tVAR_2\tVAR_0",
		"variableUpdate_backspace\tENV_1\tCOMMAND_1\tVAR_0\t300",
		"",
	}, "\n")

	env0 := variables.NewManager()
	env1 := variables.NewManager()
	for _, m := range []*variables.Manager{env0, env1} {
		for _, v := range []ids.VariableID{"VAR_0", "VAR_1", "VAR_2"} {
			require.NoError(t, m.Declare(v))
		}
		require.NoError(t, m.SetValue("VAR_0", "init0"))
		require.NoError(t, m.AddOperation(0, variables.AssignText("VAR_0", "updated")))
	}
	require.NoError(t, env0.SetValue("VAR_1", "init1"))
	require.NoError(t, env0.AddOperation(1, variables.AppendText("VAR_1", "_tail")))
	require.NoError(t, env1.AddOperation(2, variables.AssignValue("VAR_2", "VAR_1")))
	for _, m := range []*variables.Manager{env0, env1} {
		require.NoError(t, m.AddOperation(0, variables.AppendValue("VAR_2", "VAR_0")))
	}
	require.NoError(t, env1.AddOperation(1, variables.ClearTailCharacters("VAR_0", 300)))

	// --- Act ---
	c, err := consumeVariables(t, base, text)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, env0.Equal(c.Variables().ForEnv(0)))
	assert.True(t, env1.Equal(c.Variables().ForEnv(1)))
	assert.False(t, c.Variables().ForEnv(0).Equal(c.Variables().ForEnv(1)))
	assert.True(t, c.Equal(base), "variables do not change the command table")
}

func TestConsumeVariables_Errors(t *testing.T) {
	base, err := consumeVariables(t, variablesBase(t), "defineVariable\tVAR_0\ndefineVariable\tVAR_1\n")
	require.NoError(t, err)

	testCases := []struct {
		name   string
		line   string
		target error
	}{
		{name: "init unknown variable", line: "initValueForVar\t*\tNOPE\tx", target: variables.ErrUndeclared},
		{name: "append text unknown variable", line: "variableUpdate_append\t*\tCOMMAND_0\tNOPE\tx", target: variables.ErrUndeclared},
		{name: "assign text unknown variable", line: "variableUpdate_reset\t*\tCOMMAND_0\tNOPE\tx", target: variables.ErrUndeclared},
		{name: "append value unknown target", line: "variableUpdate_appendValueFromAnotherLabel\t*\tCOMMAND_0\tNOPE\tVAR_0", target: variables.ErrUndeclared},
		{name: "assign value unknown source", line: "variableUpdate_assignValueFromAnotherLabel\t*\tCOMMAND_0\tVAR_0\tNOPE", target: variables.ErrUndeclared},
		{name: "backspace unknown variable", line: "variableUpdate_backspace\t*\tCOMMAND_0\tNOPE\t10", target: variables.ErrUndeclared},
		{name: "unknown command", line: "variableUpdate_append\t*\tCOMMAND_NOT_USED\tVAR_0\tx", target: ErrUnknownCommand},
		{name: "unknown environment", line: "variableUpdate_append\tENV_9\tCOMMAND_0\tVAR_0\tx", target: ErrUnknownEnvironment},
		{name: "no environments", line: "variableUpdate_append\t\tCOMMAND_0\tVAR_0\tx"},
		{name: "redefinition", line: "defineVariable\tVAR_0", target: variables.ErrAlreadyDeclared},
		{name: "forbidden symbols", line: "defineVariable\tabc#$%"},
		{name: "define with extra field", line: "defineVariable\tVAR_2\textra"},
		{name: "backspace not a number", line: "variableUpdate_backspace\t*\tCOMMAND_0\tVAR_0\tabc"},
		{name: "backspace negative", line: "variableUpdate_backspace\t*\tCOMMAND_0\tVAR_0\t-123"},
		{name: "unknown keyword", line: "variableUpdate_uppercase\t*\tCOMMAND_0\tVAR_0\tx"},
		{name: "too many fields", line: "variableUpdate_append\t*\tCOMMAND_0\tVAR_0\tx\ty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := base.Clone()
			err := c.ConsumeVariables(strings.NewReader("defineVariable\tVAR_NEW\n" + tc.line))
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
			assert.Contains(t, err.Error(), "line 2")
			assert.True(t, c.VariablesEqual(base), "failed consume must leave the variables unchanged")
		})
	}
}
