package resolve

import (
	"strings"
	"testing"

	"github.com/specialistvlad/hatremote/internal/commands"
	"github.com/specialistvlad/hatremote/internal/ids"
	"github.com/specialistvlad/hatremote/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every combination of enabled environments. Columns are ENV3, ENV2, ENV1,
// ENV0, so environment indices run backwards.
const fourEnvCommands = commands.HeaderPrefix + "ENV3\tENV2\tENV1\tENV0\n" +
	"hk0\tcategory\thk0_note\thk0_desc\t\t\n" +
	"hk1\tcategory\thk1_note\thk1_desc\t\t\t\thk1_keys_0\n" +
	"hk2\tcategory\thk2_note\thk2_desc\t\t\thk2_keys_1\t\n" +
	"hk3\tcategory\thk3_note\thk3_desc\t\t\thk3_keys_1\thk3_keys_0\n" +
	"hk4\tcategory\thk4_note\thk4_desc\t\thk4_keys_2\t\t\n" +
	"hk5\tcategory\thk5_note\thk5_desc\t\thk5_keys_2\t\thk5_keys_0\n" +
	"hk6\tcategory\thk6_note\thk6_desc\t\thk6_keys_2\thk6_keys_1\t\n" +
	"hk7\tcategory\thk7_note\thk7_desc\t\thk7_keys_2\thk7_keys_1\thk7_keys_0\n" +
	"hk8\tcategory\thk8_note\thk8_desc\thk8_keys_3\t\n" +
	"hkF\tcategory\thkF_note\thkF_desc\thkF_keys_3\thkF_keys_2\thkF_keys_1\thkF_keys_0\n"

const (
	env0 = 3
	env1 = 2
	env2 = 1
	env3 = 0
)

var envNames = []string{"ENV3", "ENV2", "ENV1", "ENV0"}

func newLayer(t *testing.T, commandsText, layoutText string) *Layer {
	t.Helper()
	c, err := commands.ParseCommandsCSV(strings.NewReader(commandsText), commands.PlainBuilder{})
	require.NoError(t, err)
	info, err := layout.Parse(strings.NewReader(layoutText))
	require.NoError(t, err)
	l, err := NewLayer(info, c)
	require.NoError(t, err)
	return l
}

func envSelectionPage(selected bool, selectedEnv int) *Page {
	button := func(env int) Element {
		if selected && env == selectedEnv {
			return Button(envNames[env])
		}
		return Button(envNames[env]).WithSwitchToEnv(env)
	}
	p := NewPage(EnvironmentPageCaption)
	p.PushRow([]Element{button(env3), button(env2)})
	p.PushRow([]Element{button(env1), button(env0)})
	return p
}

func oneRowPage(caption string, row ...Element) *Page {
	p := NewPage(caption)
	p.PushRow(row)
	return p
}

func active(note string, id ids.CommandID) Element { return Button(note).WithCommand(id) }

func assertRepresentation(t *testing.T, expected, actual Representation) {
	t.Helper()
	if !assert.True(t, expected.Equal(actual)) {
		for _, p := range actual.Pages {
			t.Logf("page %q: %v", p.Caption(), p.Rows())
		}
	}
}

func TestGenerate_CommandButtonsPerEnvironment(t *testing.T) {
	l := newLayer(t, fourEnvCommands, "page:This test page\nhk1;hk2;hk4\n")

	testCases := []struct {
		name     string
		env      int
		expected []Element
	}{
		{name: "ENV0", env: env0, expected: []Element{active("hk1_note", "hk1"), Button("hk2_note"), Button("hk4_note")}},
		{name: "ENV1", env: env1, expected: []Element{Button("hk1_note"), active("hk2_note", "hk2"), Button("hk4_note")}},
		{name: "ENV2", env: env2, expected: []Element{Button("hk1_note"), Button("hk2_note"), active("hk4_note", "hk4")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expected := Representation{Pages: []*Page{
				envSelectionPage(true, tc.env),
				oneRowPage("This test page", tc.expected...),
			}}
			assertRepresentation(t, expected, l.Generate(tc.env, true))
		})
	}

	t.Run("no environment selected", func(t *testing.T) {
		unselected := l.Generate(env0, false)
		assertRepresentation(t, Representation{Pages: []*Page{envSelectionPage(false, env0)}}, unselected)
		assert.True(t, unselected.Equal(l.Generate(env1, false)))
		assert.True(t, unselected.Equal(l.Generate(env2, false)))
	})
}

func TestGenerate_SelectorsDisabledWithoutActiveButtons(t *testing.T) {
	l := newLayer(t, fourEnvCommands, "page:test page caption\nhkF;selector\n"+
		"optionsSelectorPage:selector;selector page caption\nsubselector;hk3\n"+
		"optionsSelectorPage:subselector;subselector page caption\nhk5\n")

	mainPage := func(selectorOption, subselectorOption bool) *Page {
		selectorButton := Button("selector page caption")
		if selectorOption || subselectorOption {
			sub := Button("subselector page caption")
			if subselectorOption {
				sub = sub.WithOptionsPage(oneRowPage("subselector page caption", active("hk5_note", "hk5")))
			}
			cmd := Button("hk3_note")
			if selectorOption {
				cmd = active("hk3_note", "hk3")
			}
			selectorButton = selectorButton.WithOptionsPage(oneRowPage("selector page caption", sub, cmd))
		}
		return oneRowPage("test page caption", active("hkF_note", "hkF"), selectorButton)
	}

	testCases := []struct {
		name        string
		env         int
		selector    bool
		subselector bool
	}{
		{name: "ENV0", env: env0, selector: true, subselector: true},
		{name: "ENV1", env: env1, selector: true},
		{name: "ENV2", env: env2, subselector: true},
		{name: "ENV3", env: env3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expected := Representation{Pages: []*Page{
				envSelectionPage(true, tc.env),
				mainPage(tc.selector, tc.subselector),
			}}
			assertRepresentation(t, expected, l.Generate(tc.env, true))
		})
	}
}

func TestGenerate_FirstMatchingOptionWins(t *testing.T) {
	l := newLayer(t, fourEnvCommands, "page:main page\nhk1,selector,hk7;hkF\n"+
		"optionsSelectorPage:selector;selector page\nhk3\n")

	selectorButton := Button("selector page").WithOptionsPage(oneRowPage("selector page", active("hk3_note", "hk3")))
	testCases := []struct {
		name  string
		env   int
		first Element
	}{
		{name: "ENV0 takes the first command", env: env0, first: active("hk1_note", "hk1")},
		{name: "ENV1 takes the selector", env: env1, first: selectorButton},
		{name: "ENV2 takes the last command", env: env2, first: active("hk7_note", "hk7")},
		{name: "ENV3 shows the first note inactive", env: env3, first: Button("hk1_note")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expected := Representation{Pages: []*Page{
				envSelectionPage(true, tc.env),
				oneRowPage("main page", tc.first, active("hkF_note", "hkF")),
			}}
			assertRepresentation(t, expected, l.Generate(tc.env, true))
		})
	}
}

func TestGenerate_PagesWithoutActiveButtonsAreDropped(t *testing.T) {
	l := newLayer(t, fourEnvCommands, "page:page for ENV0, ENV1\nhk3\npage:page for ENV0, ENV2\nhk5\n")

	p01 := oneRowPage("page for ENV0, ENV1", active("hk3_note", "hk3"))
	p02 := oneRowPage("page for ENV0, ENV2", active("hk5_note", "hk5"))

	assertRepresentation(t, Representation{Pages: []*Page{envSelectionPage(true, env0), p01, p02}}, l.Generate(env0, true))
	assertRepresentation(t, Representation{Pages: []*Page{envSelectionPage(true, env1), p01}}, l.Generate(env1, true))
	assertRepresentation(t, Representation{Pages: []*Page{envSelectionPage(true, env2), p02}}, l.Generate(env2, true))
}

func TestGenerate_InactiveSelectorPrunesPage(t *testing.T) {
	l := newLayer(t, fourEnvCommands, "page:only a selector\nsel\noptionsSelectorPage:sel;nested\nhk1\n")

	assert.Len(t, l.Generate(env1, true).Pages, 1, "only the environment page is left")
	rep := l.Generate(env0, true)
	require.Len(t, rep.Pages, 2)
	assert.Equal(t, "only a selector", rep.Pages[1].Caption())
}

func TestGenerate_SingleEnvironmentHasNoSelectionPage(t *testing.T) {
	l := newLayer(t, commands.HeaderPrefix+"SINGLE_ENV\nhk0\tcategory\thk0_note\thk0_desc\thk0_keys\n", "page:test page\nhk0\n")

	expected := Representation{Pages: []*Page{oneRowPage("test page", active("hk0_note", "hk0"))}}
	assertRepresentation(t, expected, l.Generate(0, true))
	assert.Empty(t, l.Generate(0, false).Pages)
}

func TestGenerate_VariablesAndPlaceholders(t *testing.T) {
	c, err := commands.ParseCommandsCSV(strings.NewReader(commands.HeaderPrefix+"A\nrun\t\trun_note\t\tkeys\n"), commands.PlainBuilder{})
	require.NoError(t, err)
	require.NoError(t, c.ConsumeVariables(strings.NewReader("defineVariable\tcounter\ninitValueForVar\t*\tcounter\t42\n")))
	info, err := layout.Parse(strings.NewReader("page:p\nrun;text:counter;text:missing;;ghost;hk_unknown,text:counter\n"))
	require.NoError(t, err)
	l, err := NewLayer(info, c)
	require.NoError(t, err)

	rep := l.Generate(0, true)

	require.Len(t, rep.Pages, 1)
	row := rep.Pages[0].Rows()[0]
	require.Len(t, row, 6)
	assert.True(t, row[0].IsActive())
	assert.Equal(t, "42", row[1].Note())
	assert.Equal(t, ids.VariableID("counter"), row[1].Variable())
	assert.False(t, row[1].IsButton())
	assert.Equal(t, UnknownVariableNote, row[2].Note())
	assert.False(t, row[2].Variable().NonEmpty())
	assert.True(t, row[3].IsSpace())
	assert.Equal(t, Button(UnknownIDNote), row[4])
	assert.Equal(t, "42", row[5].Note(), "a variable after unknown ids still wins")
}

func TestGenerate_UnnamedVariableLabel(t *testing.T) {
	c, err := commands.ParseCommandsCSV(strings.NewReader(commands.HeaderPrefix+"A\nrun\t\trun_note\t\tkeys\n"), commands.PlainBuilder{})
	require.NoError(t, err)
	info, err := layout.Parse(strings.NewReader("page:p\ntext:, run;run\n"))
	require.NoError(t, err)
	l, err := NewLayer(info, c)
	require.NoError(t, err)

	rep := l.Generate(0, true)

	require.Len(t, rep.Pages, 1)
	row := rep.Pages[0].Rows()[0]
	require.Len(t, row, 2)
	assert.False(t, row[0].IsButton())
	assert.Equal(t, UnknownVariableNote, row[0].Note())
	assert.False(t, row[0].Variable().NonEmpty())
	assert.True(t, row[1].IsActive())
}

func TestGenerate_SelectorCycleResolvesAsNotFound(t *testing.T) {
	l := newLayer(t, fourEnvCommands, "page:p\nhkF;a\n"+
		"optionsSelectorPage:a;A\nb;hk1\n"+
		"optionsSelectorPage:b;B\na\n")

	rep := l.Generate(env2, true)
	require.Len(t, rep.Pages, 2)
	assert.Equal(t, Button("A"), rep.Pages[1].Rows()[0][1])
}

func TestNewLayer_IDCollision(t *testing.T) {
	c, err := commands.ParseCommandsCSV(strings.NewReader(fourEnvCommands), commands.PlainBuilder{})
	require.NoError(t, err)
	info, err := layout.Parse(strings.NewReader("page:p\nhk1\noptionsSelectorPage:hk1;clash\nhk2\n"))
	require.NoError(t, err)

	_, err = NewLayer(info, c)
	assert.ErrorIs(t, err, ErrIDCollision)
}

func TestElement_Equality(t *testing.T) {
	sub := oneRowPage("s", active("n", "x"))

	assert.True(t, Label("a").Equal(Label("a")))
	assert.True(t, Label("a").Equal(Label("a").WithVariable("v")))
	assert.False(t, Label("a").Equal(Button("a")))
	assert.False(t, Label("a").Equal(Label("b")))
	assert.True(t, Button("e").WithSwitchToEnv(1).Equal(Button("e").WithSwitchToEnv(1)))
	assert.False(t, Button("e").WithSwitchToEnv(1).Equal(Button("e").WithSwitchToEnv(2)))
	assert.False(t, Button("e").WithSwitchToEnv(1).Equal(Button("e")))
	assert.True(t, active("n", "x").Equal(active("n", "x")))
	assert.False(t, active("n", "x").Equal(active("n", "y")))
	assert.True(t, Button("s").WithOptionsPage(sub).Equal(Button("s").WithOptionsPage(oneRowPage("s", active("n", "x")))))
	assert.False(t, Button("s").WithOptionsPage(sub).Equal(Button("s")))
}

func TestElement_SwitchButtonContract(t *testing.T) {
	assert.Panics(t, func() { active("n", "x").WithSwitchToEnv(0) })
	assert.Panics(t, func() { Button("s").WithOptionsPage(NewPage("p")).WithSwitchToEnv(0) })
	assert.Panics(t, func() { Button("e").WithSwitchToEnv(0).WithCommand("x") })
	assert.Panics(t, func() { Button("e").WithSwitchToEnv(0).WithOptionsPage(NewPage("p")) })
	assert.NotPanics(t, func() { Button("e").WithSwitchToEnv(0) })
}
