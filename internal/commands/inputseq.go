package commands

import (
	"fmt"
	"io"

	"github.com/specialistvlad/hatremote/internal/configio"
	"github.com/specialistvlad/hatremote/internal/ids"
)

// Row type keywords of the input sequences config.
const (
	KeywordTypingSequence = "simpleTypingJob"
	KeywordMouseInput     = "mouseInput"
	KeywordSleep          = "sleepForTimeout"
	KeywordSystemCall     = "systemCall"
	KeywordCommandSeq     = "commandSequence"
)

const fileTypeInputSequences = "input sequences config"

// ConsumeInputSequences adds the commands declared in an input sequences
// config: keyword, id, category, note, description, environments, payload.
// Blank and '#' lines are skipped. On error c is left unchanged.
func (c *Container) ConsumeInputSequences(r io.Reader, b ActionBuilder) error {
	lines, err := configio.ReadLines(r, configio.SkipBlankAndComments)
	if err != nil {
		return err
	}
	scratch := c.Clone()
	for _, line := range lines {
		if err := scratch.pushInputSequence(line.Text, b); err != nil {
			return configio.Wrap(fileTypeInputSequences, line.Number, err)
		}
	}
	*c = *scratch
	return nil
}

func (c *Container) pushInputSequence(row string, b ActionBuilder) error {
	fields := configio.SplitAll(row, '\t')
	if len(fields) < 5 {
		return fmt.Errorf("not enough fields: expected keyword, id, category, note, description, environments and payload")
	}
	if len(fields) > 7 {
		return fmt.Errorf("too many fields: expected at most 7, got %d", len(fields))
	}
	for i, v := range fields[1:5] {
		if _, err := validateMandatoryField(v, i, true); err != nil {
			return err
		}
	}
	for len(fields) < 7 {
		fields = append(fields, "")
	}
	keyword, spec, payload := fields[0], fields[5], fields[6]
	m := rowMeta(fields[1:5])

	enabled, err := c.envSpec(spec)
	if err != nil {
		return err
	}

	var build func(raw string, env int) (Action, error)
	switch keyword {
	case KeywordTypingSequence:
		build = func(raw string, env int) (Action, error) { return b.KeySequence(raw, m.id, env) }
	case KeywordMouseInput:
		build = func(raw string, env int) (Action, error) { return b.MouseAction(raw, m.id, env) }
	case KeywordSleep:
		build = func(raw string, env int) (Action, error) { return b.Sleep(raw, m.id, env) }
	case KeywordSystemCall:
		build = func(raw string, _ int) (Action, error) { return SystemCall(raw), nil }
	case KeywordCommandSeq:
		refs, err := c.sequenceRefs(payload)
		if err != nil {
			return err
		}
		build = func(raw string, env int) (Action, error) {
			envRefs := make([]ActionRef, len(refs))
			for i, idx := range refs {
				envRefs[i] = ActionRef{Command: idx, Env: env}
			}
			return Aggregate(raw, envRefs), nil
		}
	default:
		return fmt.Errorf("unknown row type %q", keyword)
	}

	cells := make([]string, len(c.envs))
	for env, on := range enabled {
		if on {
			cells[env] = payload
		}
	}
	return c.insert(m, cells, build)
}

// sequenceRefs resolves the comma separated ids of a commandSequence. Every
// id must already be in the table; empty items are ignored and repeats kept.
func (c *Container) sequenceRefs(payload string) ([]int, error) {
	var refs []int
	for _, item := range splitList(payload) {
		if item == "" {
			continue
		}
		idx, ok := c.Index(ids.CommandID(item))
		if !ok {
			return nil, fmt.Errorf("%w in command sequence: %s", ErrUnknownCommand, item)
		}
		refs = append(refs, idx)
	}
	return refs, nil
}
