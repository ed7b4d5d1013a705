package variables

import (
	"fmt"
	"unicode/utf8"

	"github.com/specialistvlad/hatremote/internal/ids"
)

// OpKind enumerates the closed set of variable operations.
type OpKind int

const (
	OpAssignText OpKind = iota
	OpAppendText
	OpAssignValue
	OpAppendValue
	OpClearTail
)

func (k OpKind) String() string {
	switch k {
	case OpAssignText:
		return "AssignText"
	case OpAppendText:
		return "AppendText"
	case OpAssignValue:
		return "AssignValue"
	case OpAppendValue:
		return "AppendValue"
	case OpClearTail:
		return "ClearTailCharacters"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Operation mutates one target variable. Only the fields relevant to Kind
// are set, so two operations are equal iff they compare equal with ==.
type Operation struct {
	Kind   OpKind
	Target ids.VariableID
	Text   string         // AssignText, AppendText
	Source ids.VariableID // AssignValue, AppendValue
	Count  int            // ClearTail
}

func AssignText(target ids.VariableID, text string) Operation {
	return Operation{Kind: OpAssignText, Target: target, Text: text}
}

func AppendText(target ids.VariableID, text string) Operation {
	return Operation{Kind: OpAppendText, Target: target, Text: text}
}

func AssignValue(target, source ids.VariableID) Operation {
	return Operation{Kind: OpAssignValue, Target: target, Source: source}
}

func AppendValue(target, source ids.VariableID) Operation {
	return Operation{Kind: OpAppendValue, Target: target, Source: source}
}

func ClearTailCharacters(target ids.VariableID, count int) Operation {
	return Operation{Kind: OpClearTail, Target: target, Count: count}
}

func (op Operation) String() string {
	switch op.Kind {
	case OpAssignText, OpAppendText:
		return fmt.Sprintf("%s(%s, %q)", op.Kind, op.Target, op.Text)
	case OpAssignValue, OpAppendValue:
		return fmt.Sprintf("%s(%s <- %s)", op.Kind, op.Target, op.Source)
	default:
		return fmt.Sprintf("%s(%s, %d)", op.Kind, op.Target, op.Count)
	}
}

// apply computes the new value of the target. Sources are read at call time.
func (op Operation) apply(current string, lookup func(ids.VariableID) string) string {
	switch op.Kind {
	case OpAssignText:
		return op.Text
	case OpAppendText:
		return current + op.Text
	case OpAssignValue:
		return lookup(op.Source)
	case OpAppendValue:
		return current + lookup(op.Source)
	case OpClearTail:
		for i := 0; i < op.Count && current != ""; i++ {
			_, size := utf8.DecodeLastRuneInString(current)
			current = current[:len(current)-size]
		}
		return current
	}
	return current
}
