package configio

import "strings"

// FieldFunc inspects one field. index counts the fields kept so far, hasMore
// tells whether the row continues after this field. Returning keep=false
// drops the field; a non-nil error aborts the whole row.
type FieldFunc func(value string, index int, hasMore bool) (keep bool, err error)

// Split cuts row on delim. A trailing delimiter does not produce an empty
// last field, and an empty row has no fields. Fields cannot contain delim.
func Split(row string, delim byte, fn FieldFunc) ([]string, error) {
	if row == "" {
		return nil, nil
	}
	parts := strings.Split(row, string(delim))
	trailing := parts[len(parts)-1] == ""
	if trailing {
		parts = parts[:len(parts)-1]
	}

	fields := make([]string, 0, len(parts))
	for i, part := range parts {
		hasMore := i < len(parts)-1 || trailing
		if fn == nil {
			fields = append(fields, part)
			continue
		}
		keep, err := fn(part, len(fields), hasMore)
		if err != nil {
			return nil, err
		}
		if keep {
			fields = append(fields, part)
		}
	}
	return fields, nil
}

// SplitAll is Split without a callback.
func SplitAll(row string, delim byte) []string {
	fields, _ := Split(row, delim, nil)
	return fields
}
