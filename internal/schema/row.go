package schema

import (
	"fmt"
	"strconv"
)

// Row is one record in the view. Fields is keyed by column key; values are
// whatever the caller loaded (strings, numbers, nil).
type Row struct {
	ID     string
	Fields map[string]any
}

// NewRow builds a row from an id and field map.
func NewRow(id string, fields map[string]any) Row {
	if fields == nil {
		fields = map[string]any{}
	}
	return Row{ID: id, Fields: fields}
}

// Stringify renders a cell value for comparison and display. Nil renders as
// the empty string so missing and empty cells behave identically.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// IsEmptyValue reports whether a cell value counts as empty: nil or a value
// that stringifies to "".
func IsEmptyValue(v any) bool {
	return v == nil || Stringify(v) == ""
}
