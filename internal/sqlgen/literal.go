package sqlgen

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Literal renders a row value as a SQL literal. Nil becomes NULL,
// numbers and booleans are emitted unquoted, maps and slices are
// JSON-serialized before quoting, and everything else is a
// single-quote-escaped string.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case json.Number:
		return val.String()
	case string:
		return quoteString(val)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return quoteString(fmt.Sprintf("%v", val))
		}
		return quoteString(string(b))
	case []byte:
		return quoteString(string(val))
	default:
		return quoteString(fmt.Sprintf("%v", val))
	}
}

func quoteString(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'')
		}
		out = append(out, s[i])
	}
	out = append(out, '\'')
	return string(out)
}
