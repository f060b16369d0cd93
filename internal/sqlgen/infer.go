package sqlgen

import (
	"regexp"
	"strings"
)

// fromTarget matches the first FROM target in free-form SQL. This is a
// deliberately conservative pattern, not a parser: optionally quoted
// identifier parts, an optional schema dot, terminated by whitespace,
// a semicolon or end of input.
var fromTarget = regexp.MustCompile(`(?is)\bfrom\s+((?:"[a-zA-Z0-9_]+"|[a-zA-Z0-9_]+)(?:\.(?:"[a-zA-Z0-9_]+"|[a-zA-Z0-9_]+))?)`)

// onKeyword detects a JOIN ... ON condition anywhere in the statement.
var onKeyword = regexp.MustCompile(`(?i)\bon\b`)

// InferTable extracts a "schema.table" target from the first FROM clause
// of a query. A single-part target defaults to the public schema. ok is
// false when nothing matched; that is never an error, just no context.
func InferTable(sql string) (schema, table string, ok bool) {
	m := fromTarget.FindStringSubmatch(sql)
	if m == nil {
		return "", "", false
	}

	parts := strings.SplitN(m[1], ".", 2)
	for i, p := range parts {
		parts[i] = strings.Trim(p, `"`)
	}
	if len(parts) == 1 {
		return "public", parts[0], true
	}
	return parts[0], parts[1], true
}

// CanEdit reports whether a result grid produced by sql may be edited
// inline. Only plain SELECTs qualify; any ON keyword is taken as a join,
// whose rows have no single-table identity.
func CanEdit(sql string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(sql))
	if !strings.HasPrefix(trimmed, "select") {
		return false
	}
	return !onKeyword.MatchString(trimmed)
}
