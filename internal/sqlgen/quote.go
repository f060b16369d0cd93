package sqlgen

import "strings"

// reservedWords is the set of keywords that always force quoting,
// regardless of case. Postgres reserved keywords, abridged to the ones
// that plausibly show up as table or column names.
var reservedWords = map[string]struct{}{
	"all": {}, "analyse": {}, "analyze": {}, "and": {}, "any": {},
	"array": {}, "as": {}, "asc": {}, "asymmetric": {}, "both": {},
	"case": {}, "cast": {}, "check": {}, "collate": {}, "column": {},
	"constraint": {}, "create": {}, "current_date": {}, "current_role": {},
	"current_time": {}, "current_timestamp": {}, "current_user": {},
	"default": {}, "deferrable": {}, "desc": {}, "distinct": {}, "do": {},
	"else": {}, "end": {}, "except": {}, "false": {}, "fetch": {}, "for": {},
	"foreign": {}, "from": {}, "grant": {}, "group": {}, "having": {},
	"in": {}, "initially": {}, "intersect": {}, "into": {}, "lateral": {},
	"leading": {}, "limit": {}, "localtime": {}, "localtimestamp": {},
	"not": {}, "null": {}, "offset": {}, "on": {}, "only": {}, "or": {},
	"order": {}, "placing": {}, "primary": {}, "references": {},
	"returning": {}, "select": {}, "session_user": {}, "some": {},
	"symmetric": {}, "table": {}, "then": {}, "to": {}, "trailing": {},
	"true": {}, "union": {}, "unique": {}, "user": {}, "using": {},
	"variadic": {}, "when": {}, "where": {}, "window": {}, "with": {},
}

// NeedsQuoting reports whether an identifier cannot be emitted bare:
// anything with an uppercase letter, a character outside [a-z0-9_], a
// leading digit, or a reserved word.
func NeedsQuoting(name string) bool {
	if name == "" {
		return true
	}
	if name[0] >= '0' && name[0] <= '9' {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' {
			continue
		}
		return true
	}
	_, reserved := reservedWords[strings.ToLower(name)]
	return reserved
}

// QuoteIdent quotes an identifier when required, doubling any embedded
// double quotes. Identifiers that are already safe pass through bare.
func QuoteIdent(name string) string {
	if !NeedsQuoting(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteAlways wraps an identifier in double quotes unconditionally.
// Generated UPDATE/DELETE statements quote every identifier so the
// emitted SQL is unambiguous regardless of the source casing.
func quoteAlways(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifyTable renders a "schema.table" target with both parts quoted
// when needed. A bare table name is qualified with the public schema.
func QualifyTable(table string) string {
	schema, name := SplitTable(table)
	return QuoteIdent(schema) + "." + QuoteIdent(name)
}

// SplitTable splits a "schema.table" string, defaulting the schema to
// public when the name is unqualified.
func SplitTable(table string) (schema, name string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "public", table
}
