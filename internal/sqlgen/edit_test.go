package sqlgen

import (
	"errors"
	"testing"

	"github.com/pgdeck/pgdeck/internal/models"
)

func col(name string, pk, unique bool) models.ColumnDefinition {
	return models.ColumnDefinition{Name: name, DataType: "text", IsPK: pk, IsUnique: unique}
}

func TestIdentifyingColumns(t *testing.T) {
	defs := []models.ColumnDefinition{
		col("id", true, true),
		col("email", false, true),
		col("name", false, false),
	}

	cols, all := IdentifyingColumns(defs)
	if all {
		t.Fatal("expected primary key resolution, got all-columns fallback")
	}
	if len(cols) != 1 || cols[0].Name != "id" {
		t.Fatalf("expected [id], got %v", cols)
	}

	// No PK: unique columns take over.
	cols, all = IdentifyingColumns(defs[1:])
	if all || len(cols) != 1 || cols[0].Name != "email" {
		t.Fatalf("expected [email], got %v (all=%v)", cols, all)
	}

	// Neither: every column, flagged as the last resort.
	cols, all = IdentifyingColumns(defs[2:])
	if !all || len(cols) != 1 {
		t.Fatalf("expected all-columns fallback, got %v (all=%v)", cols, all)
	}
}

func TestBuildDelete_PrimaryKeyOnly(t *testing.T) {
	defs := []models.ColumnDefinition{
		col("id", true, false),
		col("email", false, false),
	}
	row := []any{1, "a@b.com"}
	columns := []string{"id", "email"}

	got, err := BuildDelete("public.users", row, defs, columns)
	if err != nil {
		t.Fatalf("BuildDelete: %v", err)
	}
	want := `DELETE FROM "public"."users" WHERE "id" = 1;`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildDelete_UniqueFallback(t *testing.T) {
	defs := []models.ColumnDefinition{
		col("email", false, true),
		col("name", false, false),
	}
	got, err := BuildDelete("public.users", []any{"a@b.com", "Ann"}, defs, []string{"email", "name"})
	if err != nil {
		t.Fatalf("BuildDelete: %v", err)
	}
	want := `DELETE FROM "public"."users" WHERE "email" = 'a@b.com';`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildDelete_RefusedWithoutKeys(t *testing.T) {
	defs := []models.ColumnDefinition{
		col("a", false, false),
		col("b", false, false),
	}
	rows := [][]any{
		{1, "x"},
		{nil, nil},
		{},
	}
	for _, row := range rows {
		if _, err := BuildDelete("public.t", row, defs, []string{"a", "b"}); !errors.Is(err, ErrNoIdentifyingColumns) {
			t.Errorf("row %v: expected ErrNoIdentifyingColumns, got %v", row, err)
		}
	}
}

func TestBuildDelete_NullIdentifier(t *testing.T) {
	defs := []models.ColumnDefinition{
		col("id", true, false),
		col("ref", true, false),
	}
	got, err := BuildDelete("public.links", []any{7, nil}, defs, []string{"id", "ref"})
	if err != nil {
		t.Fatalf("BuildDelete: %v", err)
	}
	want := `DELETE FROM "public"."links" WHERE "id" = 7 AND "ref" IS NULL;`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildUpdate_PrimaryKey(t *testing.T) {
	defs := []models.ColumnDefinition{
		col("id", true, false),
		col("email", false, false),
	}
	got, err := BuildUpdate("public.users", "email", "new@b.com", []any{42, "old@b.com"}, []string{"id", "email"}, defs)
	if err != nil {
		t.Fatalf("BuildUpdate: %v", err)
	}
	want := `UPDATE "public"."users" SET "email" = 'new@b.com' WHERE "id" = 42;`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildUpdate_AllColumnsFallback(t *testing.T) {
	defs := []models.ColumnDefinition{
		col("a", false, false),
		col("b", false, false),
	}
	got, err := BuildUpdate("public.t", "a", nil, []any{"x", true}, []string{"a", "b"}, defs)
	if err != nil {
		t.Fatalf("BuildUpdate: %v", err)
	}
	want := `UPDATE "public"."t" SET "a" = NULL WHERE "a" = 'x' AND "b" = true;`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildUpdate_JSONValue(t *testing.T) {
	defs := []models.ColumnDefinition{col("id", true, false)}
	payload := map[string]any{"k": "v"}
	got, err := BuildUpdate("public.docs", "body", payload, []any{9}, []string{"id"}, defs)
	if err != nil {
		t.Fatalf("BuildUpdate: %v", err)
	}
	want := `UPDATE "public"."docs" SET "body" = '{"k":"v"}' WHERE "id" = 9;`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildUpdate_QuotedEverything(t *testing.T) {
	defs := []models.ColumnDefinition{col("ID", true, false)}
	got, err := BuildUpdate("Sales.Orders", "Status", "shipped", []any{1}, []string{"ID"}, defs)
	if err != nil {
		t.Fatalf("BuildUpdate: %v", err)
	}
	want := `UPDATE "Sales"."Orders" SET "Status" = 'shipped' WHERE "ID" = 1;`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{true, "true"},
		{false, "false"},
		{42, "42"},
		{int64(7), "7"},
		{3.5, "3.5"},
		{"plain", "'plain'"},
		{"O'Brien", "'O''Brien'"},
		{[]any{1, 2}, "'[1,2]'"},
	}
	for _, tt := range tests {
		if got := Literal(tt.in); got != tt.want {
			t.Errorf("Literal(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
