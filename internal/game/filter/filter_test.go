package filter

import (
	"reflect"
	"testing"
)

func TestParseEmptyFilter(t *testing.T) {
	t.Parallel()

	mapping, err := SessionMapping()
	if err != nil {
		t.Fatalf("SessionMapping: %v", err)
	}

	cond, err := Parse("", mapping)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cond.Clause != "" || len(cond.Params) != 0 {
		t.Fatalf("expected empty condition, got %+v", cond)
	}
}

func TestParseSessionFilter(t *testing.T) {
	t.Parallel()

	mapping, err := SessionMapping()
	if err != nil {
		t.Fatalf("SessionMapping: %v", err)
	}

	tests := []struct {
		name       string
		filter     string
		wantClause string
		wantParams []any
	}{
		{
			name:       "bool equality",
			filter:     `is_active = true`,
			wantClause: "is_active = ?",
			wantParams: []any{int64(1)},
		},
		{
			name:       "bool false literal",
			filter:     `is_active = false`,
			wantClause: "is_active = ?",
			wantParams: []any{int64(0)},
		},
		{
			name:       "string equality",
			filter:     `session_type = "COOP"`,
			wantClause: "session_type = ?",
			wantParams: []any{"COOP"},
		},
		{
			name:       "conjunction",
			filter:     `is_active = true AND session_type = "SOLO"`,
			wantClause: "(is_active = ? AND session_type = ?)",
			wantParams: []any{int64(1), "SOLO"},
		},
		{
			name:       "disjunction",
			filter:     `session_type = "COOP" OR session_type = "SOLO"`,
			wantClause: "(session_type = ? OR session_type = ?)",
			wantParams: []any{"COOP", "SOLO"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cond, err := Parse(tc.filter, mapping)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.filter, err)
			}
			if cond.Clause != tc.wantClause {
				t.Errorf("clause = %q, want %q", cond.Clause, tc.wantClause)
			}
			if !reflect.DeepEqual(cond.Params, tc.wantParams) {
				t.Errorf("params = %v, want %v", cond.Params, tc.wantParams)
			}
		})
	}
}

func TestParseCharacterTimestampFilter(t *testing.T) {
	t.Parallel()

	mapping, err := CharacterMapping()
	if err != nil {
		t.Fatalf("CharacterMapping: %v", err)
	}

	cond, err := Parse(`created_at >= timestamp("2026-01-02T00:00:00Z")`, mapping)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cond.Clause != "created_at >= ?" {
		t.Errorf("clause = %q", cond.Clause)
	}
	if len(cond.Params) != 1 {
		t.Fatalf("expected 1 param, got %d", len(cond.Params))
	}
	ms, ok := cond.Params[0].(int64)
	if !ok || ms != 1767312000000 {
		t.Errorf("param = %v, want 1767312000000", cond.Params[0])
	}
}

func TestParseUnknownField(t *testing.T) {
	t.Parallel()

	mapping, err := QuestMapping()
	if err != nil {
		t.Fatalf("QuestMapping: %v", err)
	}

	if _, err := Parse(`reward = "gold"`, mapping); err == nil {
		t.Fatal("expected error for undeclared field")
	}
}

func TestParseMalformedFilter(t *testing.T) {
	t.Parallel()

	mapping, err := PuzzleMapping()
	if err != nil {
		t.Fatalf("PuzzleMapping: %v", err)
	}

	if _, err := Parse(`completed = `, mapping); err == nil {
		t.Fatal("expected error for malformed filter")
	}
}
