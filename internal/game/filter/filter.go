// Package filter provides AIP-160 filter expression parsing and SQL translation
// for the engine's list endpoints.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "is_active = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Mapping declares the filterable fields of one entity and their SQL columns.
type Mapping struct {
	declarations *filtering.Declarations
	columns      map[string]string
}

// boolLiterals declares the identifiers the filter grammar uses for boolean
// constants. AIP filters have no bool literal tokens, so `true` and `false`
// reach the checker as identifiers and must be declared wherever a bool
// field is filterable.
func boolLiterals() []filtering.DeclarationOption {
	return []filtering.DeclarationOption{
		filtering.DeclareIdent("true", filtering.TypeBool),
		filtering.DeclareIdent("false", filtering.TypeBool),
	}
}

// SessionMapping returns the filterable fields for session listings.
func SessionMapping() (Mapping, error) {
	decls, err := filtering.NewDeclarations(append(boolLiterals(),
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("is_active", filtering.TypeBool),
		filtering.DeclareIdent("session_type", filtering.TypeString),
		filtering.DeclareIdent("host_character_id", filtering.TypeString),
	)...)
	if err != nil {
		return Mapping{}, err
	}
	return Mapping{
		declarations: decls,
		columns: map[string]string{
			"is_active":         "is_active",
			"session_type":      "session_type",
			"host_character_id": "host_character_id",
		},
	}, nil
}

// CharacterMapping returns the filterable fields for character listings.
func CharacterMapping() (Mapping, error) {
	decls, err := filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("name", filtering.TypeString),
		filtering.DeclareIdent("player_profile_id", filtering.TypeString),
		filtering.DeclareIdent("created_at", filtering.TypeTimestamp),
		filtering.DeclareIdent("updated_at", filtering.TypeTimestamp),
	)
	if err != nil {
		return Mapping{}, err
	}
	return Mapping{
		declarations: decls,
		columns: map[string]string{
			"name":              "name",
			"player_profile_id": "player_profile_id",
			"created_at":        "created_at",
			"updated_at":        "updated_at",
		},
	}, nil
}

// QuestMapping returns the filterable fields for quest listings.
func QuestMapping() (Mapping, error) {
	decls, err := filtering.NewDeclarations(append(boolLiterals(),
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("is_active", filtering.TypeBool),
		filtering.DeclareIdent("name", filtering.TypeString),
	)...)
	if err != nil {
		return Mapping{}, err
	}
	return Mapping{
		declarations: decls,
		columns: map[string]string{
			"is_active": "is_active",
			"name":      "name",
		},
	}, nil
}

// DialogueMapping returns the filterable fields for dialogue listings.
func DialogueMapping() (Mapping, error) {
	decls, err := filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("character_id", filtering.TypeString),
		filtering.DeclareIdent("quest_id", filtering.TypeString),
		filtering.DeclareIdent("puzzle_id", filtering.TypeString),
	)
	if err != nil {
		return Mapping{}, err
	}
	return Mapping{
		declarations: decls,
		columns: map[string]string{
			"character_id": "character_id",
			"quest_id":     "quest_id",
			"puzzle_id":    "puzzle_id",
		},
	}, nil
}

// PuzzleMapping returns the filterable fields for puzzle listings.
func PuzzleMapping() (Mapping, error) {
	decls, err := filtering.NewDeclarations(append(boolLiterals(),
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("completed", filtering.TypeBool),
		filtering.DeclareIdent("complexity", filtering.TypeInt),
	)...)
	if err != nil {
		return Mapping{}, err
	}
	return Mapping{
		declarations: decls,
		columns: map[string]string{
			"completed":  "completed",
			"complexity": "complexity",
		},
	}, nil
}

// Parse parses an AIP-160 filter expression and returns a SQL condition.
// Returns an empty condition for an empty filter string.
func Parse(filterStr string, mapping Mapping) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}
	if mapping.declarations == nil {
		return SQLCondition{}, fmt.Errorf("filter mapping is required")
	}

	parsed, err := filtering.ParseFilterString(filterStr, mapping.declarations)
	if err != nil {
		return SQLCondition{}, fmt.Errorf("parse filter: %w", err)
	}

	return mapping.translateExpr(parsed.CheckedExpr.Expr)
}

// translateExpr translates a CEL expression to a SQL condition.
func (m Mapping) translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return m.translateCall(kind.CallExpr)
	default:
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

// translateCall translates a CEL function call to a SQL condition.
func (m Mapping) translateCall(call *expr.Expr_Call) (SQLCondition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return m.translateLogical(call.Args, "AND")
	case "_||_", "OR":
		return m.translateLogical(call.Args, "OR")
	case "_==_", "=":
		return m.translateComparison(call.Args, "=")
	case "_!=_", "!=":
		return m.translateComparison(call.Args, "!=")
	case "_<_", "<":
		return m.translateComparison(call.Args, "<")
	case "_<=_", "<=":
		return m.translateComparison(call.Args, "<=")
	case "_>_", ">":
		return m.translateComparison(call.Args, ">")
	case "_>=_", ">=":
		return m.translateComparison(call.Args, ">=")
	default:
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func (m Mapping) translateLogical(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := m.translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}

	right, err := m.translateExpr(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func (m Mapping) translateComparison(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return SQLCondition{}, err
	}

	column, ok := m.columns[field]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_IdentExpr:
		// The grammar surfaces bool literals as identifiers.
		switch kind.IdentExpr.Name {
		case "true":
			return int64(1), nil
		case "false":
			return int64(0), nil
		}
		return nil, fmt.Errorf("unsupported identifier in value position: %s", kind.IdentExpr.Name)
	case *expr.Expr_CallExpr:
		// Handle timestamp("...") function calls
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		// Boolean columns are stored as 0/1 integers.
		if kind.BoolValue {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func extractTimestampValue(e *expr.Expr) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("nil timestamp argument")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		if strVal, ok := kind.ConstExpr.ConstantKind.(*expr.Constant_StringValue); ok {
			t, err := time.Parse(time.RFC3339, strVal.StringValue)
			if err != nil {
				t, err = time.Parse(time.RFC3339Nano, strVal.StringValue)
				if err != nil {
					return 0, fmt.Errorf("invalid timestamp format: %s", strVal.StringValue)
				}
			}
			// Timestamp columns are stored as millisecond UTC integers.
			return t.UTC().UnixMilli(), nil
		}
		return 0, fmt.Errorf("timestamp argument must be a string")
	default:
		return 0, fmt.Errorf("timestamp argument must be a constant string")
	}
}
