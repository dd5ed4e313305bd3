// Package query compiles raw user-supplied filter descriptors into a
// validated, safely ordered plan over the conference collection. The field
// and operator wire codes are a published contract; clients encode them
// literally.
package query

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidFilter is returned for unknown field/operator codes, a second
// distinct inequality field, or a non-coercible value. Compilation is
// all-or-nothing: one bad filter fails the whole plan.
var ErrInvalidFilter = errors.New("invalid filter")

// Field identifies a filterable conference attribute. The value is the
// storage column name.
type Field string

const (
	FieldCity         Field = "city"
	FieldTopics       Field = "topics"
	FieldMonth        Field = "month"
	FieldMaxAttendees Field = "max_attendees"
)

// Operator is a comparison. Everything except OpEQ is an inequality.
type Operator string

const (
	OpEQ   Operator = "="
	OpGT   Operator = ">"
	OpGTEQ Operator = ">="
	OpLT   Operator = "<"
	OpLTEQ Operator = "<="
	OpNE   Operator = "!="
)

// Inequality reports whether the operator is anything other than equality.
func (o Operator) Inequality() bool {
	return o != OpEQ
}

// Wire-code whitelists. Codes outside these maps fail compilation.
var (
	fieldCodes = map[string]Field{
		"CITY":          FieldCity,
		"TOPIC":         FieldTopics,
		"MONTH":         FieldMonth,
		"MAX_ATTENDEES": FieldMaxAttendees,
	}
	operatorCodes = map[string]Operator{
		"EQ":   OpEQ,
		"GT":   OpGT,
		"GTEQ": OpGTEQ,
		"LT":   OpLT,
		"LTEQ": OpLTEQ,
		"NE":   OpNE,
	}
	numericFields = map[Field]bool{
		FieldMonth:        true,
		FieldMaxAttendees: true,
	}
)

// Filter is one raw (field, operator, value) descriptor as submitted by a client.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Condition is a validated filter with a typed field, operator and coerced value.
type Condition struct {
	Field    Field
	Operator Operator
	// Value is a string, or an int for numeric fields.
	Value any
}

// Plan is a validated, deterministically ordered conference query.
type Plan struct {
	Conditions []Condition
	// InequalityField is the single attribute compared with a non-equality
	// operator, or "" when every filter is an equality.
	InequalityField Field
	// OrderBy lists result ordering columns: the inequality column first
	// when present, then the stable secondary key (name).
	OrderBy []string
}

// Compile validates the filters in order and produces a plan. The underlying
// store allows inequality comparisons on only one distinct attribute per
// query; the first inequality claims it and any later inequality on a
// different attribute fails.
func Compile(filters []Filter) (*Plan, error) {
	plan := &Plan{Conditions: make([]Condition, 0, len(filters))}

	for _, f := range filters {
		field, ok := fieldCodes[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, f.Field)
		}
		op, ok := operatorCodes[f.Operator]
		if !ok {
			return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Operator)
		}

		// Topics is an array attribute: equality means membership. Range
		// comparisons against it have no defined meaning.
		if field == FieldTopics && op != OpEQ && op != OpNE {
			return nil, fmt.Errorf("%w: operator %q not allowed on field TOPIC", ErrInvalidFilter, f.Operator)
		}

		var value any = f.Value
		if numericFields[field] {
			n, err := strconv.Atoi(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q requires an integer value, got %q", ErrInvalidFilter, f.Field, f.Value)
			}
			value = n
		}

		if op.Inequality() {
			if plan.InequalityField != "" && plan.InequalityField != field {
				return nil, fmt.Errorf("%w: inequality filter allowed on only one field (have %q, got %q)",
					ErrInvalidFilter, plan.InequalityField, field)
			}
			plan.InequalityField = field
		}

		plan.Conditions = append(plan.Conditions, Condition{Field: field, Operator: op, Value: value})
	}

	// Sort on the inequality attribute first so pagination stays
	// deterministic, then on name as the stable secondary key.
	if plan.InequalityField != "" {
		plan.OrderBy = []string{string(plan.InequalityField), "name"}
	} else {
		plan.OrderBy = []string{"name"}
	}
	return plan, nil
}
