package assertions

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

type Operator int

const (
	OpEquals Operator = iota
	OpNotEquals
	OpGreaterThan
	OpGreaterOrEqual
	OpLessThan
	OpLessOrEqual
	OpContains
	OpNotContains
	OpStartsWith
	OpEndsWith
	OpMatches
	OpExists
	OpNotExists
	OpLength
	OpIncludes
	OpNotIncludes
	OpIn
	OpNotIn
	OpType
)

var operatorNames = map[Operator]string{
	OpEquals:         "==",
	OpNotEquals:      "!=",
	OpGreaterThan:    ">",
	OpGreaterOrEqual: ">=",
	OpLessThan:       "<",
	OpLessOrEqual:    "<=",
	OpContains:       "contains",
	OpNotContains:    "!contains",
	OpStartsWith:     "startsWith",
	OpEndsWith:       "endsWith",
	OpMatches:        "matches",
	OpExists:         "exists",
	OpNotExists:      "!exists",
	OpLength:         "length",
	OpIncludes:       "includes",
	OpNotIncludes:    "!includes",
	OpIn:             "in",
	OpNotIn:          "!in",
	OpType:           "type",
}

var operatorsByName = func() map[string]Operator {
	m := make(map[string]Operator, len(operatorNames))
	for op, name := range operatorNames {
		m[name] = op
	}
	m["equals"] = OpEquals
	return m
}()

func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// unary operators take no expected value
func (op Operator) unary() bool {
	return op == OpExists || op == OpNotExists
}

// Assertion is one parsed expectation
type Assertion struct {
	Subject  string
	Operator Operator
	Expected any
}

func (a *Assertion) String() string {
	if a.Operator.unary() {
		return a.Subject + " " + a.Operator.String()
	}
	return fmt.Sprintf("%s %s %v", a.Subject, a.Operator, a.Expected)
}

// Parse reads an expectation of the form "subject operator [value]".
func Parse(expr string) (*Assertion, error) {
	fields := strings.Fields(expr)
	if len(fields) < 2 {
		return nil, fmt.Errorf("invalid assertion %q: expected 'subject operator [value]'", expr)
	}

	op, ok := operatorsByName[fields[1]]
	if !ok {
		return nil, fmt.Errorf("invalid assertion %q: unknown operator %q", expr, fields[1])
	}

	a := &Assertion{Subject: fields[0], Operator: op}
	if op.unary() {
		if len(fields) > 2 {
			return nil, fmt.Errorf("invalid assertion %q: %s takes no value", expr, op)
		}
		return a, nil
	}

	// The value is everything after the operator, spaces included.
	rest := strings.TrimSpace(expr)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
	if rest == "" {
		return nil, fmt.Errorf("invalid assertion %q: %s needs a value", expr, op)
	}
	a.Expected = parseValue(rest)
	return a, nil
}

// ParseAll parses every expression, stopping at the first invalid one.
func ParseAll(exprs []string) ([]*Assertion, error) {
	out := make([]*Assertion, 0, len(exprs))
	for _, expr := range exprs {
		a, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func parseValue(text string) any {
	if gjson.Valid(text) {
		return gjson.Parse(text).Value()
	}
	return text
}
