package store

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Operator is a comparison allowed in a filter criterion.
type Operator string

const (
	OpEqual        Operator = "="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
)

// Valid reports whether op belongs to the enumerated operator set.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpGreaterEqual, OpLessEqual, OpGreater, OpLess:
		return true
	}
	return false
}

// FilterCriterion is one conjunct of a WHERE clause: Column Operator Value.
type FilterCriterion struct {
	Column   string
	Value    any
	Operator Operator
}

// Column is one entry of an ordered table definition.
type Column struct {
	Name string
	Type string
}

// Record is a column -> value mapping to insert.
type Record = map[string]any

// Row is a column -> value mapping read back from the store.
type Row map[string]any

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

func checkIdentifier(name string) error {
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// BuildCreate renders CREATE TABLE with the columns in the given order.
func BuildCreate(table string, columns []Column) (string, error) {
	if err := checkIdentifier(table); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("%w: table %s has no columns", ErrInvalidIdentifier, table)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		if err := checkIdentifier(c.Name); err != nil {
			return "", err
		}
		if strings.ContainsAny(c.Type, ";") || strings.TrimSpace(c.Type) == "" {
			return "", fmt.Errorf("%w: column %s type %q", ErrInvalidIdentifier, c.Name, c.Type)
		}
		defs[i] = c.Name + " " + c.Type
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", ")), nil
}

// BuildInsert renders one multi-row INSERT for rows rows of the given columns.
// Placeholders are numbered continuously across rows.
func BuildInsert(d Dialect, table string, columns []string, rows int) (string, error) {
	if err := checkIdentifier(table); err != nil {
		return "", err
	}
	for _, c := range columns {
		if err := checkIdentifier(c); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String(), nil
}

// BuildSelect renders SELECT * FROM table with an optional conjunctive WHERE
// clause. Values are returned as bind arguments and never appear in the text.
func BuildSelect(d Dialect, table string, criteria []FilterCriterion) (string, []any, error) {
	if err := checkIdentifier(table); err != nil {
		return "", nil, err
	}
	stmt := "SELECT * FROM " + table
	if len(criteria) == 0 {
		return stmt, nil, nil
	}

	conds := make([]string, len(criteria))
	args := make([]any, len(criteria))
	for i, c := range criteria {
		if err := checkIdentifier(c.Column); err != nil {
			return "", nil, err
		}
		if !c.Operator.Valid() {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidOperator, c.Operator)
		}
		conds[i] = fmt.Sprintf("%s %s %s", c.Column, c.Operator, d.Placeholder(i+1))
		args[i] = c.Value
	}
	return stmt + " WHERE " + strings.Join(conds, " AND "), args, nil
}

// recordColumns returns the sorted key set of the first record and checks
// every other record carries exactly the same keys.
func recordColumns(records []Record) ([]string, error) {
	columns := make([]string, 0, len(records[0]))
	for k := range records[0] {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	for i, r := range records[1:] {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: record %d has %d columns, want %d", ErrNonUniformRecords, i+1, len(r), len(columns))
		}
		for _, c := range columns {
			if _, ok := r[c]; !ok {
				return nil, fmt.Errorf("%w: record %d lacks %q", ErrNonUniformRecords, i+1, c)
			}
		}
	}
	return columns, nil
}
