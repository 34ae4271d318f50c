package store

import (
	"fmt"
	"strings"

	"github.com/usersvc/apiserver/internal/schema"
	"github.com/usersvc/apiserver/internal/validate"
)

// Assignment is one column of a partial update.
type Assignment struct {
	Column string
	Value  any
}

// UpdatePlan lists the columns a partial update writes, in schema order.
type UpdatePlan struct {
	ID          int
	Assignments []Assignment
}

// BuildUpdate walks s in declaration order and assigns every field present in
// payload. Keys of payload that s does not declare are ignored, so column
// names in the plan always come from the schema.
func BuildUpdate(s *schema.Schema, id int, payload validate.Payload) (UpdatePlan, error) {
	plan := UpdatePlan{ID: id}
	for _, field := range s.Fields() {
		value, ok := payload[field.Name]
		if !ok {
			continue
		}
		plan.Assignments = append(plan.Assignments, Assignment{Column: field.Name, Value: value})
	}
	if len(plan.Assignments) == 0 {
		return UpdatePlan{}, ErrEmptyUpdate
	}
	return plan, nil
}

// Columns returns the assigned column names in order.
func (p UpdatePlan) Columns() []string {
	cols := make([]string, len(p.Assignments))
	for i, a := range p.Assignments {
		cols[i] = a.Column
	}
	return cols
}

// SQL renders the statement and its arguments. The id always binds to slot 1;
// each assignment takes the slot after the previous argument.
func (p UpdatePlan) SQL(d Dialect, table string, returning []string) (string, []any, error) {
	if len(p.Assignments) == 0 {
		return "", nil, ErrEmptyUpdate
	}

	args := make([]any, 1, len(p.Assignments)+1)
	args[0] = p.ID
	setClauses := make([]string, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		args = append(args, a.Value)
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", quoteIdent(a.Column), d.Placeholder(len(args))))
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = %s RETURNING %s",
		quoteIdent(table),
		strings.Join(setClauses, ", "),
		d.Placeholder(1),
		strings.Join(returning, ", "),
	)
	return query, args, nil
}
