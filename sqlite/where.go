package sqlite

import "strings"

// Where builds a WHERE clause of conditions joined with AND.
type Where struct {
	conds []string
	vals  []interface{}
}

func NewWhere() *Where {
	return &Where{
		conds: make([]string, 0),
		vals:  make([]interface{}, 0),
	}
}

// Eq adds a condition that the column equals to v.
func (w *Where) Eq(col string, v interface{}) {
	w.add(col+" = ?", v)
}

// NotBefore adds a condition that the column is v or after that.
func (w *Where) NotBefore(col string, v interface{}) {
	w.add(col+" >= ?", v)
}

func (w *Where) add(cond string, v interface{}) {
	w.conds = append(w.conds, cond)
	w.vals = append(w.vals, v)
}

// Stmt returns the clause with a leading space.
// It is empty when there isn't any condition.
func (w *Where) Stmt() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Vals returns the values for the placeholders in Stmt.
func (w *Where) Vals() []interface{} {
	return w.vals
}
