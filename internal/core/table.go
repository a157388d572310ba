package core

import (
	"slices"
	"sort"
)

// Table is an immutable, date-ordered set of purchases. Every operation
// that narrows a table returns a new one.
type Table struct {
	rows []Purchase
}

// NewTable copies rows and stable-sorts them by date, so purchases on
// the same day keep their input order.
func NewTable(rows []Purchase) Table {
	cp := make([]Purchase, len(rows))
	copy(cp, rows)
	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].Date.Before(cp[j].Date.Time)
	})
	return Table{rows: cp}
}

func (t Table) Len() int {
	return len(t.rows)
}

func (t Table) IsEmpty() bool {
	return len(t.rows) == 0
}

// Rows returns a copy of the purchases in date order.
func (t Table) Rows() []Purchase {
	return slices.Clone(t.rows)
}

// Filter keeps the purchases for which keep returns true.
func (t Table) Filter(keep func(Purchase) bool) Table {
	out := make([]Purchase, 0, len(t.rows))
	for _, p := range t.rows {
		if keep(p) {
			out = append(out, p)
		}
	}
	return Table{rows: out}
}

// MinDate is the earliest purchase date, zero for an empty table.
func (t Table) MinDate() Date {
	if len(t.rows) == 0 {
		return Date{}
	}
	return t.rows[0].Date
}

// MaxDate is the latest purchase date, zero for an empty table.
func (t Table) MaxDate() Date {
	if len(t.rows) == 0 {
		return Date{}
	}
	return t.rows[len(t.rows)-1].Date
}

func (t Table) Platforms() []string {
	return t.distinct(func(p Purchase) string { return p.Platform })
}

func (t Table) Categories() []string {
	return t.distinct(func(p Purchase) string { return p.Category })
}

func (t Table) Products() []string {
	return t.distinct(func(p Purchase) string { return p.Product })
}

func (t Table) distinct(key func(Purchase) string) []string {
	seen := make(map[string]struct{})
	for _, p := range t.rows {
		seen[key(p)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
