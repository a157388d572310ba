// Package filter narrows a purchase table by platform, category and an
// inclusive date range.
package filter

import (
	"net/url"
	"strings"

	"compras/internal/core"
)

// All is the selector value meaning "no restriction".
const All = "all"

// Selection is one filter state. Zero values mean "no restriction".
type Selection struct {
	Platform string
	Category string
	Start    core.Date
	End      core.Date
}

// isAll reports whether a selector value imposes no restriction. Only the
// empty string and the exact All sentinel qualify; any other value,
// "Todas" or "ALL" included, is matched literally.
func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == All
}

// HasDateRange reports whether both bounds are set. A one-sided range
// imposes no date restriction.
func (s Selection) HasDateRange() bool {
	return !s.Start.IsZero() && !s.End.IsZero()
}

// OneSided reports a selection carrying only one date bound.
func (s Selection) OneSided() bool {
	return s.Start.IsZero() != s.End.IsZero()
}

// IsZero reports a selection that restricts nothing.
func (s Selection) IsZero() bool {
	return isAll(s.Platform) && isAll(s.Category) && !s.HasDateRange()
}

// Matches reports whether p passes every restriction in s.
func (s Selection) Matches(p core.Purchase) bool {
	if !isAll(s.Platform) && p.Platform != s.Platform {
		return false
	}
	if !isAll(s.Category) && p.Category != s.Category {
		return false
	}
	if s.HasDateRange() {
		if p.Date.Before(s.Start.Time) || p.Date.After(s.End.Time) {
			return false
		}
	}
	return true
}

// Apply returns a new table holding the rows of t that match sel. The
// input table is never modified; an empty result is valid.
func Apply(t core.Table, sel Selection) core.Table {
	if sel.IsZero() {
		return t
	}
	return t.Filter(sel.Matches)
}

// Options are the selector choices offered for a table.
type Options struct {
	Platforms  []string
	Categories []string
	MinDate    core.Date
	MaxDate    core.Date
}

// OptionsFor lists "all" followed by the sorted distinct platforms and
// categories, plus the default date bounds.
func OptionsFor(t core.Table) Options {
	return Options{
		Platforms:  append([]string{All}, t.Platforms()...),
		Categories: append([]string{All}, t.Categories()...),
		MinDate:    t.MinDate(),
		MaxDate:    t.MaxDate(),
	}
}

// ParseSelection decodes the platform, category, start and end query
// parameters. Unparseable dates are dropped and reported in the returned
// slice of parameter names.
func ParseSelection(q url.Values) (Selection, []string) {
	sel := Selection{
		Platform: strings.TrimSpace(q.Get("platform")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	var invalid []string
	if v := strings.TrimSpace(q.Get("start")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			sel.Start = d
		} else {
			invalid = append(invalid, "start")
		}
	}
	if v := strings.TrimSpace(q.Get("end")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			sel.End = d
		} else {
			invalid = append(invalid, "end")
		}
	}
	if isAll(sel.Platform) {
		sel.Platform = ""
	}
	if isAll(sel.Category) {
		sel.Category = ""
	}
	return sel, invalid
}

// Query encodes the selection back into URL parameters.
func (s Selection) Query() url.Values {
	q := url.Values{}
	if !isAll(s.Platform) {
		q.Set("platform", s.Platform)
	}
	if !isAll(s.Category) {
		q.Set("category", s.Category)
	}
	if !s.Start.IsZero() {
		q.Set("start", s.Start.String())
	}
	if !s.End.IsZero() {
		q.Set("end", s.End.String())
	}
	return q
}
