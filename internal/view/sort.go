// internal/view/sort.go
package view

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mwiater/benchdash/internal/results"
)

// Column is a sortable results-table column.
type Column string

const (
	ColModel    Column = "model"
	ColCategory Column = "category"
	ColName     Column = "name"
	ColPassed   Column = "passed"
	ColTTFT     Column = "ttft"
	ColE2E      Column = "e2e"
)

// Columns lists the sortable columns in table order.
func Columns() []Column {
	return []Column{ColModel, ColCategory, ColName, ColPassed, ColTTFT, ColE2E}
}

// ParseColumn maps a column name to a Column.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Arrow is the header marker for d.
func (d Direction) Arrow() string {
	if d == Desc {
		return "▼"
	}
	return "▲"
}

// SortState is the current table sort. The zero value means unsorted.
type SortState struct {
	Column    Column
	Direction Direction
}

// Sorted reports whether a column has been picked.
func (s SortState) Sorted() bool { return s.Column != "" }

// Click returns the state after the operator picks c: the same column toggles
// the direction, a new column starts ascending.
func (s SortState) Click(c Column) SortState {
	if s.Column == c {
		if s.Direction == Asc {
			return SortState{Column: c, Direction: Desc}
		}
		return SortState{Column: c, Direction: Asc}
	}
	return SortState{Column: c, Direction: Asc}
}

// Indexed pairs a result with its store index, which stays its identity
// under any sort.
type Indexed struct {
	Index  int
	Result results.TestResult
}

// Index wraps results in store order.
func Index(rs []results.TestResult) []Indexed {
	out := make([]Indexed, len(rs))
	for i, r := range rs {
		out[i] = Indexed{Index: i, Result: r}
	}
	return out
}

// Projector sorts results for display. A Projector is not safe for
// concurrent use.
type Projector struct {
	locale language.Tag
	coll   *collate.Collator
}

// NewProjector returns a projector collating strings for locale (a BCP 47 tag).
func NewProjector(locale string) (*Projector, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Projector{locale: tag, coll: collate.New(tag)}, nil
}

// Locale returns the collation locale.
func (p *Projector) Locale() language.Tag { return p.locale }

// Project applies st to rs. An unsorted state keeps store order.
func (p *Projector) Project(rs []results.TestResult, st SortState) ([]Indexed, error) {
	if !st.Sorted() {
		return Index(rs), nil
	}
	return p.SortBy(rs, st.Column, st.Direction)
}

// SortBy returns rs stably sorted by column. Absent latencies sort as 0 and,
// among equal keys, ahead of measured values in ascending order.
func (p *Projector) SortBy(rs []results.TestResult, column Column, dir Direction) ([]Indexed, error) {
	compare, err := p.comparator(column)
	if err != nil {
		return nil, err
	}
	out := Index(rs)
	slices.SortStableFunc(out, func(a, b Indexed) int {
		c := compare(a.Result, b.Result)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out, nil
}

func (p *Projector) comparator(column Column) (func(a, b results.TestResult) int, error) {
	switch column {
	case ColModel:
		return p.strings(func(r results.TestResult) string { return r.Model }), nil
	case ColCategory:
		return p.strings(func(r results.TestResult) string { return r.CategoryName }), nil
	case ColName:
		return p.strings(results.TestResult.DisplayName), nil
	case ColPassed:
		return func(a, b results.TestResult) int { return cmp.Compare(boolKey(a.Passed), boolKey(b.Passed)) }, nil
	case ColTTFT:
		return latency(func(r results.TestResult) *float64 { return r.TTFTMs }), nil
	case ColE2E:
		return latency(func(r results.TestResult) *float64 { return r.E2EMs }), nil
	}
	return nil, fmt.Errorf("unknown sort column %q", column)
}

func (p *Projector) strings(key func(results.TestResult) string) func(a, b results.TestResult) int {
	return func(a, b results.TestResult) int { return p.coll.CompareString(key(a), key(b)) }
}

func latency(key func(results.TestResult) *float64) func(a, b results.TestResult) int {
	return func(a, b results.TestResult) int {
		va, vb := key(a), key(b)
		if c := cmp.Compare(floatKey(va), floatKey(vb)); c != 0 {
			return c
		}
		switch {
		case va == nil && vb != nil:
			return -1
		case va != nil && vb == nil:
			return 1
		}
		return 0
	}
}

func boolKey(b bool) int {
	if b {
		return 1
	}
	return 0
}

func floatKey(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
