// Package expected loads the seat counts a section should have, per row,
// from a hand-written JSON file or from the venue's seating workbook.
package expected

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"venue-seating-ops/internal/models"
)

var (
	ErrInvalidTable    = errors.New("invalid expected-count table")
	ErrSectionNotFound = errors.New("section not found in workbook")
)

// RowExpectation is what one row should hold. First and Last are the
// printed seat numbers at either end; zero means the numbering is unknown.
// Columns, when set, is the exact list of numbers for rows whose numbering
// has gaps.
type RowExpectation struct {
	Count     int    `json:"count"`
	First     int    `json:"first,omitempty"`
	Last      int    `json:"last,omitempty"`
	Columns   []int  `json:"columns,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// HasRange reports whether the row carries a numbering range.
func (r RowExpectation) HasRange() bool {
	return r.First > 0 || len(r.Columns) > 0
}

// Numbers lists the column numbers the row should contain, sorted. An
// explicit Columns list wins; otherwise Count is authoritative and the range
// runs Count seats from First, towards Last.
func (r RowExpectation) Numbers() []int {
	if len(r.Columns) > 0 {
		numbers := append([]int(nil), r.Columns...)
		sort.Ints(numbers)
		return numbers
	}
	if !r.HasRange() || r.Count <= 0 {
		return nil
	}

	numbers := make([]int, 0, r.Count)
	step := 1
	if r.Last > 0 && r.Last < r.First {
		step = -1
	}
	for i, n := 0, r.First; i < r.Count; i, n = i+1, n+step {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// Table maps row label to its expectation for one section.
type Table struct {
	Section       string
	DeclaredTotal int
	Rows          map[string]RowExpectation
}

// Total sums the per-row counts.
func (t *Table) Total() int {
	total := 0
	for _, row := range t.Rows {
		total += row.Count
	}
	return total
}

// RowLabels returns the row labels in display order.
func (t *Table) RowLabels() []string {
	labels := make([]string, 0, len(t.Rows))
	for label := range t.Rows {
		labels = append(labels, label)
	}
	models.SortRowLabels(labels)
	return labels
}

func (t *Table) validate() error {
	if len(t.Rows) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidTable)
	}
	for label, row := range t.Rows {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: empty row label", ErrInvalidTable)
		}
		if row.Count < 0 {
			return fmt.Errorf("%w: row %s has a negative count", ErrInvalidTable, label)
		}
	}
	return nil
}

// Load reads a table from path, choosing the format by extension. sheet and
// section only apply to workbooks; section overrides the name in a JSON file.
func Load(path, sheet, section string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadExcel(path, sheet, section)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table, err := LoadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if section != "" {
		table.Section = section
	}
	return table, nil
}
