package expected

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook columns, zero based. Column B starts a section ("SECC. <name>",
// total in C); each row line carries the row label in D, the seat count in
// E, the direction in F and the numbering ("1 a 22") in G.
const (
	colSection   = 1
	colTotal     = 2
	colRow       = 3
	colCount     = 4
	colDirection = 5
	colNumbering = 6
)

const sectionMarker = "SECC."

var numberingPattern = regexp.MustCompile(`(\d+)\s*a\s*(\d+)`)

// LoadExcel reads the expectations for one section from a seating workbook.
// An empty sheet means the first sheet.
func LoadExcel(path, sheet, section string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	return readWorkbook(f, sheet, section)
}

func readWorkbook(f *excelize.File, sheet, section string) (*Table, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidTable)
		}
	}
	if section == "" {
		return nil, fmt.Errorf("%w: a section name is required for workbooks", ErrInvalidTable)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %s: %w", sheet, err)
	}

	want := normalizeSection(section)
	var table *Table
	inSection := false

	// The first line is the header
	for i := 1; i < len(rows); i++ {
		row := rows[i]

		if name := cell(row, colSection); strings.Contains(name, sectionMarker) {
			if inSection {
				break
			}
			inSection = normalizeSection(strings.Replace(name, sectionMarker, "", 1)) == want
			if inSection {
				table = &Table{
					Section:       section,
					DeclaredTotal: parseCount(cell(row, colTotal)),
					Rows:          make(map[string]RowExpectation),
				}
			}
		}
		if !inSection {
			continue
		}

		label := strings.TrimSpace(cell(row, colRow))
		count := parseCount(cell(row, colCount))
		if label == "" || count <= 0 {
			continue
		}

		expectation := RowExpectation{
			Count:     count,
			Direction: strings.TrimSpace(cell(row, colDirection)),
		}
		if m := numberingPattern.FindStringSubmatch(cell(row, colNumbering)); m != nil {
			expectation.First, _ = strconv.Atoi(m[1])
			expectation.Last, _ = strconv.Atoi(m[2])
		}

		// A row split over several lines accumulates
		if prev, ok := table.Rows[label]; ok {
			expectation = mergeRows(prev, expectation)
		}
		table.Rows[label] = expectation
	}

	if table == nil {
		return nil, fmt.Errorf("%w: %q in sheet %s", ErrSectionNotFound, section, sheet)
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// mergeRows joins the lines of a row split across the sheet. The numbering
// of the parts is kept as the union of their numbers, gaps included.
func mergeRows(a, b RowExpectation) RowExpectation {
	merged := RowExpectation{Count: a.Count + b.Count, Direction: a.Direction}
	if !a.HasRange() || !b.HasRange() {
		return merged
	}

	seen := make(map[int]bool)
	for _, n := range append(a.Numbers(), b.Numbers()...) {
		if !seen[n] {
			seen[n] = true
			merged.Columns = append(merged.Columns, n)
		}
	}
	sort.Ints(merged.Columns)
	merged.First = merged.Columns[0]
	merged.Last = merged.Columns[len(merged.Columns)-1]
	return merged
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func normalizeSection(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}
