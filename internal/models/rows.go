package models

import (
	"sort"
	"strconv"
	"strings"
)

// CompareRowLabels orders row labels: numeric labels numerically ("2" < "10"),
// alphabetic labels lexicographically, and numeric labels before alphabetic ones.
func CompareRowLabels(a, b string) int {
	na, aNumeric := rowNumber(a)
	nb, bNumeric := rowNumber(b)

	switch {
	case aNumeric && bNumeric:
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	case aNumeric:
		return -1
	case bNumeric:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SortRowLabels sorts labels in place with CompareRowLabels.
func SortRowLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return CompareRowLabels(labels[i], labels[j]) < 0
	})
}

func rowNumber(label string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return 0, false
	}
	return n, true
}
