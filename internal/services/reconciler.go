package services

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"venue-seating-ops/internal/backup"
	"venue-seating-ops/internal/expected"
	"venue-seating-ops/internal/geometry"
	"venue-seating-ops/internal/models"
)

// Reconciler compares live seats with a backup snapshot or an expected-count
// table. It never writes.
type Reconciler struct {
	logger *zap.Logger
}

func NewReconciler(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// SeatMismatch is a seat present on both sides whose position differs.
type SeatMismatch struct {
	Live           *models.Seat
	Backup         backup.SeatEntry
	LivePosition   *geometry.Point
	BackupPosition *geometry.Point
}

// BackupDiff partitions the seats of one section by how they compare with a
// snapshot. Every slice is ordered by seat id.
type BackupDiff struct {
	VenueID    string
	Prefix     string
	Missing    []backup.SeatEntry
	Extra      []*models.Seat
	Matched    []string
	Mismatched []SeatMismatch
	// Malformed lists live seats whose metadata could not be parsed
	Malformed []string
	// Uncovered lists live seats of sections the snapshot holds no seats
	// for. Only filled when no prefix is given; they are never deleted.
	Uncovered []string
}

// Clean reports whether applying the diff would change nothing.
func (d *BackupDiff) Clean() bool {
	return len(d.Extra) == 0 && len(d.Mismatched) == 0
}

// DiffAgainstBackup compares the live seats of a section with the snapshot.
// Both sides are restricted to the section named by prefix first, using the
// known prefixes to keep longer sections out. Without a prefix, live seats
// only count as Extra when their section appears in the snapshot.
func (r *Reconciler) DiffAgainstBackup(live []*models.Seat, snap *backup.Snapshot, prefix string, known []string) *BackupDiff {
	section := snap.Filter(prefix, known)
	live = SeatsInSection(live, prefix, known)

	diff := &BackupDiff{VenueID: snap.VenueID, Prefix: prefix}

	byID := section.Index()
	covered := make(map[string]bool)
	if prefix == "" {
		for _, p := range section.Prefixes(known) {
			covered[p] = true
		}
	}
	liveIDs := make(map[string]bool, len(live))
	for _, seat := range live {
		if diff.VenueID == "" {
			diff.VenueID = seat.VenueID
		}
		liveIDs[seat.ID] = true

		entry, ok := byID[seat.ID]
		if !ok {
			if prefix == "" && !covered[models.PrefixOf(seat.ID, known)] {
				diff.Uncovered = append(diff.Uncovered, seat.ID)
				continue
			}
			diff.Extra = append(diff.Extra, seat)
			continue
		}

		livePos, err := seat.Position()
		if err != nil {
			r.logger.Warn("live seat metadata is malformed, treating position as missing",
				zap.String("seat_id", seat.ID), zap.Error(err))
			diff.Malformed = append(diff.Malformed, seat.ID)
			livePos = nil
		}
		backupPos, err := models.PositionFromMetadata(entry.Metadata)
		if err != nil {
			backupPos = nil
		}

		if samePlace(seat, entry, livePos, backupPos) {
			diff.Matched = append(diff.Matched, seat.ID)
			continue
		}
		diff.Mismatched = append(diff.Mismatched, SeatMismatch{
			Live:           seat,
			Backup:         entry,
			LivePosition:   livePos,
			BackupPosition: backupPos,
		})
	}

	for _, entry := range section.Seats {
		if !liveIDs[entry.ID] {
			diff.Missing = append(diff.Missing, entry)
		}
	}

	sort.Slice(diff.Missing, func(i, j int) bool { return diff.Missing[i].ID < diff.Missing[j].ID })
	sort.Slice(diff.Extra, func(i, j int) bool { return diff.Extra[i].ID < diff.Extra[j].ID })
	sort.Strings(diff.Matched)
	sort.Slice(diff.Mismatched, func(i, j int) bool { return diff.Mismatched[i].Live.ID < diff.Mismatched[j].Live.ID })
	sort.Strings(diff.Malformed)
	sort.Strings(diff.Uncovered)

	r.logger.Debug("backup diff computed",
		zap.String("prefix", prefix),
		zap.Int("live", len(live)),
		zap.Int("backup", len(section.Seats)),
		zap.Int("missing", len(diff.Missing)),
		zap.Int("extra", len(diff.Extra)),
		zap.Int("mismatched", len(diff.Mismatched)),
		zap.Int("uncovered", len(diff.Uncovered)),
	)
	return diff
}

// samePlace compares positions exactly when both sides have one. Seats
// without a position on either side match only when their metadata is
// identical: semantically equal JSON, or the same text for verbatim entries.
// A seat restored from the entry therefore compares as matched afterwards.
func samePlace(seat *models.Seat, entry backup.SeatEntry, livePos, backupPos *geometry.Point) bool {
	if livePos != nil && backupPos != nil {
		return models.SamePosition(livePos, backupPos)
	}
	if entry.Verbatim {
		text, err := entry.MetadataText()
		return err == nil && text == seat.Metadata
	}
	return models.MetadataEqual([]byte(seat.Metadata), entry.Metadata)
}

// RowCount is one row of an expected-count comparison.
type RowCount struct {
	Row      string
	Expected int
	Actual   int
	// Delta is Expected - Actual: positive means seats are missing
	Delta int
	// MissingColumns and UnexpectedColumns are only filled when the table
	// carries a numbering range for the row
	MissingColumns    []int
	UnexpectedColumns []int
}

func (c RowCount) Status() string {
	switch {
	case c.Delta > 0:
		return fmt.Sprintf("missing %d", c.Delta)
	case c.Delta < 0:
		return fmt.Sprintf("extra %d", -c.Delta)
	default:
		return "ok"
	}
}

// CountReport compares a section's seats per row with an expected-count table.
type CountReport struct {
	Section       string
	Rows          []RowCount
	TotalExpected int
	TotalActual   int
	TotalMissing  int
	TotalExtra    int
}

// Reconciled reports whether every row has exactly the expected count.
func (c *CountReport) Reconciled() bool {
	for _, row := range c.Rows {
		if row.Delta != 0 {
			return false
		}
	}
	return true
}

// CountAgainstExpected counts the given seats per row label and compares the
// counts with the table. Rows absent from the table expect zero seats.
func (r *Reconciler) CountAgainstExpected(live []*models.Seat, table *expected.Table) *CountReport {
	columns := make(map[string][]int)
	for _, seat := range live {
		columns[seat.RowLabel] = append(columns[seat.RowLabel], seat.ColumnNumber)
	}

	labels := make([]string, 0, len(table.Rows)+len(columns))
	for label := range table.Rows {
		labels = append(labels, label)
	}
	for label := range columns {
		if _, ok := table.Rows[label]; !ok {
			labels = append(labels, label)
		}
	}
	models.SortRowLabels(labels)

	report := &CountReport{Section: table.Section, Rows: make([]RowCount, 0, len(labels))}
	for _, label := range labels {
		want := table.Rows[label]
		row := RowCount{
			Row:      label,
			Expected: want.Count,
			Actual:   len(columns[label]),
		}
		row.Delta = row.Expected - row.Actual
		if want.HasRange() {
			row.MissingColumns, row.UnexpectedColumns = compareColumns(want.Numbers(), columns[label])
		}

		report.TotalExpected += row.Expected
		report.TotalActual += row.Actual
		if row.Delta > 0 {
			report.TotalMissing += row.Delta
		} else {
			report.TotalExtra -= row.Delta
		}
		report.Rows = append(report.Rows, row)
	}

	r.logger.Debug("expected counts compared",
		zap.String("section", table.Section),
		zap.Int("rows", len(report.Rows)),
		zap.Int("missing", report.TotalMissing),
		zap.Int("extra", report.TotalExtra),
	)
	return report
}

// compareColumns returns the wanted numbers not present and the present
// numbers not wanted, both ascending.
func compareColumns(want, have []int) (missing, unexpected []int) {
	wanted := make(map[int]bool, len(want))
	for _, n := range want {
		wanted[n] = true
	}
	present := make(map[int]bool, len(have))
	for _, n := range have {
		present[n] = true
		if !wanted[n] {
			unexpected = append(unexpected, n)
		}
	}
	for _, n := range want {
		if !present[n] {
			missing = append(missing, n)
		}
	}
	sort.Ints(missing)
	sort.Ints(unexpected)
	return missing, unexpected
}

// RowDirection describes how a row runs across the canvas.
type RowDirection struct {
	Row         string
	Seats       int
	LeftColumn  int
	RightColumn int
	// Vector is nil when fewer than two seats have a position
	Vector *geometry.Vector
}

// LeftToRight reports whether column numbers grow with x.
func (d RowDirection) LeftToRight() bool {
	return d.LeftColumn <= d.RightColumn
}

// RowDirections finds, per row, the column numbers of the leftmost and
// rightmost positioned seats, along with the row vector. Seats without a
// usable position are skipped.
func (r *Reconciler) RowDirections(live []*models.Seat) []RowDirection {
	rows := make(map[string][]geometry.RowSeat)
	for _, seat := range live {
		pos, err := seat.Position()
		if err != nil || pos == nil {
			continue
		}
		rows[seat.RowLabel] = append(rows[seat.RowLabel], geometry.RowSeat{Column: seat.ColumnNumber, Position: *pos})
	}

	labels := make([]string, 0, len(rows))
	for label := range rows {
		labels = append(labels, label)
	}
	models.SortRowLabels(labels)

	directions := make([]RowDirection, 0, len(labels))
	for _, label := range labels {
		seats := rows[label]
		dir := RowDirection{Row: label, Seats: len(seats)}

		minX, maxX := math.Inf(1), math.Inf(-1)
		for _, s := range seats {
			if s.Position.X < minX {
				minX = s.Position.X
				dir.LeftColumn = s.Column
			}
			if s.Position.X > maxX {
				maxX = s.Position.X
				dir.RightColumn = s.Column
			}
		}

		vector, err := geometry.RowVector(seats)
		if err == nil {
			dir.Vector = &vector
		} else if !errors.Is(err, geometry.ErrInsufficientSeats) {
			r.logger.Warn("row vector failed", zap.String("row", label), zap.Error(err))
		}
		directions = append(directions, dir)
	}
	return directions
}
