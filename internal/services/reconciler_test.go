package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"venue-seating-ops/internal/backup"
	"venue-seating-ops/internal/expected"
	"venue-seating-ops/internal/models"
)

var sixRows = []string{"A", "B", "C", "D", "E", "F"}

func TestDiffAgainstBackup_ExtraSeats(t *testing.T) {
	backupSeats := sectionSeats("vip-central-", sixRows, 24) // 144
	liveSeats := sectionSeats("vip-central-", sixRows, 25)   // 150

	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(liveSeats, snapshotOf(backupSeats), "vip-central-", knownPrefixes)

	assert.Empty(t, diff.Missing)
	assert.Empty(t, diff.Mismatched)
	assert.Len(t, diff.Matched, 144)
	require.Len(t, diff.Extra, 6)
	for _, seat := range diff.Extra {
		assert.Equal(t, 25, seat.ColumnNumber)
	}
	assert.Equal(t, testVenue, diff.VenueID)
	assert.False(t, diff.Clean())
}

func TestDiffAgainstBackup_MissingAndMismatched(t *testing.T) {
	backupSeats := sectionSeats("vip-central-", []string{"A"}, 4)
	live := sectionSeats("vip-central-", []string{"A"}, 3)
	live[1].Metadata = metadataAt(99, 0)

	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snapshotOf(backupSeats), "vip-central-", knownPrefixes)

	require.Len(t, diff.Missing, 1)
	assert.Equal(t, "vip-central-A-4", diff.Missing[0].ID)
	assert.Empty(t, diff.Extra)
	assert.Equal(t, []string{"vip-central-A-1", "vip-central-A-3"}, diff.Matched)

	require.Len(t, diff.Mismatched, 1)
	m := diff.Mismatched[0]
	assert.Equal(t, "vip-central-A-2", m.Live.ID)
	assert.Equal(t, 99.0, m.LivePosition.X)
	assert.Equal(t, 20.0, m.BackupPosition.X)
}

func TestDiffAgainstBackup_CompoundPrefixes(t *testing.T) {
	var live []*models.Seat
	live = append(live, sectionSeats("vip-", []string{"1"}, 2)...)
	live = append(live, sectionSeats("vip-central-", []string{"A"}, 2)...)
	live = append(live, sectionSeats("vip-derecha-", []string{"A"}, 2)...)
	snap := snapshotOf(sectionSeats("vip-", []string{"1"}, 2))

	// vip-central and vip-derecha seats do not belong to the vip- section
	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snap, "vip-", knownPrefixes)
	assert.Empty(t, diff.Extra)
	assert.Len(t, diff.Matched, 2)

	// and the vip-central section ignores the other two
	diff = NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snap, "vip-central-", knownPrefixes)
	assert.Len(t, diff.Extra, 2)
	assert.Empty(t, diff.Matched)
	assert.Empty(t, diff.Missing)
}

func TestDiffAgainstBackup_ExactFloatComparison(t *testing.T) {
	backupSeats := []*models.Seat{{ID: "vip-central-A-1", VenueID: testVenue, RowLabel: "A", ColumnNumber: 1, Metadata: metadataAt(10.25, 5)}}
	live := []*models.Seat{{ID: "vip-central-A-1", VenueID: testVenue, RowLabel: "A", ColumnNumber: 1, Metadata: metadataAt(10.250001, 5)}}

	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snapshotOf(backupSeats), "vip-central-", nil)
	assert.Len(t, diff.Mismatched, 1)
}

func TestDiffAgainstBackup_PositionlessMetadata(t *testing.T) {
	snap := &backup.Snapshot{Seats: []backup.SeatEntry{
		{ID: "vip-central-A-1", Metadata: []byte(`{"status":"AVAILABLE"}`)},
		{ID: "vip-central-A-2", Metadata: []byte(`{"status":"AVAILABLE"}`)},
		{ID: "vip-central-A-3", Metadata: []byte(`{"canvas":{"position":{"x":1,"y":2}}}`)},
	}}
	live := []*models.Seat{
		{ID: "vip-central-A-1", RowLabel: "A", ColumnNumber: 1, Metadata: `{ "status" : "AVAILABLE" }`},
		{ID: "vip-central-A-2", RowLabel: "A", ColumnNumber: 2, Metadata: `{"status":"BLOCKED"}`},
		{ID: "vip-central-A-3", RowLabel: "A", ColumnNumber: 3, Metadata: `{broken`},
	}

	diff := NewReconciler(zap.NewNop()).DiffAgainstBackup(live, snap, "", nil)

	assert.Equal(t, []string{"vip-central-A-1"}, diff.Matched)
	require.Len(t, diff.Mismatched, 2)
	assert.Equal(t, "vip-central-A-2", diff.Mismatched[0].Live.ID)
	assert.Equal(t, "vip-central-A-3", diff.Mismatched[1].Live.ID)
	assert.Nil(t, diff.Mismatched[1].LivePosition)
	assert.Equal(t, []string{"vip-central-A-3"}, diff.Malformed)
}

func TestDiffAgainstBackup_SnapshotUntouched(t *testing.T) {
	snap := snapshotOf(sectionSeats("vip-central-", []string{"A"}, 3))
	before := len(snap.Seats)

	NewReconciler(zap.NewNop()).DiffAgainstBackup(nil, snap, "vip-", knownPrefixes)
	assert.Len(t, snap.Seats, before)
}

func TestCountAgainstExpected(t *testing.T) {
	live := sectionSeats("vip-central-", []string{"A"}, 26)
	live = append(live, sectionSeats("vip-central-", []string{"B"}, 24)...)
	table := &expected.Table{
		Section: "VIP CENTRAL",
		Rows: map[string]expected.RowExpectation{
			"A": {Count: 26},
			"B": {Count: 26},
		},
	}

	report := NewReconciler(zap.NewNop()).CountAgainstExpected(live, table)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "ok", report.Rows[0].Status())
	assert.Equal(t, RowCount{Row: "B", Expected: 26, Actual: 24, Delta: 2}, report.Rows[1])
	assert.Equal(t, "missing 2", report.Rows[1].Status())
	assert.Equal(t, 2, report.TotalMissing)
	assert.Zero(t, report.TotalExtra)
	assert.Equal(t, 52, report.TotalExpected)
	assert.Equal(t, 50, report.TotalActual)
	assert.False(t, report.Reconciled())
}

func TestCountAgainstExpected_ColumnsAndUnlistedRows(t *testing.T) {
	live := sectionSeats("vip-", []string{"8"}, 4) // columns 1..4
	live = append(live, sectionSeats("vip-", []string{"Z"}, 1)...)
	table := &expected.Table{Rows: map[string]expected.RowExpectation{
		"8":  {Count: 5, First: 2, Last: 6},
		"10": {Count: 3},
	}}

	report := NewReconciler(zap.NewNop()).CountAgainstExpected(live, table)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, "8", report.Rows[0].Row)
	assert.Equal(t, []int{5, 6}, report.Rows[0].MissingColumns)
	assert.Equal(t, []int{1}, report.Rows[0].UnexpectedColumns)
	assert.Equal(t, "missing 1", report.Rows[0].Status())

	assert.Equal(t, "10", report.Rows[1].Row)
	assert.Equal(t, 3, report.Rows[1].Delta)

	assert.Equal(t, "Z", report.Rows[2].Row)
	assert.Equal(t, "extra 1", report.Rows[2].Status())

	assert.Equal(t, 4, report.TotalMissing)
	assert.Equal(t, 1, report.TotalExtra)
}

func TestCountAgainstExpected_Reconciled(t *testing.T) {
	live := sectionSeats("vip-central-", []string{"A", "B"}, 3)
	table := &expected.Table{Rows: map[string]expected.RowExpectation{
		"A": {Count: 3, First: 1, Last: 3},
		"B": {Count: 3},
	}}

	report := NewReconciler(zap.NewNop()).CountAgainstExpected(live, table)
	assert.True(t, report.Reconciled())
	assert.Empty(t, report.Rows[0].MissingColumns)
}

func TestRowDirections(t *testing.T) {
	live := sectionSeats("vip-central-", []string{"A"}, 3)
	// row B is numbered right to left
	for c := 1; c <= 3; c++ {
		live = append(live, &models.Seat{
			ID: seatID("vip-central-", "B", c), RowLabel: "B", ColumnNumber: c,
			Metadata: metadataAt(float64(100-c*10), 10),
		})
	}
	live = append(live, &models.Seat{ID: "vip-central-C-1", RowLabel: "C", ColumnNumber: 1, Metadata: metadataAt(5, 20)})
	live = append(live, &models.Seat{ID: "vip-central-C-2", RowLabel: "C", ColumnNumber: 2, Metadata: `{}`})

	directions := NewReconciler(zap.NewNop()).RowDirections(live)
	require.Len(t, directions, 3)

	a := directions[0]
	assert.Equal(t, 1, a.LeftColumn)
	assert.Equal(t, 3, a.RightColumn)
	assert.True(t, a.LeftToRight())
	require.NotNil(t, a.Vector)
	assert.Equal(t, 0.0, a.Vector.AngleDegrees)

	b := directions[1]
	assert.Equal(t, 3, b.LeftColumn)
	assert.False(t, b.LeftToRight())
	assert.Equal(t, 180.0, b.Vector.AngleDegrees)

	c := directions[2]
	assert.Equal(t, 1, c.Seats)
	assert.Nil(t, c.Vector)
}

func TestSeatsInSection(t *testing.T) {
	seats := append(sectionSeats("vip-", []string{"1"}, 1), sectionSeats("vip-central-", []string{"A"}, 1)...)

	assert.Len(t, SeatsInSection(seats, "", knownPrefixes), 2)
	kept := SeatsInSection(seats, "vip-", knownPrefixes)
	require.Len(t, kept, 1)
	assert.Equal(t, "vip-1-1", kept[0].ID)
}

func TestCountAgainstExpected_GappedNumbering(t *testing.T) {
	var live []*models.Seat
	for _, col := range []int{1, 2, 15, 16} {
		live = append(live, &models.Seat{ID: seatID("preferente-", "C", col), RowLabel: "C", ColumnNumber: col, Metadata: metadataAt(float64(col), 0)})
	}
	table := &expected.Table{Rows: map[string]expected.RowExpectation{
		"C": {Count: 4, First: 1, Last: 16, Columns: []int{1, 2, 15, 16}},
	}}

	report := NewReconciler(zap.NewNop()).CountAgainstExpected(live, table)
	require.Len(t, report.Rows, 1)
	assert.Empty(t, report.Rows[0].MissingColumns)
	assert.Empty(t, report.Rows[0].UnexpectedColumns)
	assert.True(t, report.Reconciled())
}
