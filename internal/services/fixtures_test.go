package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"venue-seating-ops/internal/backup"
	"venue-seating-ops/internal/models"
)

const testVenue = "venue-1"

var knownPrefixes = []string{"vip-", "vip-central-", "vip-derecha-"}

func metadataAt(x, y float64) string {
	return fmt.Sprintf(`{"canvas":{"position":{"x":%g,"y":%g}},"status":"AVAILABLE"}`, x, y)
}

func seatID(prefix, row string, col int) string {
	return fmt.Sprintf("%s%s-%d", prefix, row, col)
}

// sectionSeats lays out rows x columns seats on a 10 unit grid
func sectionSeats(prefix string, rows []string, columns int) []*models.Seat {
	var seats []*models.Seat
	for r, row := range rows {
		for c := 1; c <= columns; c++ {
			seats = append(seats, &models.Seat{
				ID:           seatID(prefix, row, c),
				VenueID:      testVenue,
				RowLabel:     row,
				ColumnNumber: c,
				Metadata:     metadataAt(float64(c*10), float64(r*10)),
			})
		}
	}
	return seats
}

func snapshotOf(seats []*models.Seat) *backup.Snapshot {
	snap := &backup.Snapshot{VenueID: testVenue}
	for _, seat := range seats {
		snap.Seats = append(snap.Seats, backup.SeatEntry{
			ID:           seat.ID,
			RowLabel:     seat.RowLabel,
			ColumnNumber: seat.ColumnNumber,
			Metadata:     []byte(seat.Metadata),
		})
	}
	return snap
}

// memSeatStore is an in-memory seat table
type memSeatStore struct {
	mu     sync.Mutex
	seats  map[string]*models.Seat
	writes int
}

func newMemSeatStore(seats []*models.Seat) *memSeatStore {
	store := &memSeatStore{seats: make(map[string]*models.Seat)}
	for _, seat := range seats {
		copied := *seat
		store.seats[seat.ID] = &copied
	}
	return store
}

func (m *memSeatStore) UpdateMetadata(ctx context.Context, seatID, metadata string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seat, ok := m.seats[seatID]
	if !ok {
		return models.ErrSeatNotFound
	}
	seat.Metadata = metadata
	m.writes++
	return nil
}

func (m *memSeatStore) Delete(ctx context.Context, seatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seats[seatID]; !ok {
		return models.ErrSeatNotFound
	}
	delete(m.seats, seatID)
	m.writes++
	return nil
}

func (m *memSeatStore) list() []*models.Seat {
	m.mu.Lock()
	defer m.mu.Unlock()
	seats := make([]*models.Seat, 0, len(m.seats))
	for _, seat := range m.seats {
		copied := *seat
		seats = append(seats, &copied)
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].ID < seats[j].ID })
	return seats
}

// MockSeatStore is a mock implementation of SeatStore
type MockSeatStore struct {
	mock.Mock
}

func (m *MockSeatStore) UpdateMetadata(ctx context.Context, seatID, metadata string) error {
	args := m.Called(ctx, seatID, metadata)
	return args.Error(0)
}

func (m *MockSeatStore) Delete(ctx context.Context, seatID string) error {
	args := m.Called(ctx, seatID)
	return args.Error(0)
}

// MockCacheInvalidator is a mock implementation of CacheInvalidator
type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) InvalidateVenue(ctx context.Context, venueID string) (int, error) {
	args := m.Called(ctx, venueID)
	return args.Int(0), args.Error(1)
}
