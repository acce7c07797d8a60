package services

import (
	"context"

	"venue-seating-ops/internal/models"
)

// SeatStore is the write side of the seat repository the Restorer needs
type SeatStore interface {
	UpdateMetadata(ctx context.Context, seatID, metadata string) error
	Delete(ctx context.Context, seatID string) error
}

// CacheInvalidator drops cached layout data for a venue
type CacheInvalidator interface {
	InvalidateVenue(ctx context.Context, venueID string) (int, error)
}

// SeatsInSection keeps the seats whose id belongs to the section named by
// prefix. An empty prefix keeps everything.
func SeatsInSection(seats []*models.Seat, prefix string, known []string) []*models.Seat {
	if prefix == "" {
		return seats
	}
	kept := make([]*models.Seat, 0, len(seats))
	for _, seat := range seats {
		if models.MatchesPrefix(seat.ID, prefix, known) {
			kept = append(kept, seat)
		}
	}
	return kept
}
