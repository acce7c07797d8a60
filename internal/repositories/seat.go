package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"venue-seating-ops/internal/database"
	"venue-seating-ops/internal/models"
)

// SeatRepository reads and rewrites Seat rows
type SeatRepository struct {
	db *database.DB
}

// NewSeatRepository creates a new seat repository
func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// ListByVenue returns the venue's seats ordered by id. A non-empty idPrefix
// restricts the result to seats whose id starts with it.
func (r *SeatRepository) ListByVenue(ctx context.Context, venueID, idPrefix string) ([]*models.Seat, error) {
	q := r.db.Dialect.Quote
	query := fmt.Sprintf(
		"SELECT id, %s, %s, %s, %s, metadata FROM %s WHERE %s = ?",
		q("venueId"), q("layoutId"), q("rowLabel"), q("columnNumber"), q("Seat"), q("venueId"))
	args := []interface{}{venueID}
	if idPrefix != "" {
		query += " AND id LIKE ? ESCAPE '" + database.LikeEscape + "'"
		args = append(args, r.db.Dialect.Like(idPrefix))
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats for venue %s: %w", venueID, err)
	}
	defer rows.Close()

	var seats []*models.Seat
	for rows.Next() {
		seat := &models.Seat{}
		var layoutID, metadata sql.NullString
		if err := rows.Scan(
			&seat.ID,
			&seat.VenueID,
			&layoutID,
			&seat.RowLabel,
			&seat.ColumnNumber,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seat.LayoutID = nullableString(layoutID)
		seat.Metadata = metadata.String
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list seats for venue %s: %w", venueID, err)
	}

	return seats, nil
}

// CountByVenue counts the venue's seats, optionally restricted to an id prefix
func (r *SeatRepository) CountByVenue(ctx context.Context, venueID, idPrefix string) (int, error) {
	q := r.db.Dialect.Quote
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", q("Seat"), q("venueId"))
	args := []interface{}{venueID}
	if idPrefix != "" {
		query += " AND id LIKE ? ESCAPE '" + database.LikeEscape + "'"
		args = append(args, r.db.Dialect.Like(idPrefix))
	}

	var count int
	if err := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count seats for venue %s: %w", venueID, err)
	}
	return count, nil
}

// UpdateMetadata replaces a seat's metadata in a single statement
func (r *SeatRepository) UpdateMetadata(ctx context.Context, seatID, metadata string) error {
	query := r.db.Dialect.Rebind(fmt.Sprintf(
		"UPDATE %s SET metadata = ? WHERE id = ?", r.db.Dialect.Quote("Seat")))

	result, err := r.db.ExecContext(ctx, query, metadata, seatID)
	if err != nil {
		return fmt.Errorf("failed to update seat %s: %w", seatID, err)
	}
	return requireAffected(result, seatID)
}

// Delete removes a seat row
func (r *SeatRepository) Delete(ctx context.Context, seatID string) error {
	query := r.db.Dialect.Rebind(fmt.Sprintf(
		"DELETE FROM %s WHERE id = ?", r.db.Dialect.Quote("Seat")))

	result, err := r.db.ExecContext(ctx, query, seatID)
	if err != nil {
		return fmt.Errorf("failed to delete seat %s: %w", seatID, err)
	}
	return requireAffected(result, seatID)
}

func requireAffected(result sql.Result, seatID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for seat %s: %w", seatID, err)
	}
	if rowsAffected == 0 {
		return models.ErrSeatNotFound
	}
	return nil
}
