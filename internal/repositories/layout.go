package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"venue-seating-ops/internal/database"
	"venue-seating-ops/internal/models"
)

// LayoutRepository reads venue and layout documents
type LayoutRepository struct {
	db *database.DB
}

// NewLayoutRepository creates a new layout repository
func NewLayoutRepository(db *database.DB) *LayoutRepository {
	return &LayoutRepository{db: db}
}

// GetLayout retrieves a single VenueLayout row
func (r *LayoutRepository) GetLayout(ctx context.Context, layoutID string) (*models.VenueLayout, error) {
	q := r.db.Dialect.Quote
	query := r.db.Dialect.Rebind(fmt.Sprintf(
		"SELECT id, %s, %s, name, version, %s, metadata FROM %s WHERE id = ?",
		q("venueId"), q("eventId"), q("layoutJson"), q("VenueLayout")))

	layout := &models.VenueLayout{}
	var eventID, metadata sql.NullString
	err := r.db.QueryRowContext(ctx, query, layoutID).Scan(
		&layout.ID,
		&layout.VenueID,
		&eventID,
		&layout.Name,
		&layout.Version,
		&layout.LayoutJSON,
		&metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLayoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layout %s: %w", layoutID, err)
	}

	layout.EventID = nullableString(eventID)
	layout.Metadata = nullableString(metadata)
	return layout, nil
}

// GetLayoutDocument loads a VenueLayout and parses its sections
func (r *LayoutRepository) GetLayoutDocument(ctx context.Context, layoutID string) (*models.LayoutDocument, error) {
	layout, err := r.GetLayout(ctx, layoutID)
	if err != nil {
		return nil, err
	}

	doc, err := models.ParseLayoutDocument([]byte(layout.LayoutJSON))
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", layoutID, err)
	}
	return doc, nil
}

// GetVenue retrieves a venue with its embedded layout
func (r *LayoutRepository) GetVenue(ctx context.Context, venueID string) (*models.Venue, error) {
	q := r.db.Dialect.Quote
	query := r.db.Dialect.Rebind(fmt.Sprintf(
		"SELECT id, name, %s, %s FROM %s WHERE id = ?",
		q("layoutJson"), q("layoutVersion"), q("Venue")))

	venue := &models.Venue{}
	var layoutJSON sql.NullString
	var version sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, venueID).Scan(
		&venue.ID,
		&venue.Name,
		&layoutJSON,
		&version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue %s: %w", venueID, err)
	}

	venue.LayoutJSON = nullableString(layoutJSON)
	venue.LayoutVersion = int(version.Int64)
	return venue, nil
}

// GetVenueLayoutDocument parses the layout stored on the venue row itself
func (r *LayoutRepository) GetVenueLayoutDocument(ctx context.Context, venueID string) (*models.LayoutDocument, error) {
	venue, err := r.GetVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue.LayoutJSON == nil || *venue.LayoutJSON == "" {
		return nil, models.ErrLayoutNotFound
	}

	doc, err := models.ParseLayoutDocument([]byte(*venue.LayoutJSON))
	if err != nil {
		return nil, fmt.Errorf("venue %s: %w", venueID, err)
	}
	return doc, nil
}

// ListByVenue lists every layout of a venue, newest version first
func (r *LayoutRepository) ListByVenue(ctx context.Context, venueID string) ([]*models.VenueLayout, error) {
	q := r.db.Dialect.Quote
	query := r.db.Dialect.Rebind(fmt.Sprintf(
		"SELECT id, %s, %s, name, version, %s, metadata FROM %s WHERE %s = ? ORDER BY version DESC, id",
		q("venueId"), q("eventId"), q("layoutJson"), q("VenueLayout"), q("venueId")))

	rows, err := r.db.QueryContext(ctx, query, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts for venue %s: %w", venueID, err)
	}
	defer rows.Close()

	var layouts []*models.VenueLayout
	for rows.Next() {
		layout := &models.VenueLayout{}
		var eventID, metadata sql.NullString
		if err := rows.Scan(
			&layout.ID,
			&layout.VenueID,
			&eventID,
			&layout.Name,
			&layout.Version,
			&layout.LayoutJSON,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan layout: %w", err)
		}
		layout.EventID = nullableString(eventID)
		layout.Metadata = nullableString(metadata)
		layouts = append(layouts, layout)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list layouts for venue %s: %w", venueID, err)
	}

	return layouts, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
