package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"venue-seating-ops/internal/models"
)

type RestoreOptions struct {
	// DryRun computes the outcome without writing anything
	DryRun bool
}

// SeatFailure records a seat whose write failed. The run carries on.
type SeatFailure struct {
	SeatID string
	Op     string
	Err    error
}

func (f SeatFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.SeatID, f.Err)
}

type RestoreResult struct {
	DryRun           bool
	Updated          []string
	Deleted          []string
	AlreadySatisfied []string
	Failed           []SeatFailure
	CacheKeysCleared int
}

// Changed reports whether any seat was written.
func (r *RestoreResult) Changed() bool {
	return !r.DryRun && (len(r.Updated) > 0 || len(r.Deleted) > 0)
}

// Restorer applies a BackupDiff: extra seats are deleted and mismatched
// seats get the snapshot's metadata back, verbatim. Missing seats are left
// to the operator.
type Restorer struct {
	seats   SeatStore
	cache   CacheInvalidator
	logger  *zap.Logger
	options RestoreOptions
}

// NewRestorer creates a restorer; cache may be nil.
func NewRestorer(seats SeatStore, cache CacheInvalidator, logger *zap.Logger, options RestoreOptions) *Restorer {
	return &Restorer{
		seats:   seats,
		cache:   cache,
		logger:  logger,
		options: options,
	}
}

// ApplyBackupDiff writes the corrections one seat at a time. Per-seat
// failures are collected in the result; an error is returned only when the
// context ends, together with what was done so far.
func (r *Restorer) ApplyBackupDiff(ctx context.Context, diff *BackupDiff) (*RestoreResult, error) {
	result := &RestoreResult{DryRun: r.options.DryRun}

	for _, seat := range diff.Extra {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if r.options.DryRun {
			result.Deleted = append(result.Deleted, seat.ID)
			continue
		}

		err := r.seats.Delete(ctx, seat.ID)
		switch {
		case err == nil:
			result.Deleted = append(result.Deleted, seat.ID)
			r.logger.Debug("seat deleted", zap.String("seat_id", seat.ID))
		case errors.Is(err, models.ErrSeatNotFound):
			result.AlreadySatisfied = append(result.AlreadySatisfied, seat.ID)
		default:
			r.fail(result, seat.ID, "delete", err)
		}
	}

	for _, m := range diff.Mismatched {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		metadata, err := m.Backup.MetadataText()
		if err != nil {
			r.fail(result, m.Live.ID, "update", err)
			continue
		}
		if r.options.DryRun {
			result.Updated = append(result.Updated, m.Live.ID)
			continue
		}

		if err := r.seats.UpdateMetadata(ctx, m.Live.ID, metadata); err != nil {
			r.fail(result, m.Live.ID, "update", err)
			continue
		}
		result.Updated = append(result.Updated, m.Live.ID)
		r.logger.Debug("seat metadata restored", zap.String("seat_id", m.Live.ID))
	}

	if result.Changed() && r.cache != nil && diff.VenueID != "" {
		cleared, err := r.cache.InvalidateVenue(ctx, diff.VenueID)
		if err != nil {
			r.logger.Warn("layout cache invalidation failed", zap.String("venue_id", diff.VenueID), zap.Error(err))
		}
		result.CacheKeysCleared = cleared
	}

	r.logger.Info("backup diff applied",
		zap.String("prefix", diff.Prefix),
		zap.Bool("dry_run", result.DryRun),
		zap.Int("updated", len(result.Updated)),
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("already_satisfied", len(result.AlreadySatisfied)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("missing_not_restored", len(diff.Missing)),
	)
	return result, nil
}

func (r *Restorer) fail(result *RestoreResult, seatID, op string, err error) {
	r.logger.Error("seat write failed", zap.String("seat_id", seatID), zap.String("op", op), zap.Error(err))
	result.Failed = append(result.Failed, SeatFailure{SeatID: seatID, Op: op, Err: err})
}
