// Package app wires configuration, logging and storage for the cmd tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"venue-seating-ops/internal/config"
	"venue-seating-ops/internal/database"
	"venue-seating-ops/internal/logger"
	"venue-seating-ops/internal/models"
	"venue-seating-ops/internal/repositories"
)

// Env is what every tool holds for one run. Close releases it.
type Env struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *database.DB
	Layouts *repositories.LayoutRepository
	Seats   *repositories.SeatRepository
}

// Setup loads configuration, builds the logger and opens the one database
// connection the run uses.
func Setup(tool string) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, tool)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log = log.With(zap.String("run_id", uuid.NewString()))

	db, err := database.NewConnection(DatabaseConfig(cfg.Database))
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Debug("database connected", zap.String("driver", db.Dialect.Driver), zap.String("host", cfg.Database.Host))

	return &Env{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Layouts: repositories.NewLayoutRepository(db),
		Seats:   repositories.NewSeatRepository(db),
	}, nil
}

// DatabaseConfig maps the loaded settings onto the connection config
func DatabaseConfig(c config.DatabaseConfig) database.Config {
	return database.Config{
		Driver:   c.Driver,
		URL:      c.URL,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		DBName:   c.DBName,
		SSLMode:  c.SSLMode,
	}
}

func (e *Env) Close() {
	if err := e.DB.Close(); err != nil {
		e.Logger.Warn("failed to close database", zap.Error(err))
	}
	_ = e.Logger.Sync()
}

// VenueID returns the flag value, or the configured default.
func (e *Env) VenueID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if e.Config.Defaults.VenueID != "" {
		return e.Config.Defaults.VenueID, nil
	}
	return "", fmt.Errorf("%w: -venue is required (or set VENUE_ID)", models.ErrInvalidInput)
}

// KnownPrefixes collects section prefixes from the venue's layout and from
// the given seat ids. A venue without a stored layout only contributes ids.
func (e *Env) KnownPrefixes(ctx context.Context, venueID string, ids []string) ([]string, error) {
	var fromLayout []string

	doc, err := e.Layouts.GetVenueLayoutDocument(ctx, venueID)
	switch {
	case err == nil:
		fromLayout = doc.Prefixes()
	case errors.Is(err, models.ErrLayoutNotFound), errors.Is(err, models.ErrMalformedLayout):
		e.Logger.Debug("no usable venue layout, deriving prefixes from seat ids", zap.Error(err))
	default:
		return nil, err
	}

	if layoutID := e.Config.Defaults.LayoutID; layoutID != "" {
		doc, err := e.Layouts.GetLayoutDocument(ctx, layoutID)
		if err == nil {
			fromLayout = append(fromLayout, doc.Prefixes()...)
		} else if !errors.Is(err, models.ErrLayoutNotFound) && !errors.Is(err, models.ErrMalformedLayout) {
			return nil, err
		}
	}

	return models.KnownPrefixes(fromLayout, ids), nil
}

// SectionName turns a seat id prefix back into a workbook section name,
// e.g. "vip-central-" -> "VIP CENTRAL".
func SectionName(prefix string) string {
	return strings.ToUpper(strings.Join(strings.FieldsFunc(prefix, func(r rune) bool { return r == '-' }), " "))
}
