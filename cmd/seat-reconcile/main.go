package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"venue-seating-ops/internal/app"
	"venue-seating-ops/internal/backup"
	"venue-seating-ops/internal/cache"
	"venue-seating-ops/internal/expected"
	"venue-seating-ops/internal/models"
	"venue-seating-ops/internal/report"
	"venue-seating-ops/internal/services"
)

const (
	modeBackupDiff    = "backup-diff"
	modeExpectedCount = "expected-count"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seat-reconcile: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		venueFlag    = flag.String("venue", "", "Venue id (default $VENUE_ID)")
		prefixFlag   = flag.String("prefix", "", "Seat id prefix of the section, e.g. vip-central-")
		modeFlag     = flag.String("mode", modeBackupDiff, "backup-diff or expected-count")
		backupFlag   = flag.String("backup", "", "Snapshot location, a file path or r2://key (default $BACKUP_PATH)")
		expectedFlag = flag.String("expected", "", "Expected-count table, .json or .xlsx")
		sheetFlag    = flag.String("sheet", "", "Workbook sheet (default first sheet)")
		sectionFlag  = flag.String("section", "", "Workbook section name (default derived from -prefix)")
		applyFlag    = flag.Bool("apply", false, "Write the corrections; without it the run is a dry run")
	)
	flag.Parse()

	if *modeFlag != modeBackupDiff && *modeFlag != modeExpectedCount {
		return fmt.Errorf("%w: unknown mode %q", models.ErrInvalidInput, *modeFlag)
	}

	env, err := app.Setup("seat-reconcile")
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	venueID, err := env.VenueID(*venueFlag)
	if err != nil {
		return err
	}
	prefix := models.NormalizePrefix(*prefixFlag)

	seats, err := env.Seats.ListByVenue(ctx, venueID, prefix)
	if err != nil {
		return err
	}
	env.Logger.Info("seats loaded",
		zap.String("venue_id", venueID),
		zap.String("prefix", prefix),
		zap.Int("count", len(seats)),
	)

	reconciler := services.NewReconciler(env.Logger)

	if *modeFlag == modeExpectedCount {
		return countAgainstExpected(ctx, env, reconciler, venueID, prefix, seats, *expectedFlag, *sheetFlag, *sectionFlag)
	}

	location := *backupFlag
	if location == "" {
		location = env.Config.Defaults.BackupPath
	}
	return restoreFromBackup(ctx, env, reconciler, venueID, prefix, seats, location, *applyFlag)
}

func restoreFromBackup(ctx context.Context, env *app.Env, reconciler *services.Reconciler, venueID, prefix string, seats []*models.Seat, location string, apply bool) error {
	snap, err := backup.NewStore(ctx, env.Config, env.Logger).Load(ctx, location)
	if err != nil {
		return err
	}
	if snap.VenueID == "" {
		snap.VenueID = venueID
	} else if snap.VenueID != venueID {
		return fmt.Errorf("%w: snapshot belongs to venue %s, not %s", models.ErrInvalidInput, snap.VenueID, venueID)
	}

	ids := make([]string, 0, len(seats)+len(snap.Seats))
	for _, seat := range seats {
		ids = append(ids, seat.ID)
	}
	for _, entry := range snap.Seats {
		ids = append(ids, entry.ID)
	}
	known, err := env.KnownPrefixes(ctx, venueID, ids)
	if err != nil {
		return err
	}

	diff := reconciler.DiffAgainstBackup(seats, snap, prefix, known)
	report.BackupDiff(os.Stdout, diff)

	var invalidator services.CacheInvalidator
	if apply {
		layoutCache, err := cache.Connect(ctx, env.Config.Redis, env.Logger)
		if err != nil {
			env.Logger.Warn("layout cache unavailable, skipping invalidation", zap.Error(err))
		} else if layoutCache != nil {
			defer layoutCache.Close()
			invalidator = layoutCache
		}
	}

	restorer := services.NewRestorer(env.Seats, invalidator, env.Logger, services.RestoreOptions{DryRun: !apply})
	result, err := restorer.ApplyBackupDiff(ctx, diff)
	if result != nil {
		report.RestoreResult(os.Stdout, result)
	}
	if err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d seat writes failed", len(result.Failed))
	}

	if result.Changed() {
		remaining, err := env.Seats.ListByVenue(ctx, venueID, prefix)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nSeats now in %s: %d (backup has %d)\n",
			prefix, len(services.SeatsInSection(remaining, prefix, known)), len(snap.Filter(prefix, known).Seats))
	}
	return nil
}

func countAgainstExpected(ctx context.Context, env *app.Env, reconciler *services.Reconciler, venueID, prefix string, seats []*models.Seat, path, sheet, section string) error {
	if path == "" {
		return fmt.Errorf("%w: -expected is required in %s mode", models.ErrInvalidInput, modeExpectedCount)
	}
	if section == "" {
		section = app.SectionName(prefix)
	}

	table, err := expected.Load(path, sheet, section)
	if err != nil {
		return err
	}

	ids := make([]string, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
	}
	known, err := env.KnownPrefixes(ctx, venueID, ids)
	if err != nil {
		return err
	}

	countReport := reconciler.CountAgainstExpected(services.SeatsInSection(seats, prefix, known), table)
	report.CountReport(os.Stdout, countReport)

	if table.DeclaredTotal > 0 && table.DeclaredTotal != table.Total() {
		env.Logger.Warn("declared section total disagrees with the row counts",
			zap.Int("declared", table.DeclaredTotal),
			zap.Int("rows", table.Total()),
		)
	}
	return nil
}
