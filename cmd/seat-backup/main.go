package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"venue-seating-ops/internal/app"
	"venue-seating-ops/internal/backup"
	"venue-seating-ops/internal/models"
	"venue-seating-ops/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seat-backup: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		venueFlag  = flag.String("venue", "", "Venue id (default $VENUE_ID)")
		prefixFlag = flag.String("prefix", "", "Only capture seats of this section")
		outFlag    = flag.String("out", "", "Snapshot location, a file path or r2://key (default a dated file in $BACKUP_DIR)")
		r2Flag     = flag.Bool("r2", false, "Store the dated snapshot in R2 instead of $BACKUP_DIR")
	)
	flag.Parse()

	env, err := app.Setup("seat-backup")
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
	if prefix != "" {
		ids := make([]string, len(seats))
		for i, seat := range seats {
			ids[i] = seat.ID
		}
		known, err := env.KnownPrefixes(ctx, venueID, ids)
		if err != nil {
			return err
		}
		seats = services.SeatsInSection(seats, prefix, known)
	}

	now := time.Now()
	location := *outFlag
	switch {
	case location != "":
	case *r2Flag:
		location = backup.R2Scheme + backup.DefaultKey(venueID, now)
	default:
		location = filepath.Join(env.Config.Defaults.BackupDir, backup.DefaultKey(venueID, now))
	}

	snap := backup.Capture(venueID, seats, now)
	saved, err := backup.NewStore(ctx, env.Config, env.Logger).Save(ctx, location, snap)
	if err != nil {
		return err
	}

	env.Logger.Info("snapshot saved",
		zap.String("snapshot_id", snap.ID),
		zap.String("location", saved),
		zap.Int("seats", len(snap.Seats)),
	)
	fmt.Printf("Saved %d seats to %s\n", len(snap.Seats), saved)
	return nil
}
