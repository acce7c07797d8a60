package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"venue-seating-ops/internal/app"
	"venue-seating-ops/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "list-layouts: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	venueFlag := flag.String("venue", "", "Venue id (default $VENUE_ID)")
	flag.Parse()

	env, err := app.Setup("list-layouts")
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()

	venueID, err := env.VenueID(*venueFlag)
	if err != nil {
		return err
	}

	venue, err := env.Layouts.GetVenue(ctx, venueID)
	if err != nil {
		return err
	}
	seatCount, err := env.Seats.CountByVenue(ctx, venueID, "")
	if err != nil {
		return err
	}
	layouts, err := env.Layouts.ListByVenue(ctx, venueID)
	if err != nil {
		return err
	}

	fmt.Printf("Venue %s (%s), layout version %d, %d seats\n\n", venue.Name, venue.ID, venue.LayoutVersion, seatCount)
	report.Layouts(os.Stdout, layouts)
	return nil
}
