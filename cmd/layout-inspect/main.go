package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"venue-seating-ops/internal/app"
	"venue-seating-ops/internal/models"
	"venue-seating-ops/internal/report"
	"venue-seating-ops/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "layout-inspect: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		layoutFlag  = flag.String("layout", "", "VenueLayout id to inspect")
		venueFlag   = flag.String("venue", "", "Venue id; its embedded layout is used when -layout is not given")
		prefixFlag  = flag.String("prefix", "", "Also print the row directions of this section's seats")
		sectionFlag = flag.String("section", "", "Section name; its prefix is used for the row directions")
	)
	flag.Parse()

	env, err := app.Setup("layout-inspect")
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()

	var doc *models.LayoutDocument
	var venueID string
	if *layoutFlag != "" {
		doc, err = env.Layouts.GetLayoutDocument(ctx, *layoutFlag)
		venueID = *venueFlag
	} else {
		venueID, err = env.VenueID(*venueFlag)
		if err != nil {
			return err
		}
		doc, err = env.Layouts.GetVenueLayoutDocument(ctx, venueID)
	}
	if err != nil {
		return err
	}

	report.Sections(os.Stdout, doc)

	prefix := models.NormalizePrefix(*prefixFlag)
	if *sectionFlag != "" {
		section, ok := doc.FindSection(*sectionFlag)
		if !ok {
			return fmt.Errorf("%w: section %q not in layout", models.ErrInvalidInput, *sectionFlag)
		}
		prefix = section.Prefix()
	}
	if prefix == "" {
		return nil
	}
	if venueID == "" {
		return fmt.Errorf("%w: -venue is required to inspect seat rows", models.ErrInvalidInput)
	}

	seats, err := env.Seats.ListByVenue(ctx, venueID, prefix)
	if err != nil {
		return err
	}
	ids := make([]string, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
	}
	known := models.KnownPrefixes(doc.Prefixes(), ids)
	seats = services.SeatsInSection(seats, prefix, known)

	fmt.Printf("\nRows of %s (%d seats)\n", prefix, len(seats))
	report.RowDirections(os.Stdout, services.NewReconciler(env.Logger).RowDirections(seats))
	return nil
}
