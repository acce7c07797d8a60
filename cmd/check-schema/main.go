package main

import (
	"context"
	"fmt"
	"os"

	"venue-seating-ops/internal/app"
	"venue-seating-ops/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "check-schema: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env, err := app.Setup("check-schema")
	if err != nil {
		return err
	}
	defer env.Close()

	issues, err := env.DB.CheckSchema(context.Background())
	if err != nil {
		return err
	}

	report.SchemaIssues(os.Stdout, issues)
	if len(issues) > 0 {
		return fmt.Errorf("%d schema problems", len(issues))
	}
	return nil
}
