// Package report prints tool findings for operators.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"venue-seating-ops/internal/database"
	"venue-seating-ops/internal/geometry"
	"venue-seating-ops/internal/models"
	"venue-seating-ops/internal/services"
)

// maxListed caps how many seat ids are listed per category
const maxListed = 20

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// BackupDiff prints the outcome of a backup comparison.
func BackupDiff(w io.Writer, diff *services.BackupDiff) {
	prefix := diff.Prefix
	if prefix == "" {
		prefix = "(all sections)"
	}
	fmt.Fprintf(w, "Backup comparison for %s\n", prefix)
	fmt.Fprintf(w, "  matched:    %d\n", len(diff.Matched))
	fmt.Fprintf(w, "  mismatched: %d\n", len(diff.Mismatched))
	fmt.Fprintf(w, "  extra:      %d\n", len(diff.Extra))
	fmt.Fprintf(w, "  missing:    %d\n", len(diff.Missing))
	if len(diff.Malformed) > 0 {
		fmt.Fprintf(w, "  malformed:  %d\n", len(diff.Malformed))
	}
	if len(diff.Uncovered) > 0 {
		fmt.Fprintf(w, "  uncovered:  %d (sections not in the backup, left alone)\n", len(diff.Uncovered))
	}

	if len(diff.Mismatched) > 0 {
		fmt.Fprintln(w, "\nMismatched positions:")
		tw := newTable(w)
		fmt.Fprintln(tw, "  SEAT\tLIVE\tBACKUP")
		for i, m := range diff.Mismatched {
			if i == maxListed {
				fmt.Fprintf(tw, "  ... %d more\t\t\n", len(diff.Mismatched)-maxListed)
				break
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", m.Live.ID, point(m.LivePosition), point(m.BackupPosition))
		}
		tw.Flush()
	}

	if len(diff.Extra) > 0 {
		ids := make([]string, len(diff.Extra))
		for i, seat := range diff.Extra {
			ids[i] = seat.ID
		}
		fmt.Fprintf(w, "\nExtra seats (not in backup): %s\n", list(ids))
	}

	if len(diff.Missing) > 0 {
		ids := make([]string, len(diff.Missing))
		for i, entry := range diff.Missing {
			ids[i] = entry.ID
		}
		fmt.Fprintf(w, "\nMissing seats (not restored): %s\n", list(ids))
	}
}

// RestoreResult prints what a restore did or would do.
func RestoreResult(w io.Writer, result *services.RestoreResult) {
	if result.DryRun {
		fmt.Fprintln(w, "\nDry run, nothing written. Re-run with -apply to write:")
	} else {
		fmt.Fprintln(w, "\nRestore applied:")
	}
	fmt.Fprintf(w, "  updated:           %d\n", len(result.Updated))
	fmt.Fprintf(w, "  deleted:           %d\n", len(result.Deleted))
	fmt.Fprintf(w, "  already satisfied: %d\n", len(result.AlreadySatisfied))
	fmt.Fprintf(w, "  failed:            %d\n", len(result.Failed))
	for _, failure := range result.Failed {
		fmt.Fprintf(w, "    %s\n", failure.Error())
	}
	if result.CacheKeysCleared > 0 {
		fmt.Fprintf(w, "  cache keys cleared: %d\n", result.CacheKeysCleared)
	}
}

// CountReport prints a per-row comparison against expected counts.
func CountReport(w io.Writer, report *services.CountReport) {
	if report.Section != "" {
		fmt.Fprintf(w, "Expected counts for %s\n", report.Section)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ROW\tEXPECTED\tACTUAL\tSTATUS\tCOLUMNS")
	for _, row := range report.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", row.Row, row.Expected, row.Actual, row.Status(), columns(row))
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t\t\n", report.TotalExpected, report.TotalActual)
	tw.Flush()

	if report.Reconciled() {
		fmt.Fprintln(w, "\nAll rows match the expected counts.")
		return
	}
	fmt.Fprintf(w, "\n%d seats missing, %d extra.\n", report.TotalMissing, report.TotalExtra)
}

func columns(row services.RowCount) string {
	var parts []string
	if len(row.MissingColumns) > 0 {
		parts = append(parts, "missing "+ints(row.MissingColumns))
	}
	if len(row.UnexpectedColumns) > 0 {
		parts = append(parts, "unexpected "+ints(row.UnexpectedColumns))
	}
	return strings.Join(parts, "; ")
}

// RowDirections prints which way each row is numbered.
func RowDirections(w io.Writer, directions []services.RowDirection) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ROW\tSEATS\tLEFT\tRIGHT\tDIRECTION\tANGLE")
	for _, d := range directions {
		dir := "left to right"
		if !d.LeftToRight() {
			dir = "right to left"
		}
		angle := "-"
		if d.Vector != nil {
			angle = fmt.Sprintf("%.1f", d.Vector.AngleDegrees)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n", d.Row, d.Seats, d.LeftColumn, d.RightColumn, dir, angle)
	}
	tw.Flush()
}

// Sections prints the geometry of every section of a layout.
func Sections(w io.Writer, doc *models.LayoutDocument) {
	fmt.Fprintf(w, "Layout shape: %s, %d sections\n", doc.Shape, len(doc.Sections))
	if len(doc.Sections) == 0 {
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "SECTION\tPREFIX\tPOINTS\tX RANGE\tY RANGE\tCENTRE\tEDGE ANGLE")
	for _, s := range doc.Sections {
		box, err := geometry.BoundingBox(s.Polygon)
		if err != nil {
			fmt.Fprintf(tw, "%s\t%s\t0\t-\t-\t-\t-\n", s.Name, s.Prefix())
			continue
		}
		centre, _ := geometry.Centroid(s.Polygon)
		edge := "-"
		if a, err := geometry.EdgeAngle(s.Polygon); err == nil {
			edge = fmt.Sprintf("%.1f", a)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f..%.1f\t%.1f..%.1f\t%s\t%s\n",
			s.Name, s.Prefix(), len(s.Polygon),
			box.MinX, box.MaxX, box.MinY, box.MaxY,
			point(&centre), edge)
	}
	tw.Flush()
}

// Layouts prints a venue's layouts.
func Layouts(w io.Writer, layouts []*models.VenueLayout) {
	if len(layouts) == 0 {
		fmt.Fprintln(w, "No layouts found.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tVERSION\tEVENT\tSECTIONS")
	for _, l := range layouts {
		event := "-"
		if l.EventID != nil {
			event = *l.EventID
		}
		sections := "?"
		if doc, err := models.ParseLayoutDocument([]byte(l.LayoutJSON)); err == nil {
			sections = strconv.Itoa(len(doc.Sections))
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.ID, l.Name, l.Version, event, sections)
	}
	tw.Flush()
}

// SchemaIssues prints the outcome of a schema check.
func SchemaIssues(w io.Writer, issues []database.SchemaIssue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "Schema OK: all required tables and columns are present.")
		return
	}
	fmt.Fprintf(w, "Schema check found %d problems:\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
}

func point(p *geometry.Point) string {
	if p == nil {
		return "(none)"
	}
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func list(ids []string) string {
	if len(ids) <= maxListed {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s ... (%d more)", strings.Join(ids[:maxListed], ", "), len(ids)-maxListed)
}

func ints(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
