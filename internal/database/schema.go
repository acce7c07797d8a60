package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// RequiredSchema lists the tables and columns the seating tools read or write.
var RequiredSchema = map[string][]string{
	"Venue":       {"id", "name", "layoutJson", "layoutVersion"},
	"VenueLayout": {"id", "venueId", "eventId", "name", "version", "layoutJson", "metadata"},
	"Seat":        {"id", "venueId", "layoutId", "rowLabel", "columnNumber", "metadata"},
}

// SchemaIssue is one missing table or column.
type SchemaIssue struct {
	Table  string
	Column string // empty when the whole table is missing
}

func (i SchemaIssue) String() string {
	if i.Column == "" {
		return fmt.Sprintf("table %s is missing", i.Table)
	}
	return fmt.Sprintf("column %s.%s is missing", i.Table, i.Column)
}

type SchemaChecker struct {
	db      *sql.DB
	dialect Dialect
}

func NewSchemaChecker(db *sql.DB, dialect Dialect) *SchemaChecker {
	return &SchemaChecker{db: db, dialect: dialect}
}

// Check compares the live schema against RequiredSchema. Tables are checked
// in name order so the output is stable.
func (s *SchemaChecker) Check(ctx context.Context) ([]SchemaIssue, error) {
	tables := make([]string, 0, len(RequiredSchema))
	for table := range RequiredSchema {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var issues []SchemaIssue
	for _, table := range tables {
		columns, err := s.columns(ctx, table)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			issues = append(issues, SchemaIssue{Table: table})
			continue
		}
		for _, column := range RequiredSchema[table] {
			if !columns[column] {
				issues = append(issues, SchemaIssue{Table: table, Column: column})
			}
		}
	}
	return issues, nil
}

func (s *SchemaChecker) columns(ctx context.Context, table string) (map[string]bool, error) {
	schemaFilter := "table_schema = DATABASE()"
	if s.dialect.Driver == "postgres" {
		schemaFilter = "table_schema = current_schema()"
	}
	query := s.dialect.Rebind(
		"SELECT column_name FROM information_schema.columns WHERE " + schemaFilter + " AND table_name = ?")

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	return columns, nil
}
