package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// DB is the single storage handle a tool holds for the length of its run.
type DB struct {
	*sql.DB
	Dialect Dialect
}

type Config struct {
	Driver   string // "mysql" or "postgres"
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewConnection(config Config) (*DB, error) {
	dialect, err := DialectFor(config.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(dialect, config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The tools run sequentially; a couple of connections is plenty
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// CheckSchema verifies the tables the tools read and write
func (db *DB) CheckSchema(ctx context.Context) ([]SchemaIssue, error) {
	return NewSchemaChecker(db.DB, db.Dialect).Check(ctx)
}

func buildDSN(dialect Dialect, config Config) (string, error) {
	switch dialect.Driver {
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = config.User
		cfg.Passwd = config.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
		cfg.DBName = config.DBName
		cfg.ParseTime = true
		// Report matched rather than changed rows so rewriting identical
		// metadata is not mistaken for a missing seat
		cfg.ClientFoundRows = true
		return cfg.FormatDSN(), nil
	case "postgres":
		// Use full URL if available, otherwise construct from components
		if config.URL != "" {
			return config.URL, nil
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", dialect.Driver)
	}
}
