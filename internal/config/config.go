package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	R2       R2Config
	Log      LogConfig
	Defaults RunDefaults
}

type DatabaseConfig struct {
	Driver   string // "mysql" or "postgres"
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr      string // empty disables layout cache invalidation
	Password  string
	DB        int
	KeyPrefix string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	Endpoint        string
}

type LogConfig struct {
	Level  string
	Format string
}

// RunDefaults are used when a tool is invoked without the matching flag.
type RunDefaults struct {
	VenueID    string
	LayoutID   string
	BackupPath string
	BackupDir  string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Database: parseDatabaseConfig(),
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", ""),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", ""),
		},
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", "seat-backups"),
			Region:          getEnv("R2_REGION", "auto"),
			Endpoint:        getEnv("R2_ENDPOINT", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Defaults: RunDefaults{
			VenueID:    getEnv("VENUE_ID", ""),
			LayoutID:   getEnv("LAYOUT_ID", ""),
			BackupPath: getEnv("BACKUP_PATH", "backup-restore.json"),
			BackupDir:  getEnv("BACKUP_DIR", "backups"),
		},
	}

	return config, nil
}

// R2Enabled reports whether enough R2 settings are present to build a client.
func (c *Config) R2Enabled() bool {
	return c.R2.AccessKeyID != "" && c.R2.SecretAccessKey != "" && c.R2.BucketName != ""
}

func parseDatabaseConfig() DatabaseConfig {
	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		cfg := parseDatabaseURL(databaseURL)
		if driver := getEnv("DB_DRIVER", ""); driver != "" {
			cfg.Driver = normalizeDriver(driver)
		}
		return cfg
	}

	// Fall back to individual environment variables
	driver := normalizeDriver(getEnv("DB_DRIVER", "mysql"))
	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", defaultPort(driver)),
		User:     getEnv("DB_USER", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "boletera"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL:    databaseURL,
		Driver: "mysql",
	}

	// Parse the URL
	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Driver = normalizeDriver(u.Scheme)

	// Extract components
	config.Host = u.Hostname()
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	} else {
		config.Port = defaultPort(config.Driver)
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	// Remove leading slash from path to get database name
	config.DBName = strings.TrimPrefix(u.Path, "/")

	// Parse query parameters for SSL mode
	query := u.Query()
	config.SSLMode = query.Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return "mysql"
	}
}

func defaultPort(driver string) int {
	if driver == "postgres" {
		return 5432
	}
	return 3306
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
