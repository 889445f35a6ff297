package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	SourceFile  = "file"
	SourceMySQL = "mysql"
	SourceS3    = "s3"
)

const (
	defaultAddr            = ":8080"
	defaultAdjCache        = 2048
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
)

type ServerConfig struct {
	Addr            string
	Source          string
	DataPath        string
	MySQLDSN        string
	S3              S3Config
	AdjCacheCap     int
	ShutdownTimeout time.Duration
	Logging         LoggingConfig
}

// S3Config points at a graph file in S3-compatible storage.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Key       string
	AccessKey string
	SecretKey string
	Secure    bool
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // text|json
}

// FromFlagsServer parses server flags; every flag falls back to an
// environment variable.
func FromFlagsServer(args []string) (ServerConfig, error) {
	var cfg ServerConfig
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "addr", valueOrDefault("NAVPATH_ADDR", defaultAddr), "HTTP bind address")
	fs.StringVar(&cfg.Source, "source", valueOrDefault("NAVPATH_SOURCE", SourceFile), "graph source: file|mysql|s3")
	fs.StringVar(&cfg.DataPath, "data", os.Getenv("NAVPATH_DATA"), "graph data file (.json, .json.gz, .json.zst, .json.lz4)")
	fs.StringVar(&cfg.MySQLDSN, "dsn", os.Getenv("DB_DSN"), "MySQL DSN")
	BindS3(fs, &cfg.S3)
	fs.IntVar(&cfg.AdjCacheCap, "adj-cache", parseIntWithDefault("NAVPATH_ADJ_CACHE", defaultAdjCache), "adjacency cache capacity")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", parseDurationWithDefault("NAVPATH_SHUTDOWN_TIMEOUT", defaultShutdownTimeout), "graceful shutdown timeout")
	fs.StringVar(&cfg.Logging.Level, "log-level", valueOrDefault("LOG_LEVEL", defaultLoggingLevel), "debug|info|warn|error")
	fs.StringVar(&cfg.Logging.Format, "log-format", valueOrDefault("LOG_FORMAT", defaultLoggingFormat), "text|json")

	if err := fs.Parse(args); err != nil {
		return ServerConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// BindS3 registers the -s3-* flags on fs.
func BindS3(fs *flag.FlagSet, c *S3Config) {
	fs.StringVar(&c.Endpoint, "s3-endpoint", os.Getenv("NAVPATH_S3_ENDPOINT"), "S3-compatible endpoint host:port")
	fs.StringVar(&c.Bucket, "s3-bucket", os.Getenv("NAVPATH_S3_BUCKET"), "bucket holding the graph file")
	fs.StringVar(&c.Key, "s3-key", valueOrDefault("NAVPATH_S3_KEY", "navigation.json"), "object key of the graph file")
	fs.StringVar(&c.AccessKey, "s3-access-key", os.Getenv("NAVPATH_S3_ACCESS_KEY"), "access key")
	fs.StringVar(&c.SecretKey, "s3-secret-key", os.Getenv("NAVPATH_S3_SECRET_KEY"), "secret key")
	fs.BoolVar(&c.Secure, "s3-secure", parseBoolWithDefault("NAVPATH_S3_SECURE", true), "use TLS")
}

// Enabled reports whether enough is set to reach a bucket.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

func (c ServerConfig) Validate() error {
	switch c.Source {
	case SourceFile:
		if c.DataPath == "" {
			return errors.New("config: -data is required for the file source")
		}
	case SourceMySQL:
		if c.MySQLDSN == "" {
			return errors.New("config: -dsn is required for the mysql source")
		}
	case SourceS3:
		if !c.S3.Enabled() || c.S3.Key == "" {
			return errors.New("config: -s3-endpoint, -s3-bucket and -s3-key are required for the s3 source")
		}
	default:
		return fmt.Errorf("config: unknown source %q", c.Source)
	}
	if c.AdjCacheCap <= 0 {
		return fmt.Errorf("config: adjacency cache capacity must be positive, got %d", c.AdjCacheCap)
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDurationWithDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
