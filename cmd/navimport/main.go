package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/atharv3903/navpath/internal/config"
	"github.com/atharv3903/navpath/internal/db"
	"github.com/atharv3903/navpath/internal/loader"
	"github.com/atharv3903/navpath/internal/logging"
	"github.com/atharv3903/navpath/internal/model"
)

func main() {
	var (
		data     string
		dsn      string
		out      string
		schema   bool
		s3cfg    config.S3Config
		logLevel string
		timeout  time.Duration
	)
	flag.StringVar(&data, "data", os.Getenv("NAVPATH_DATA"), "graph data file to import")
	flag.StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "MySQL DSN; empty skips the database")
	flag.StringVar(&out, "out", "", "also write the graph to this file (codec from extension)")
	flag.BoolVar(&schema, "create-schema", false, "create tables before importing")
	flag.StringVar(&logLevel, "log-level", "info", "debug|info|warn|error")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall import timeout")
	config.BindS3(flag.CommandLine, &s3cfg)
	flag.Parse()

	logger := logging.New(config.LoggingConfig{Level: logLevel}, os.Stderr)
	if data == "" {
		logger.Error("-data is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g, err := loader.FileSource{Path: data}.Load(ctx)
	if err != nil {
		logger.Error("read graph", "error", err)
		os.Exit(1)
	}
	for _, is := range loader.Validate(g) {
		logger.Warn("unusable edge", "edge", is.EdgeID, "kind", is.Kind, "detail", is.Detail)
	}
	logger.Info("graph read", "path", data, "nodes", len(g.Nodes), "edges", len(g.Edges))

	if err := run(ctx, g, dsn, schema, out, s3cfg); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
	logger.Info("import finished")
}

func run(ctx context.Context, g *model.Graph, dsn string, schema bool, out string, s3cfg config.S3Config) error {
	if dsn != "" {
		conn, err := sql.Open("mysql", dsn)
		if err != nil {
			return err
		}
		defer conn.Close()

		if schema {
			for _, stmt := range strings.Split(db.Schema, ";") {
				if strings.TrimSpace(stmt) == "" {
					continue
				}
				if _, err := conn.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("create schema: %w", err)
				}
			}
		}
		if err := (db.Store{DB: conn}).Save(ctx, g); err != nil {
			return fmt.Errorf("save to mysql: %w", err)
		}
	}

	if s3cfg.Enabled() {
		client, err := loader.NewMinioClient(s3cfg)
		if err != nil {
			return err
		}
		src := loader.BlobSource{Client: client, Bucket: s3cfg.Bucket, Key: s3cfg.Key}
		if err := src.Upload(ctx, g); err != nil {
			return fmt.Errorf("upload s3://%s/%s: %w", s3cfg.Bucket, s3cfg.Key, err)
		}
	}

	if out != "" {
		if err := loader.WriteFile(out, g); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	}
	return nil
}
