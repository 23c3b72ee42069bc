// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/passage/config"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/embed"
	"github.com/poiesic/passage/embed/openai"
	"github.com/poiesic/passage/engine"
	"github.com/poiesic/passage/index"
	"github.com/poiesic/passage/segment"
	"github.com/poiesic/passage/server"
	"github.com/poiesic/passage/service"
	"github.com/poiesic/passage/store"
	"github.com/poiesic/passage/store/badger"
	"github.com/poiesic/passage/store/fs"
	"github.com/poiesic/passage/store/sqlite"
)

func main() {
	// Load .env file if it exists (for API keys)
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "passage",
		Usage: "Document retrieval over sentence embeddings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "passage.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Segment and embed a document into a persisted snapshot",
				ArgsUsage: "<document file>",
				Action:    buildCommand,
			},
			{
				Name:      "query",
				Usage:     "Load the persisted snapshot and answer a single query",
				ArgsUsage: "<query text>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "k",
						Aliases: []string{"n"},
						Usage:   "Number of nearest units to retrieve",
						Value:   3,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve queries over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides the config file)",
					},
				},
			},
			{
				Name:   "init",
				Usage:  "Write a default configuration file",
				Action: initCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document file argument")
	}
	docPath := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	// Open snapshot store
	snapshots, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer snapshots.Close()

	// Create engine
	eng, err := newEngine(cfg, snapshots)
	if err != nil {
		return err
	}
	defer eng.Close()

	fmt.Fprintf(os.Stderr, "Document: %s\n", docPath)
	fmt.Fprintf(os.Stderr, "Store: %s (%s)\n", cfg.Store.Path, cfg.Store.Backend)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.Embedder.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedder.Model)
	fmt.Fprintln(os.Stderr)

	if err := eng.Build(ctx, string(raw)); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d units\n", eng.Count())
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one query argument")
	}
	query := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Open snapshot store
	snapshots, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer snapshots.Close()

	// Create engine and load the persisted snapshot
	eng, err := newEngine(cfg, snapshots)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Load(ctx); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	result, err := eng.Query(ctx, query, c.Int("k"))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	for _, hit := range result.Hits {
		fmt.Printf("%8.4f  %s\n", hit.Score, hit.Text)
	}
	fmt.Println()
	fmt.Println(result.Answer)
	return nil
}

func serveCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	// Open snapshot store
	snapshots, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer snapshots.Close()

	// Create engine
	eng, err := newEngine(cfg, snapshots)
	if err != nil {
		return err
	}
	defer eng.Close()

	// Load the persisted snapshot if one exists. An empty store is fine:
	// the server answers 503 until a snapshot is built.
	if err := eng.Load(ctx); err != nil {
		if !errors.Is(err, core.ErrNotLoaded) {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		slog.Warn("no snapshot in store, queries will fail until one is built")
	}

	svc, err := service.New(eng)
	if err != nil {
		return fmt.Errorf("failed to create query service: %w", err)
	}

	srv, err := server.New(svc)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Server.Addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		if err := srv.Shutdown(); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

func initCommand(c *cli.Context) error {
	path := c.String("config")

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Wrote default configuration to %s\n", path)
	return nil
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cfg *config.AppConfig) (store.SnapshotStore, error) {
	switch cfg.Store.Backend {
	case "fs":
		return fs.New(cfg.Store.Path)
	case "badger":
		return badger.OpenStore(cfg.Store.Path, false)
	case "sqlite":
		return sqlite.Open(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newEngine(cfg *config.AppConfig, snapshots store.SnapshotStore) (*engine.Engine, error) {
	// Create embedder
	embedConfig := embed.NewConfig(
		embed.WithHost(cfg.Embedder.Host),
		embed.WithModel(cfg.Embedder.Model),
		embed.WithAPIKey(cfg.APIKey()),
		embed.WithDimensions(cfg.Embedder.Dimensions),
	)
	embedder, err := openai.NewEmbedder(embedConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	metric, err := index.ParseMetric(cfg.Index.Metric)
	if err != nil {
		return nil, err
	}

	segOpts := []segment.Option{segment.WithMinWords(cfg.Segment.MinWords)}
	if len(cfg.Segment.Abbreviations) > 0 {
		segOpts = append(segOpts, segment.WithAbbreviations(cfg.Segment.Abbreviations...))
	}

	opts := []engine.Option{
		engine.WithBackend(cfg.Index.Backend),
		engine.WithMetric(metric),
		engine.WithDimensions(cfg.Embedder.Dimensions),
		engine.WithSegmenter(segment.New(segOpts...)),
		engine.WithBatchSize(cfg.Build.BatchSize),
		engine.WithRetry(cfg.Build.MaxRetries, cfg.RetryDelay()),
	}
	if cfg.Build.PoolSize > 0 {
		opts = append(opts, engine.WithPoolSize(cfg.Build.PoolSize))
	}

	eng, err := engine.New(snapshots, embedder, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return eng, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
