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

// Package config loads the YAML application configuration used by the
// passage binary. Library packages take functional options instead; this
// file format exists only so the CLI and server can be driven from a
// single document.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/passage/index"
)

// EmbedderConfig configures the embedding service client.
type EmbedderConfig struct {
	// Host is the base URL of the OpenAI-compatible embedding API.
	Host string `yaml:"host"`

	// Model is the embedding model identifier.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// Local services that ignore authentication can keep the default;
	// an unset or empty variable falls back to "none".
	APIKeyEnv string `yaml:"api_key_env"`

	// Dimensions is the vector size the model produces.
	Dimensions int `yaml:"dimensions"`
}

// IndexConfig selects the vector index backend and distance metric.
type IndexConfig struct {
	Backend string `yaml:"backend"`
	Metric  string `yaml:"metric"`
}

// StoreConfig selects where snapshots are persisted. Path is a directory
// for the fs and badger backends and a database file for sqlite.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// SegmentConfig controls how documents are split into sentence units.
type SegmentConfig struct {
	MinWords      int      `yaml:"min_words"`
	Abbreviations []string `yaml:"abbreviations,omitempty"`
}

// BuildConfig tunes the embedding stage of snapshot builds. PoolSize zero
// leaves the worker count at the engine default.
type BuildConfig struct {
	BatchSize      int `yaml:"batch_size"`
	PoolSize       int `yaml:"pool_size"`
	MaxRetries     int `yaml:"max_retries"`
	RetryDelaySecs int `yaml:"retry_delay_secs"`
}

// ServerConfig configures the HTTP query server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Index    IndexConfig    `yaml:"index"`
	Store    StoreConfig    `yaml:"store"`
	Segment  SegmentConfig  `yaml:"segment"`
	Build    BuildConfig    `yaml:"build"`
	Server   ServerConfig   `yaml:"server"`
}

// RetryDelay returns the build retry base delay as a duration.
func (c *AppConfig) RetryDelay() time.Duration {
	return time.Duration(c.Build.RetryDelaySecs) * time.Second
}

// APIKey resolves the embedding API key from the configured environment
// variable. Returns "none" when the variable is unset or empty, which
// local OpenAI-compatible services accept.
func (c *AppConfig) APIKey() string {
	if c.Embedder.APIKeyEnv == "" {
		return "none"
	}
	if key := os.Getenv(c.Embedder.APIKeyEnv); key != "" {
		return key
	}
	return "none"
}

// Load reads a config from the given path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	return &AppConfig{
		Embedder: EmbedderConfig{
			Host:       "http://localhost:11434/v1",
			Model:      "embeddinggemma",
			APIKeyEnv:  "PASSAGE_API_KEY",
			Dimensions: 768,
		},
		Index:   IndexConfig{Backend: "flat", Metric: "l2"},
		Store:   StoreConfig{Backend: "fs", Path: "passage-data"},
		Segment: SegmentConfig{MinWords: 3},
		Build:   BuildConfig{BatchSize: 100, MaxRetries: 3, RetryDelaySecs: 1},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Embedder.Host == "" {
		cfg.Embedder.Host = def.Embedder.Host
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = def.Embedder.APIKeyEnv
	}
	if cfg.Embedder.Dimensions == 0 {
		cfg.Embedder.Dimensions = def.Embedder.Dimensions
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = def.Index.Backend
	}
	if cfg.Index.Metric == "" {
		cfg.Index.Metric = def.Index.Metric
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = def.Store.Backend
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Segment.MinWords == 0 {
		cfg.Segment.MinWords = def.Segment.MinWords
	}
	if cfg.Build.BatchSize == 0 {
		cfg.Build.BatchSize = def.Build.BatchSize
	}
	if cfg.Build.MaxRetries == 0 {
		cfg.Build.MaxRetries = def.Build.MaxRetries
	}
	if cfg.Build.RetryDelaySecs == 0 {
		cfg.Build.RetryDelaySecs = def.Build.RetryDelaySecs
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
}

// Validate checks that the configuration names known backends and carries
// usable build parameters. Component constructors re-check their own
// options; this runs first so a bad file fails before any store or
// embedder is opened.
func (c *AppConfig) Validate() error {
	if c.Embedder.Host == "" {
		return errors.New("config: embedder.host is required")
	}
	if c.Embedder.Model == "" {
		return errors.New("config: embedder.model is required")
	}
	if c.Embedder.Dimensions <= 0 {
		return errors.New("config: embedder.dimensions must be positive")
	}
	switch c.Index.Backend {
	case "flat", "vptree":
	default:
		return fmt.Errorf("config: unknown index backend %q", c.Index.Backend)
	}
	if _, err := index.ParseMetric(c.Index.Metric); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Store.Backend {
	case "fs", "badger", "sqlite":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Path == "" {
		return errors.New("config: store.path is required")
	}
	if c.Segment.MinWords < 1 {
		return errors.New("config: segment.min_words must be at least 1")
	}
	if c.Build.BatchSize < 1 {
		return errors.New("config: build.batch_size must be at least 1")
	}
	if c.Build.MaxRetries < 1 {
		return errors.New("config: build.max_retries must be at least 1")
	}
	if c.Build.RetryDelaySecs < 0 {
		return errors.New("config: build.retry_delay_secs must not be negative")
	}
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	return nil
}
