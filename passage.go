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


package passage

import (
	"context"
	"log/slog"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/embed"
	"github.com/poiesic/passage/embed/openai"
	"github.com/poiesic/passage/engine"
	"github.com/poiesic/passage/service"
	"github.com/poiesic/passage/store"
	"github.com/poiesic/passage/store/badger"
)

type KnowledgeBase struct {
	snapshots store.SnapshotStore
	embedder  embed.Embedder
	engine    *engine.Engine
	logger    *slog.Logger
}

// OpenOption configures a KnowledgeBase.
type OpenOption func(*openOptions)

type openOptions struct {
	embedConfig *embed.Config
	embedder    embed.Embedder
	engineOpts  []engine.Option
	inMemory    bool
}

// WithEmbedderConfig sets the embedding service configuration for the
// default OpenAI-compatible embedder.
func WithEmbedderConfig(cfg *embed.Config) OpenOption {
	return func(o *openOptions) {
		o.embedConfig = cfg
	}
}

// WithEmbedder replaces the default embedder entirely. The embedder
// configuration is ignored when this is set.
func WithEmbedder(embedder embed.Embedder) OpenOption {
	return func(o *openOptions) {
		o.embedder = embedder
	}
}

// WithEngineOptions forwards options to the retrieval engine.
func WithEngineOptions(opts ...engine.Option) OpenOption {
	return func(o *openOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithInMemory keeps the snapshot store in memory instead of on disk.
func WithInMemory() OpenOption {
	return func(o *openOptions) {
		o.inMemory = true
	}
}

// Open creates a KnowledgeBase backed by a badger snapshot store at
// filePath. Build a snapshot, or load a persisted one, before querying.
func Open(filePath string, opts ...OpenOption) (*KnowledgeBase, error) {
	// Apply options
	options := &openOptions{
		embedConfig: embed.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open snapshot store
	snapshots, err := badger.OpenStore(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create embedder
	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.embedConfig)
		if err != nil {
			snapshots.Close()
			return nil, err
		}
	}

	// Create engine
	eng, err := engine.New(snapshots, embedder, options.engineOpts...)
	if err != nil {
		snapshots.Close()
		return nil, err
	}

	return &KnowledgeBase{
		snapshots: snapshots,
		embedder:  embedder,
		engine:    eng,
		logger:    slog.Default(),
	}, nil
}

// Build segments, embeds and indexes a document, then persists the
// snapshot and makes it the serving one.
func (kb *KnowledgeBase) Build(ctx context.Context, document string) error {
	return kb.engine.Build(ctx, document)
}

// Load restores the persisted snapshot into the serving position.
func (kb *KnowledgeBase) Load(ctx context.Context) error {
	return kb.engine.Load(ctx)
}

// Query returns the k nearest units for the query text.
func (kb *KnowledgeBase) Query(ctx context.Context, query string, k int) (*core.QueryResult, error) {
	return kb.engine.Query(ctx, query, k)
}

// Ready reports whether a snapshot is serving.
func (kb *KnowledgeBase) Ready() bool {
	return kb.engine.Ready()
}

// Count returns the number of units in the serving snapshot.
func (kb *KnowledgeBase) Count() int {
	return kb.engine.Count()
}

func (kb *KnowledgeBase) Close() error {
	// Release engine workers first
	kb.engine.Close()

	// Close snapshot store
	if err := kb.snapshots.Close(); err != nil {
		kb.logger.Error("error closing snapshot store", "err", err)
		return err
	}
	return nil
}

func (kb *KnowledgeBase) Engine() *engine.Engine {
	return kb.engine
}

func (kb *KnowledgeBase) NewQueryService(opts ...service.Option) (*service.QueryService, error) {
	return service.New(kb.engine, opts...)
}
