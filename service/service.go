package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/poiesic/passage/core"
)

// DefaultK is the number of hits returned when a request leaves K unset.
const DefaultK = 3

// Retriever is the engine surface the query service needs.
type Retriever interface {
	Query(ctx context.Context, query string, k int) (*core.QueryResult, error)
	Ready() bool
	Count() int
}

// QueryRequest is one retrieval request as received from a caller.
type QueryRequest struct {
	// Query is the free-text question to retrieve against.
	Query string `json:"query"`

	// K is the maximum number of hits to return. Zero selects DefaultK;
	// negative values are rejected during validation.
	K int `json:"k"`
}

// QueryResponse is the caller-facing shape of a query result.
// Scores and Contexts are index-aligned, ordered by ascending distance.
type QueryResponse struct {
	Query    string    `json:"query"`
	Scores   []float64 `json:"scores"`
	Contexts []string  `json:"contexts"`
	Answer   string    `json:"answer"`
}

// QueryService applies request defaults and maps engine results into the
// transport-friendly response shape. It holds no retrieval logic of its
// own.
type QueryService struct {
	retriever Retriever
	logger    *slog.Logger
}

// Option configures a QueryService.
type Option func(*QueryService)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *QueryService) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates a query service over the given retriever.
func New(retriever Retriever, opts ...Option) (*QueryService, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}

	s := &QueryService{
		retriever: retriever,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Do runs one retrieval request. An unset K defaults to DefaultK before
// validation, so only explicitly negative values are rejected.
func (s *QueryService) Do(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	k := req.K
	if k == 0 {
		k = DefaultK
	}

	result, err := s.retriever.Query(ctx, req.Query, k)
	if err != nil {
		s.logger.Debug("query failed", "k", k, "err", err)
		return nil, err
	}

	return &QueryResponse{
		Query:    result.Query,
		Scores:   result.Scores(),
		Contexts: result.Contexts(),
		Answer:   result.Answer,
	}, nil
}

// Ready reports whether the underlying retriever is serving a snapshot.
func (s *QueryService) Ready() bool {
	return s.retriever.Ready()
}

// Count returns the unit count of the serving snapshot, 0 when none.
func (s *QueryService) Count() int {
	return s.retriever.Count()
}

// StatusOf maps an error to the HTTP status of its error kind. A nil error
// maps to 200. Errors outside the retrieval taxonomy map to 500.
//
//   - validation  -> 400 (caller input)
//   - build       -> 409 (previous snapshot keeps serving)
//   - capability  -> 502 (embedding backend unavailable)
//   - not loaded  -> 503 (no snapshot yet)
//   - integrity   -> 500 (mismatched or corrupt artifacts)
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrBuild):
		return http.StatusConflict
	case errors.Is(err, core.ErrCapability):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrIntegrity):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
