package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/passage/core"
)

// fakeRetriever for testing
type fakeRetriever struct {
	queryFunc func(ctx context.Context, query string, k int) (*core.QueryResult, error)
	ready     bool
	count     int
}

func (f *fakeRetriever) Query(ctx context.Context, query string, k int) (*core.QueryResult, error) {
	if f.queryFunc != nil {
		return f.queryFunc(ctx, query, k)
	}
	return &core.QueryResult{Query: query}, nil
}

func (f *fakeRetriever) Ready() bool { return f.ready }

func (f *fakeRetriever) Count() int { return f.count }

func TestNew_RequiresRetriever(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrRetrieverRequired)
}

func TestDo_DefaultsK(t *testing.T) {
	cases := []struct {
		name      string
		requested int
		wantK     int
	}{
		{"zero selects default", 0, DefaultK},
		{"explicit value passes through", 7, 7},
		{"negative passes through for validation", -2, -2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotK int
			retriever := &fakeRetriever{
				queryFunc: func(ctx context.Context, query string, k int) (*core.QueryResult, error) {
					gotK = k
					return &core.QueryResult{Query: query}, nil
				},
			}
			svc, err := New(retriever)
			require.NoError(t, err)

			_, err = svc.Do(context.Background(), &QueryRequest{Query: "anything", K: tc.requested})
			require.NoError(t, err)
			assert.Equal(t, tc.wantK, gotK)
		})
	}
}

func TestDo_MapsResult(t *testing.T) {
	retriever := &fakeRetriever{
		queryFunc: func(ctx context.Context, query string, k int) (*core.QueryResult, error) {
			return &core.QueryResult{
				Query: query,
				Hits: []core.Hit{
					{Score: 0.25, Unit: 2, Text: "closest unit"},
					{Score: 1.5, Unit: 0, Text: "second unit"},
				},
				Answer: "closest unit second unit",
			}, nil
		},
	}
	svc, err := New(retriever)
	require.NoError(t, err)

	resp, err := svc.Do(context.Background(), &QueryRequest{Query: "the question"})
	require.NoError(t, err)

	assert.Equal(t, "the question", resp.Query)
	assert.Equal(t, []float64{0.25, 1.5}, resp.Scores)
	assert.Equal(t, []string{"closest unit", "second unit"}, resp.Contexts)
	assert.Equal(t, "closest unit second unit", resp.Answer)
}

func TestDo_PropagatesEngineError(t *testing.T) {
	wantErr := fmt.Errorf("%w: %w", core.ErrValidation, core.ErrEmptyQuery)
	retriever := &fakeRetriever{
		queryFunc: func(ctx context.Context, query string, k int) (*core.QueryResult, error) {
			return nil, wantErr
		},
	}
	svc, err := New(retriever)
	require.NoError(t, err)

	_, err = svc.Do(context.Background(), &QueryRequest{Query: ""})
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestReadyAndCountDelegate(t *testing.T) {
	svc, err := New(&fakeRetriever{ready: true, count: 42})
	require.NoError(t, err)

	assert.True(t, svc.Ready())
	assert.Equal(t, 42, svc.Count())
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", fmt.Errorf("%w: %w", core.ErrValidation, core.ErrEmptyQuery), http.StatusBadRequest},
		{"build", fmt.Errorf("%w: %w", core.ErrBuild, core.ErrNoUnits), http.StatusConflict},
		{"capability", fmt.Errorf("%w: model offline", core.ErrCapability), http.StatusBadGateway},
		{"not loaded", fmt.Errorf("%w: build first", core.ErrNotLoaded), http.StatusServiceUnavailable},
		{"integrity", fmt.Errorf("%w: %w", core.ErrIntegrity, core.ErrCountMismatch), http.StatusInternalServerError},
		{"unclassified", errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusOf(tc.err))
		})
	}
}
