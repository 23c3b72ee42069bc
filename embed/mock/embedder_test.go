package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedText_Deterministic(t *testing.T) {
	m := NewEmbedder()
	ctx := context.Background()

	first, err := m.EmbedText(ctx, "the same text")
	require.NoError(t, err)
	require.Len(t, first, DefaultDim)

	second, err := m.EmbedText(ctx, "the same text")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := m.EmbedText(ctx, "different text")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestEmbedTexts_OrderPreserved(t *testing.T) {
	m := NewEmbedder()
	ctx := context.Background()

	texts := []string{"alpha", "beta", "gamma"}
	vectors, err := m.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for i, text := range texts {
		single, err := m.EmbedText(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i], "vector %d should match single embedding", i)
	}
}

func TestCustomDim(t *testing.T) {
	m := NewEmbedder()
	m.Dim = 8

	vec, err := m.EmbedText(context.Background(), "short vectors")
	require.NoError(t, err)
	assert.Len(t, vec, 8)
}

func TestInjectedBehavior(t *testing.T) {
	m := NewEmbedder()
	wantErr := errors.New("service down")
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, wantErr
	}

	_, err := m.EmbedTexts(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, wantErr)
}

func TestCallCountAndReset(t *testing.T) {
	m := NewEmbedder()
	ctx := context.Background()

	_, err := m.EmbedText(ctx, "one")
	require.NoError(t, err)
	_, err = m.EmbedTexts(ctx, []string{"two", "three"})
	require.NoError(t, err)

	assert.Equal(t, 2, m.CallCount())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
}
