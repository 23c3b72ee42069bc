package flat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/index"
)

func TestBuild(t *testing.T) {
	t.Run("valid vectors", func(t *testing.T) {
		ix := New(index.MetricL2)
		err := ix.Build([][]float32{{1, 0}, {0, 1}})
		require.NoError(t, err)
		assert.Equal(t, 2, ix.Len())
		assert.Equal(t, 2, ix.Dim())
	})

	t.Run("empty input", func(t *testing.T) {
		ix := New(index.MetricL2)
		err := ix.Build(nil)
		assert.ErrorIs(t, err, index.ErrEmptyBuild)
	})

	t.Run("ragged dimensionality", func(t *testing.T) {
		ix := New(index.MetricL2)
		err := ix.Build([][]float32{{1, 0}, {0, 1, 2}})
		assert.ErrorIs(t, err, index.ErrRaggedVectors)
	})

	t.Run("rebuild replaces contents", func(t *testing.T) {
		ix := New(index.MetricL2)
		require.NoError(t, ix.Build([][]float32{{1, 0}, {0, 1}}))
		require.NoError(t, ix.Build([][]float32{{1, 2, 3}}))
		assert.Equal(t, 1, ix.Len())
		assert.Equal(t, 3, ix.Dim())
	})
}

func TestSearch_Ordering(t *testing.T) {
	ix := New(index.MetricL2)
	require.NoError(t, ix.Build([][]float32{
		{10, 0}, // unit 0, far
		{1, 0},  // unit 1, near
		{4, 0},  // unit 2, middle
	}))

	results, err := ix.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, core.UnitID(1), results[0].Unit)
	assert.Equal(t, core.UnitID(2), results[1].Unit)
	assert.Equal(t, core.UnitID(0), results[2].Unit)

	assert.InDelta(t, 1, results[0].Score, 1e-9)
	assert.InDelta(t, 16, results[1].Score, 1e-9)
	assert.InDelta(t, 100, results[2].Score, 1e-9)
}

func TestSearch_TieBreakAscendingUnit(t *testing.T) {
	// Units 1, 2 and 3 are equidistant from the query; ties resolve by
	// ascending unit id.
	ix := New(index.MetricL2)
	require.NoError(t, ix.Build([][]float32{
		{5, 5},
		{1, 0},
		{0, 1},
		{1, 0},
	}))

	results, err := ix.Search([]float32{0, 0}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, core.UnitID(1), results[0].Unit)
	assert.Equal(t, core.UnitID(2), results[1].Unit)
	assert.Equal(t, core.UnitID(3), results[2].Unit)
	assert.Equal(t, core.UnitID(0), results[3].Unit)
}

func TestSearch_KLargerThanLen(t *testing.T) {
	ix := New(index.MetricL2)
	require.NoError(t, ix.Build([][]float32{{1}, {2}}))

	results, err := ix.Search([]float32{0}, 100)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_Errors(t *testing.T) {
	t.Run("non-positive k", func(t *testing.T) {
		ix := New(index.MetricL2)
		require.NoError(t, ix.Build([][]float32{{1}}))

		_, err := ix.Search([]float32{0}, 0)
		assert.ErrorIs(t, err, index.ErrInvalidK)

		_, err = ix.Search([]float32{0}, -3)
		assert.ErrorIs(t, err, index.ErrInvalidK)
	})

	t.Run("not built", func(t *testing.T) {
		ix := New(index.MetricL2)
		_, err := ix.Search([]float32{0}, 1)
		assert.ErrorIs(t, err, index.ErrNotBuilt)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		ix := New(index.MetricL2)
		require.NoError(t, ix.Build([][]float32{{1, 2}}))

		_, err := ix.Search([]float32{1, 2, 3}, 1)
		assert.ErrorIs(t, err, index.ErrDimMismatch)
	})
}

func TestSearch_CosineMetric(t *testing.T) {
	ix := New(index.MetricCosine)
	require.NoError(t, ix.Build([][]float32{
		{0, 1},   // orthogonal to query
		{2, 0},   // same direction, different magnitude
		{-1, 0},  // opposite
		{1, 0.1}, // slightly off
	}))

	results, err := ix.Search([]float32{1, 0}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, core.UnitID(1), results[0].Unit)
	assert.InDelta(t, 0, results[0].Score, 1e-9)
	assert.Equal(t, core.UnitID(3), results[1].Unit)
	assert.Equal(t, core.UnitID(0), results[2].Unit)
	assert.InDelta(t, 1, results[2].Score, 1e-9)
	assert.Equal(t, core.UnitID(2), results[3].Unit)
	assert.InDelta(t, 2, results[3].Score, 1e-9)
}

func TestSearch_Deterministic(t *testing.T) {
	ix := New(index.MetricL2)
	require.NoError(t, ix.Build([][]float32{
		{0.3, 0.7}, {0.9, 0.1}, {0.5, 0.5}, {0.2, 0.8},
	}))

	first, err := ix.Search([]float32{0.4, 0.6}, 3)
	require.NoError(t, err)
	for n := 0; n < 10; n++ {
		again, err := ix.Search([]float32{0.4, 0.6}, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	ix := New(index.MetricCosine)
	require.NoError(t, ix.Build([][]float32{
		{0.1, 0.2, 0.3},
		{0.9, 0.8, 0.7},
		{0.4, 0.5, 0.6},
	}))

	want, err := ix.Search([]float32{0.35, 0.45, 0.55}, 3)
	require.NoError(t, err)

	blob, err := ix.MarshalBinary()
	require.NoError(t, err)

	restored := New(index.MetricL2) // metric comes from the blob
	require.NoError(t, restored.UnmarshalBinary(blob))
	assert.Equal(t, ix.Len(), restored.Len())
	assert.Equal(t, ix.Dim(), restored.Dim())
	assert.Equal(t, index.MetricCosine, restored.Metric())

	got, err := restored.Search([]float32{0.35, 0.45, 0.55}, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMarshal_NotBuilt(t *testing.T) {
	ix := New(index.MetricL2)
	_, err := ix.MarshalBinary()
	assert.ErrorIs(t, err, index.ErrNotBuilt)
}

func TestUnmarshal_CorruptLeavesIndexUnchanged(t *testing.T) {
	ix := New(index.MetricL2)
	require.NoError(t, ix.Build([][]float32{{1, 2}}))

	blob, err := ix.MarshalBinary()
	require.NoError(t, err)

	err = ix.UnmarshalBinary(blob[:len(blob)-2])
	require.ErrorIs(t, err, index.ErrBadBlob)

	// Previous contents still searchable.
	results, err := ix.Search([]float32{1, 2}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.UnitID(0), results[0].Unit)
}
