package index

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	vectors := [][]float32{
		{0.1, -0.2, 0.3},
		{1.5, 2.5, -3.5},
		{0, 0, 0},
	}

	for _, metric := range []Metric{MetricL2, MetricCosine} {
		t.Run(metric.String(), func(t *testing.T) {
			blob := EncodeVectors(metric, 3, vectors)

			gotMetric, gotDim, gotVecs, err := DecodeVectors(blob)
			require.NoError(t, err)
			assert.Equal(t, metric, gotMetric)
			assert.Equal(t, 3, gotDim)
			assert.Equal(t, vectors, gotVecs)
		})
	}
}

func TestDecodeVectors_Corrupt(t *testing.T) {
	good := EncodeVectors(MetricL2, 2, [][]float32{{1, 2}, {3, 4}})

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{
			name:   "empty",
			mutate: func([]byte) []byte { return nil },
		},
		{
			name:   "short header",
			mutate: func(b []byte) []byte { return b[:headerSize-1] },
		},
		{
			name: "bad magic",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[0:4], 0xdeadbeef)
				return b
			},
		},
		{
			name: "unsupported version",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[4:8], blobVersion+1)
				return b
			},
		},
		{
			name: "unknown metric",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[8:12], 42)
				return b
			},
		},
		{
			name:   "truncated payload",
			mutate: func(b []byte) []byte { return b[:len(b)-3] },
		},
		{
			name:   "trailing garbage",
			mutate: func(b []byte) []byte { return append(b, 0x00) },
		},
		{
			name: "count disagrees with payload",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[16:20], 7)
				return b
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := tt.mutate(append([]byte(nil), good...))
			_, _, _, err := DecodeVectors(blob)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadBlob)
		})
	}
}

func TestValidateBuild(t *testing.T) {
	t.Run("valid input returns dim", func(t *testing.T) {
		dim, err := ValidateBuild([][]float32{{1, 2, 3}, {4, 5, 6}})
		require.NoError(t, err)
		assert.Equal(t, 3, dim)
	})

	t.Run("no vectors", func(t *testing.T) {
		_, err := ValidateBuild(nil)
		assert.ErrorIs(t, err, ErrEmptyBuild)
	})

	t.Run("empty first vector", func(t *testing.T) {
		_, err := ValidateBuild([][]float32{{}})
		assert.ErrorIs(t, err, ErrRaggedVectors)
	})

	t.Run("ragged dimensionality", func(t *testing.T) {
		_, err := ValidateBuild([][]float32{{1, 2}, {1, 2, 3}})
		assert.ErrorIs(t, err, ErrRaggedVectors)
	})
}
