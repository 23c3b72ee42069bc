package flat

import (
	"fmt"
	"sort"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/index"
)

// Index is an exact nearest-neighbor index that scores every stored vector
// against the query. Results are fully deterministic: identical inputs
// produce identical rankings, with distance ties broken by ascending unit
// id.
type Index struct {
	metric index.Metric
	dim    int
	vecs   [][]float32
}

var _ index.Index = (*Index)(nil)

// New returns an empty exact-scan index scoring with the given metric.
func New(metric index.Metric) *Index {
	return &Index{metric: metric}
}

// Build stores vectors in unit id order, replacing any previous contents.
func (i *Index) Build(vectors [][]float32) error {
	dim, err := index.ValidateBuild(vectors)
	if err != nil {
		return err
	}
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	return nil
}

// Search scans all stored vectors and returns up to k results ordered by
// ascending distance.
func (i *Index) Search(query []float32, k int) ([]index.Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", index.ErrInvalidK, k)
	}
	if i.dim == 0 {
		return nil, index.ErrNotBuilt
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("%w: query has %d values, index has %d", index.ErrDimMismatch, len(query), i.dim)
	}

	results := make([]index.Result, len(i.vecs))
	for n, vec := range i.vecs {
		results[n] = index.Result{
			Unit:  core.UnitID(n),
			Score: i.metric.Distance(query, vec),
		}
	}
	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score < results[b].Score
		}
		return results[a].Unit < results[b].Unit
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (i *Index) Len() int { return len(i.vecs) }

func (i *Index) Dim() int { return i.dim }

func (i *Index) Metric() index.Metric { return i.metric }

// MarshalBinary serializes the index into the shared blob layout.
func (i *Index) MarshalBinary() ([]byte, error) {
	if i.dim == 0 {
		return nil, index.ErrNotBuilt
	}
	return index.EncodeVectors(i.metric, i.dim, i.vecs), nil
}

// UnmarshalBinary replaces the index contents with the blob's vectors and
// adopts the blob's metric. A decode failure leaves the receiver unchanged.
func (i *Index) UnmarshalBinary(data []byte) error {
	metric, dim, vecs, err := index.DecodeVectors(data)
	if err != nil {
		return err
	}
	i.metric = metric
	i.dim = dim
	i.vecs = vecs
	return nil
}
