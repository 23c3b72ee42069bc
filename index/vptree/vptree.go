package vptree

import (
	"fmt"
	"math"
	"sort"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/index"
)

// Index answers nearest-neighbor queries through a vantage-point tree,
// pruning subtrees whose distance bounds cannot beat the current candidate
// set. With squared-L2 or cosine distance the triangle inequality the
// pruning relies on does not strictly hold, so recall is a trade-off against
// the exact scan; callers pick this backend explicitly.
type Index struct {
	metric index.Metric
	dim    int
	vecs   [][]float32
	root   *node
}

type node struct {
	idx   int // position in vecs, equal to the unit id
	thr   float64
	left  *node
	right *node
}

var _ index.Index = (*Index)(nil)

// New returns an empty vantage-point tree index scoring with the given
// metric.
func New(metric index.Metric) *Index {
	return &Index{metric: metric}
}

// Build stores vectors in unit id order and plants the tree, replacing any
// previous contents. Construction is deterministic: the vantage point is
// always the last element of a partition.
func (i *Index) Build(vectors [][]float32) error {
	dim, err := index.ValidateBuild(vectors)
	if err != nil {
		return err
	}
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	idxs := make([]int, len(vectors))
	for n := range idxs {
		idxs[n] = n
	}
	i.root = i.plant(idxs)
	return nil
}

// plant builds the subtree over idxs. The threshold is the median distance
// from the vantage point; entries at or below it go left, the rest right.
func (i *Index) plant(idxs []int) *node {
	if len(idxs) == 0 {
		return nil
	}
	vp := idxs[len(idxs)-1]
	rest := idxs[:len(idxs)-1]
	if len(rest) == 0 {
		return &node{idx: vp}
	}
	dists := make([]float64, len(rest))
	for n, j := range rest {
		dists[n] = i.metric.Distance(i.vecs[vp], i.vecs[j])
	}
	order := make([]int, len(rest))
	for n := range order {
		order[n] = n
	}
	sort.Slice(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })
	mid := len(dists) / 2
	thr := dists[order[mid]]
	inner := make([]int, 0, mid+1)
	outer := make([]int, 0, len(rest)-mid-1)
	for rank, n := range order {
		if rank <= mid {
			inner = append(inner, rest[n])
		} else {
			outer = append(outer, rest[n])
		}
	}
	return &node{idx: vp, thr: thr, left: i.plant(inner), right: i.plant(outer)}
}

// Search walks the tree keeping the k best candidates seen so far and
// prunes subtrees that cannot contain anything closer than the current
// worst candidate. Results are ordered by ascending distance with ties
// broken by ascending unit id.
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

	cands := make([]index.Result, 0, min(k, len(i.vecs)))
	bestR := math.Inf(1)
	// worst picks the candidate to evict: highest score, largest unit id
	// among equal scores, so equal-distance ties resolve to ascending ids.
	worst := func() int {
		w := 0
		for n := 1; n < len(cands); n++ {
			if cands[n].Score > cands[w].Score ||
				(cands[n].Score == cands[w].Score && cands[n].Unit > cands[w].Unit) {
				w = n
			}
		}
		return w
	}
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		d := i.metric.Distance(query, i.vecs[n.idx])
		cand := index.Result{Unit: core.UnitID(n.idx), Score: d}
		if len(cands) < k {
			cands = append(cands, cand)
			if len(cands) == k {
				bestR = cands[worst()].Score
			}
		} else if d <= bestR {
			if w := worst(); d < cands[w].Score ||
				(d == cands[w].Score && cand.Unit < cands[w].Unit) {
				cands[w] = cand
				bestR = cands[worst()].Score
			}
		}
		if n.left == nil && n.right == nil {
			return
		}
		if d < n.thr {
			if d-bestR <= n.thr {
				walk(n.left)
			}
			if d+bestR >= n.thr {
				walk(n.right)
			}
		} else {
			if d+bestR >= n.thr {
				walk(n.right)
			}
			if d-bestR <= n.thr {
				walk(n.left)
			}
		}
	}
	walk(i.root)

	sort.Slice(cands, func(a, b int) bool {
		if cands[a].Score != cands[b].Score {
			return cands[a].Score < cands[b].Score
		}
		return cands[a].Unit < cands[b].Unit
	})
	return cands, nil
}

func (i *Index) Len() int { return len(i.vecs) }

func (i *Index) Dim() int { return i.dim }

func (i *Index) Metric() index.Metric { return i.metric }

// MarshalBinary serializes only the vectors in the shared blob layout; the
// tree is replanted on load.
func (i *Index) MarshalBinary() ([]byte, error) {
	if i.dim == 0 {
		return nil, index.ErrNotBuilt
	}
	return index.EncodeVectors(i.metric, i.dim, i.vecs), nil
}

// UnmarshalBinary decodes the blob, adopts its metric, and replants the
// tree. A decode failure leaves the receiver unchanged.
func (i *Index) UnmarshalBinary(data []byte) error {
	metric, _, vecs, err := index.DecodeVectors(data)
	if err != nil {
		return err
	}
	i.metric = metric
	return i.Build(vecs)
}
