package core

// Hit is a single retrieved unit together with its distance score.
// Lower scores mean closer matches for every supported metric.
type Hit struct {
	Score float64
	Unit  UnitID
	Text  string
}

// QueryResult carries the ranked hits for one query and the answer
// assembled from them. Hits are ordered by ascending score, ties broken
// by ascending unit id. Results are constructed per query and never
// persisted.
type QueryResult struct {
	Query  string
	Hits   []Hit
	Answer string
}

// Scores returns the hit scores in rank order.
func (r *QueryResult) Scores() []float64 {
	scores := make([]float64, len(r.Hits))
	for i, hit := range r.Hits {
		scores[i] = hit.Score
	}
	return scores
}

// Contexts returns the hit texts in rank order, aligned with Scores.
func (r *QueryResult) Contexts() []string {
	contexts := make([]string, len(r.Hits))
	for i, hit := range r.Hits {
		contexts[i] = hit.Text
	}
	return contexts
}
