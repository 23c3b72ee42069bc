package core

import "fmt"

// Corpus is the ordered, id-aligned store of text units backing a vector
// index. Position i holds the unit with ID i. A corpus is immutable once
// built; a rebuild replaces corpus and index together.
type Corpus struct {
	units []TextUnit
}

// NewCorpus creates a corpus over the given units in their build order.
// The slice is retained, not copied; callers must not mutate it afterwards.
func NewCorpus(units []TextUnit) *Corpus {
	return &Corpus{units: units}
}

// Lookup returns the unit with the given id in O(1).
// An id outside [0, Len) means the corpus and its index have drifted apart;
// the returned error wraps ErrIntegrity.
func (c *Corpus) Lookup(id UnitID) (TextUnit, error) {
	if int(id) >= len(c.units) {
		return TextUnit{}, fmt.Errorf("%w: %w: unit %d, corpus size %d",
			ErrIntegrity, ErrUnitOutOfRange, id, len(c.units))
	}
	return c.units[id], nil
}

// Len returns the number of units in the corpus.
func (c *Corpus) Len() int {
	return len(c.units)
}

// Units returns the underlying ordered units. The slice must be treated
// as read-only.
func (c *Corpus) Units() []TextUnit {
	return c.units
}
