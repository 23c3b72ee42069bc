package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_BasicSplitting(t *testing.T) {
	s := New()

	units := s.Segment("The leader is the arbiter of fate. There are five ways of attacking with fire.")
	require.Len(t, units, 2)
	assert.Equal(t, "The leader is the arbiter of fate.", units[0].Text)
	assert.Equal(t, "There are five ways of attacking with fire.", units[1].Text)
}

func TestSegment_DropsShortUnits(t *testing.T) {
	s := New()

	// "Attack." has one word and falls below the default floor of three.
	raw := "Attack. The leader is the arbiter of the people's fate. " +
		"There are five ways of attacking with fire: the first is to burn soldiers in their camp."
	units := s.Segment(raw)

	require.Len(t, units, 2)
	assert.Equal(t, "The leader is the arbiter of the people's fate.", units[0].Text)
	assert.True(t, strings.HasPrefix(units[1].Text, "There are five ways"))
	for _, u := range units {
		assert.GreaterOrEqual(t, u.Words, 3)
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	s := New()

	assert.Empty(t, s.Segment(""))
	assert.Empty(t, s.Segment("   \n\t  "))
}

func TestSegment_AllUnitsUndersized(t *testing.T) {
	s := New()

	units := s.Segment("Attack. Retreat. Page 12.")
	assert.Empty(t, units)
}

func TestSegment_WhitespaceNormalization(t *testing.T) {
	s := New()

	units := s.Segment("The  leader\nis the\t\tarbiter of fate.")
	require.Len(t, units, 1)
	assert.Equal(t, "The leader is the arbiter of fate.", units[0].Text)
	assert.Equal(t, 7, units[0].Words)
}

func TestSegment_Abbreviations(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "title abbreviation",
			raw:  "Dr. Smith wrote the chapter. The editor approved it quickly.",
			want: []string{
				"Dr. Smith wrote the chapter.",
				"The editor approved it quickly.",
			},
		},
		{
			name: "latin abbreviation mid-sentence",
			raw:  "Some units are noise, e.g. page numbers in the margin. The rest are kept.",
			want: []string{
				"Some units are noise, e.g. page numbers in the margin.",
				"The rest are kept.",
			},
		},
		{
			name: "single letter initial",
			raw:  "The essay cites J. Smith at length. Nobody disputed the citation.",
			want: []string{
				"The essay cites J. Smith at length.",
				"Nobody disputed the citation.",
			},
		},
		{
			name: "decimal number",
			raw:  "The ratio was close to 3.14 in every trial. Results were stable.",
			want: []string{
				"The ratio was close to 3.14 in every trial.",
				"Results were stable.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := s.Segment(tt.raw)
			require.Len(t, units, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, units[i].Text)
			}
		})
	}
}

func TestSegment_TerminatorRuns(t *testing.T) {
	s := New()

	units := s.Segment("Will the attack succeed?! Nobody on the council knew. The fires were already burning...")
	require.Len(t, units, 3)
	assert.Equal(t, "Will the attack succeed?!", units[0].Text)
	assert.Equal(t, "Nobody on the council knew.", units[1].Text)
	assert.Equal(t, "The fires were already burning...", units[2].Text)
}

func TestSegment_ClosingQuotes(t *testing.T) {
	s := New()

	units := s.Segment(`He said "burn the camp." The order was carried out.`)
	require.Len(t, units, 2)
	assert.Equal(t, `He said "burn the camp."`, units[0].Text)
	assert.Equal(t, "The order was carried out.", units[1].Text)
}

func TestSegment_LowercaseContinuation(t *testing.T) {
	s := New()

	// A terminator followed by a lowercase letter does not close the unit.
	units := s.Segment("The program v1.2 shipped on time. everyone celebrated the release afterwards")
	require.Len(t, units, 1)
}

func TestSegment_NoTrailingTerminator(t *testing.T) {
	s := New()

	units := s.Segment("The final unit has no trailing punctuation at all")
	require.Len(t, units, 1)
	assert.Equal(t, "The final unit has no trailing punctuation at all", units[0].Text)
}

func TestSegment_DocumentOrder(t *testing.T) {
	s := New()

	raw := "First the scouts reported back. Then the army moved at dawn. Finally the camp was taken."
	units := s.Segment(raw)
	require.Len(t, units, 3)
	assert.True(t, strings.HasPrefix(units[0].Text, "First"))
	assert.True(t, strings.HasPrefix(units[1].Text, "Then"))
	assert.True(t, strings.HasPrefix(units[2].Text, "Finally"))
}

func TestWithMinWords(t *testing.T) {
	t.Run("higher floor drops more units", func(t *testing.T) {
		s := New(WithMinWords(6))
		units := s.Segment("Short sentence here. This one comfortably clears the six word floor.")
		require.Len(t, units, 1)
		assert.True(t, strings.HasPrefix(units[0].Text, "This one"))
	})

	t.Run("floor of one keeps everything", func(t *testing.T) {
		s := New(WithMinWords(1))
		units := s.Segment("Attack. The leader is the arbiter.")
		require.Len(t, units, 2)
	})

	t.Run("non-positive floor clamps to one", func(t *testing.T) {
		s := New(WithMinWords(0))
		assert.Equal(t, 1, s.MinWords())
	})
}

func TestWithAbbreviations(t *testing.T) {
	s := New(WithAbbreviations("Gen.", "col"))

	units := s.Segment("Gen. Li took the hill at dawn. The column followed an hour later.")
	require.Len(t, units, 2)
	assert.Equal(t, "Gen. Li took the hill at dawn.", units[0].Text)
}
