package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWords int
		want     []string
	}{
		{
			name:     "empty input",
			text:     "",
			maxWords: 40,
			want:     nil,
		},
		{
			name:     "whitespace only",
			text:     "   \n\t  ",
			maxWords: 40,
			want:     nil,
		},
		{
			name:     "no terminal punctuation is one sentence",
			text:     "just a fragment without an ending",
			maxWords: 40,
			want:     []string{"just a fragment without an ending"},
		},
		{
			name:     "three step pitch",
			text:     "Introduce yourself. Explain the product. Ask for the sale.",
			maxWords: 3,
			want:     []string{"Introduce yourself.", "Explain the product.", "Ask for the sale."},
		},
		{
			name:     "sentences packed up to the budget",
			text:     "A b. C d. E f.",
			maxWords: 4,
			want:     []string{"A b. C d.", "E f."},
		},
		{
			name:     "oversized sentence emitted whole",
			text:     "Short one. This single sentence has far more words than the budget allows here.",
			maxWords: 5,
			want: []string{
				"Short one.",
				"This single sentence has far more words than the budget allows here.",
			},
		},
		{
			name:     "newline separators count as boundaries",
			text:     "One two.\nThree four.",
			maxWords: 2,
			want:     []string{"One two.", "Three four."},
		},
		{
			name:     "abbreviation periods split too",
			text:     "Dr. Smith joined the call.",
			maxWords: 2,
			want:     []string{"Dr.", "Smith joined the call."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.maxWords)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestChunkConservesWords(t *testing.T) {
	texts := []string{
		"Open with a greeting. Qualify the lead! Does the prospect have budget? Close with next steps.",
		"No punctuation here at all just a stream of words going on and on",
		"Tiny. Bits. Of. Text. Everywhere. All. Split. Apart.",
	}
	for _, text := range texts {
		for _, maxWords := range []int{1, 3, 10, 1000} {
			chunks := Chunk(text, maxWords)
			var got []string
			for _, c := range chunks {
				got = append(got, strings.Fields(c)...)
			}
			require.Equal(t, strings.Fields(text), got,
				"words lost or duplicated for maxWords=%d", maxWords)
		}
	}
}

func TestChunkBudgetRespected(t *testing.T) {
	text := "One two three four. Five six. Seven eight nine ten eleven twelve thirteen. Fourteen."
	for _, maxWords := range []int{2, 5, 8} {
		for _, chunk := range Chunk(text, maxWords) {
			words := strings.Fields(chunk)
			if len(words) > maxWords {
				// Only a single oversized sentence may blow the budget.
				require.NotContains(t, strings.TrimSuffix(chunk, "."), ".",
					"multi-sentence chunk over budget: %q", chunk)
			}
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	text := "Introduce yourself. Explain the product. Handle objections? Ask for the sale!"
	first := Chunk(text, 6)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Chunk(text, 6))
	}
}
