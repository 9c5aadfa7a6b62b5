package chunker

import (
	"regexp"
	"strings"
)

// boundary matches a sentence terminator followed by whitespace. The text is
// split after the terminator, so the punctuation stays with its sentence.
// There is no abbreviation handling: the period in "Dr." is a valid split
// point. That is an accepted limitation of the heuristic, not a bug.
var boundary = regexp.MustCompile(`[.!?]\s+`)

// Chunk splits pitch document text into ordered steps of at most maxWords
// words each. Sentences are accumulated greedily: when adding the next
// sentence would push the running word count strictly above maxWords and the
// current chunk already holds something, the chunk is flushed first. A single
// sentence longer than maxWords is never split mid-sentence; it becomes its
// own chunk. Pure function: same input, same output.
func Chunk(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = 40
	}
	var chunks []string
	var current []string
	wordCount := 0
	for _, sentence := range splitSentences(text) {
		words := strings.Fields(sentence)
		if wordCount+len(words) > maxWords && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			wordCount = 0
		}
		current = append(current, words...)
		wordCount += len(words)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	out := chunks[:0]
	for _, c := range chunks {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// splitSentences cuts text after every `[.!?]` + whitespace run. Text with no
// terminal punctuation comes back as one sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range boundary.FindAllStringIndex(text, -1) {
		// loc[0] is the terminator, loc[1] the end of the whitespace run;
		// keep the terminator, drop the separator.
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
