package model

// TranscriptSegment is one timestamped utterance of the call. Segments are
// ordered by non-decreasing Start and immutable once transcribed.
type TranscriptSegment struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// PitchStep is one talking point of the pitch document. Step is 1-based and
// contiguous; the order is the order the steps are expected to be delivered.
type PitchStep struct {
	Step int    `json:"step"`
	Text string `json:"text"`
}

// PitchData bundles the pitch steps with their embedding vectors.
// len(Steps) == len(Embeddings) always; Embeddings[i] belongs to Steps[i] and
// all vectors share one dimension.
type PitchData struct {
	Steps      []PitchStep `json:"steps"`
	Embeddings [][]float32 `json:"embeddings"`
}
