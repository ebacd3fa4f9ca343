package models

// ScoreDetail is the per-candidate scoring breakdown. It is transient:
// produced while scoring one candidate, attached to a MatchResult only
// when debug output is requested.
type ScoreDetail struct {
	// MatchedKeywords are the plain phrases that hit, in spec order.
	MatchedKeywords []string `json:"matched_keywords"`
	// MatchedRegex are the source patterns of the regexes that hit, in spec order.
	MatchedRegex []string `json:"matched_regex"`
	// Exact reports whether the normalized user text equals the normalized question.
	Exact bool `json:"exact"`
	// Ratio is the block-matching similarity in [0,1] between the normalized
	// user text and the normalized question.
	Ratio float64 `json:"ratio"`
	// SimilarityPoints is the rounded, weighted contribution of Ratio.
	SimilarityPoints int `json:"similarity_points"`
	// Priority is the candidate's author-assigned priority.
	Priority int `json:"priority"`
}

// KeywordHits returns the combined number of phrase and regex hits.
func (d *ScoreDetail) KeywordHits() int {
	return len(d.MatchedKeywords) + len(d.MatchedRegex)
}

// MatchResult is the outcome of matching one user message against one bot.
// Confidence is the non-negative score of the selected candidate; it is a
// relative ranking signal, not a probability.
type MatchResult struct {
	Matched    bool         `json:"matched"`
	Answer     string       `json:"answer"`
	Question   string       `json:"question,omitempty"`
	QnAID      int64        `json:"qna_id,omitempty"`
	Confidence int          `json:"confidence"`
	Debug      *ScoreDetail `json:"debug,omitempty"`
}
