package match

// Config holds the scoring weight profile. The values are fixed constants
// of the matching behavior; alternate profiles can be loaded from
// configuration and swapped at runtime without changing engine code.
type Config struct {
	// ExactMatchBonus is added when the normalized user text equals the
	// normalized candidate question.
	ExactMatchBonus int `yaml:"exact_match_bonus"` // default: 40
	// KeywordPoints is added per matched plain phrase.
	KeywordPoints int `yaml:"keyword_points"` // default: 12
	// RegexPoints is added per matched regex pattern.
	RegexPoints int `yaml:"regex_points"` // default: 14
	// SimilarityWeight scales the similarity ratio; the rounded product is
	// added to the score.
	SimilarityWeight float64 `yaml:"similarity_weight"` // default: 30
	// PriorityWeight is multiplied by the candidate's priority.
	PriorityWeight int `yaml:"priority_weight"` // default: 2
	// SimilarityThreshold is the minimum ratio at which similarity alone
	// counts as a match.
	SimilarityThreshold float64 `yaml:"similarity_threshold"` // default: 0.55
}

// DefaultConfig returns the default weight profile.
func DefaultConfig() *Config {
	return &Config{
		ExactMatchBonus:     40,
		KeywordPoints:       12,
		RegexPoints:         14,
		SimilarityWeight:    30,
		PriorityWeight:      2,
		SimilarityThreshold: 0.55,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.ExactMatchBonus == 0 {
		c.ExactMatchBonus = defaults.ExactMatchBonus
	}
	if c.KeywordPoints == 0 {
		c.KeywordPoints = defaults.KeywordPoints
	}
	if c.RegexPoints == 0 {
		c.RegexPoints = defaults.RegexPoints
	}
	if c.SimilarityWeight == 0 {
		c.SimilarityWeight = defaults.SimilarityWeight
	}
	if c.PriorityWeight == 0 {
		c.PriorityWeight = defaults.PriorityWeight
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = defaults.SimilarityThreshold
	}
}
