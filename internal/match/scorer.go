package match

import (
	"math"

	"go.uber.org/zap"

	"github.com/hyperjump/rulebot/internal/models"
)

// Scorer computes the score and breakdown for one candidate against one
// normalized user message. It is safe for concurrent use.
type Scorer struct {
	config *Config
	cache  *MatcherCache
	logger *zap.Logger
}

// NewScorer creates a Scorer with the given weight profile. cache may be
// shared across scorers; a nil cache disables keyword-spec caching and a
// nil config uses the defaults.
func NewScorer(config *Config, cache *MatcherCache, logger *zap.Logger) *Scorer {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &Scorer{config: config, cache: cache, logger: logger}
}

// Config returns the scorer's weight profile.
func (s *Scorer) Config() *Config {
	return s.config
}

// Score evaluates one candidate against the normalized user text and
// returns the total score with its breakdown. userNorm must already be
// normalized (the selector normalizes the message once per call).
func (s *Scorer) Score(userNorm string, qna *models.QnA) (int, *models.ScoreDetail) {
	detail := &models.ScoreDetail{
		MatchedKeywords: []string{},
		MatchedRegex:    []string{},
		Priority:        qna.Priority,
	}
	score := 0

	qNorm := Normalize(qna.Question)
	if userNorm == qNorm {
		score += s.config.ExactMatchBonus
		detail.Exact = true
	}

	matcher := s.matcherFor(qna)
	for _, kw := range matcher.MatchPhrases(userNorm) {
		score += s.config.KeywordPoints
		detail.MatchedKeywords = append(detail.MatchedKeywords, kw)
	}
	for _, pat := range matcher.MatchPatterns(userNorm) {
		score += s.config.RegexPoints
		detail.MatchedRegex = append(detail.MatchedRegex, pat)
	}

	ratio := Ratio(userNorm, qNorm)
	detail.Ratio = ratio
	detail.SimilarityPoints = int(math.Round(s.config.SimilarityWeight * ratio))
	score += detail.SimilarityPoints

	score += qna.Priority * s.config.PriorityWeight

	return score, detail
}

// matcherFor returns the compiled keyword matcher for a candidate,
// consulting the cache when present. Tokens dropped for regex compile
// failure are logged once per spec (on the parse that populates the
// cache) so operator typos are visible without failing the match.
func (s *Scorer) matcherFor(qna *models.QnA) *Matcher {
	if s.cache == nil {
		m, dropped := ParseKeywordSpec(qna.Keywords)
		s.warnDropped(qna, dropped)
		return m
	}
	m, dropped, hit := s.cache.Get(qna.Keywords)
	if !hit {
		s.warnDropped(qna, dropped)
	}
	return m
}

func (s *Scorer) warnDropped(qna *models.QnA, dropped []string) {
	if len(dropped) == 0 || s.logger == nil {
		return
	}
	s.logger.Warn("keyword spec contains invalid regex tokens",
		zap.Int64("qna_id", qna.ID),
		zap.Strings("tokens", dropped))
}
