package match

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hyperjump/rulebot/internal/models"
	"github.com/hyperjump/rulebot/internal/storage"
)

// BotNotFoundAnswer is the sentinel answer returned when a bot slug does
// not resolve to any bot.
const BotNotFoundAnswer = "Bot not found."

const defaultCacheSize = 1024

// Engine matches user messages against a bot's Q&A candidates. It is
// stateless apart from the read-mostly keyword-spec cache and the weight
// profile, which can be swapped atomically at runtime; concurrent calls
// need no coordination.
type Engine struct {
	store  storage.Storage
	scorer atomic.Pointer[Scorer]
	cache  *MatcherCache
	logger *zap.Logger
	debug  bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for regex-typo warnings and per-candidate
// debug score lines.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithDebug controls whether results carry the winning candidate's
// ScoreDetail and whether each candidate's score is logged during
// evaluation. Debug never changes scoring outcomes, only observability.
func WithDebug(debug bool) EngineOption {
	return func(e *Engine) { e.debug = debug }
}

// WithCacheSize sets the keyword-spec cache capacity.
func WithCacheSize(n int) EngineOption {
	return func(e *Engine) { e.cache = NewMatcherCache(n) }
}

// NewEngine creates an Engine backed by store. A nil config uses the
// default weight profile.
func NewEngine(store storage.Storage, config *Config, opts ...EngineOption) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewMatcherCache(defaultCacheSize)
	}
	e.scorer.Store(NewScorer(config, e.cache, e.logger))
	return e
}

// SetConfig swaps the weight profile. In-flight calls finish with the
// profile they started with; the keyword-spec cache is retained.
func (e *Engine) SetConfig(config *Config) {
	e.scorer.Store(NewScorer(config, e.cache, e.logger))
}

// Config returns the weight profile currently in use.
func (e *Engine) Config() *Config {
	return e.scorer.Load().Config()
}

// SelectBest scores every candidate against the user message and applies
// the decision rule.
//
// Precondition: qnas must be ordered priority DESC then id ASC, as
// returned by Storage.ListQnA. The best candidate is tracked with a
// strict greater-than comparison, so on a score tie the earliest-iterated
// candidate wins; violating the ordering makes tie-breaking
// nondeterministic.
func (e *Engine) SelectBest(bot *models.Bot, userMessage string, qnas []*models.QnA) *models.MatchResult {
	if len(qnas) == 0 {
		return &models.MatchResult{Matched: false, Answer: bot.FallbackMessage, Confidence: 0}
	}

	scorer := e.scorer.Load()
	userNorm := Normalize(userMessage)

	var (
		best       *models.QnA
		bestDetail *models.ScoreDetail
		bestScore  = -(1 << 30)
	)
	for _, q := range qnas {
		score, detail := scorer.Score(userNorm, q)
		if e.debug && e.logger != nil {
			e.logger.Debug("candidate scored",
				zap.Int64("qna_id", q.ID),
				zap.Int("score", score),
				zap.Bool("exact", detail.Exact),
				zap.Strings("matched_keywords", detail.MatchedKeywords),
				zap.Strings("matched_regex", detail.MatchedRegex),
				zap.Float64("ratio", detail.Ratio),
				zap.Int("priority", detail.Priority),
			)
		}
		if score > bestScore {
			best, bestDetail, bestScore = q, detail, score
		}
	}

	matched := bestDetail.Exact ||
		bestDetail.KeywordHits() > 0 ||
		bestDetail.Ratio >= scorer.Config().SimilarityThreshold

	confidence := bestScore
	if confidence < 0 {
		confidence = 0
	}

	result := &models.MatchResult{Matched: matched, Confidence: confidence}
	if matched {
		result.Answer = best.Answer
		result.Question = best.Question
		result.QnAID = best.ID
	} else {
		result.Answer = bot.FallbackMessage
	}
	if e.debug {
		result.Debug = bestDetail
	}
	return result
}

// MatchRule resolves a bot by slug, fetches its candidates, and returns
// the best match. An unknown slug yields a well-formed unmatched result
// with the sentinel answer, not an error; errors are reserved for storage
// failures.
func (e *Engine) MatchRule(ctx context.Context, botSlug, userMessage string) (*models.MatchResult, error) {
	bot, err := e.store.GetBotBySlug(ctx, botSlug)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.MatchResult{Matched: false, Answer: BotNotFoundAnswer, Confidence: 0}, nil
	}
	if err != nil {
		return nil, err
	}

	qnas, err := e.store.ListQnA(ctx, bot.ID)
	if err != nil {
		return nil, err
	}
	return e.SelectBest(bot, userMessage, qnas), nil
}

// ChatOnce returns just the answer string for a message, using the bot's
// fallback (or the not-found sentinel) when nothing matches.
func (e *Engine) ChatOnce(ctx context.Context, botSlug, userMessage string) (string, error) {
	result, err := e.MatchRule(ctx, botSlug, userMessage)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}
