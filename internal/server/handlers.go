package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/rulebot/internal/models"
	"github.com/hyperjump/rulebot/internal/storage"
)

type chatRequest struct {
	Bot       string `json:"bot"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Bot        string              `json:"bot"`
	Message    string              `json:"message"`
	Matched    bool                `json:"matched"`
	Answer     string              `json:"answer"`
	Confidence int                 `json:"confidence"`
	SessionID  string              `json:"session_id"`
	Debug      *models.ScoreDetail `json:"debug,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Bot == "" || req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "missing 'bot' or 'message' in request body")
		return
	}
	s.logger.Debug("chat request", zap.String("bot", req.Bot), zap.String("message", req.Message))

	result, err := s.engine.MatchRule(r.Context(), req.Bot, req.Message)
	if err != nil {
		s.logger.Error("match failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A missing session id marks the first message of a new session.
	sessionID := req.SessionID
	newSession := int64(0)
	if sessionID == "" {
		sessionID = uuid.NewString()
		newSession = 1
	}
	if bot, botErr := s.storage.GetBotBySlug(r.Context(), req.Bot); botErr == nil {
		if statsErr := s.storage.IncrementStats(r.Context(), bot.ID, newSession, 1); statsErr != nil {
			s.logger.Warn("failed to record stats", zap.Int64("bot_id", bot.ID), zap.Error(statsErr))
		}
	}

	s.respondJSON(w, http.StatusOK, chatResponse{
		Bot:        req.Bot,
		Message:    req.Message,
		Matched:    result.Matched,
		Answer:     result.Answer,
		Confidence: result.Confidence,
		SessionID:  sessionID,
		Debug:      result.Debug,
	})
}

type createBotRequest struct {
	Slug            string `json:"slug"`
	Name            string `json:"name"`
	Theme           string `json:"theme,omitempty"`
	FallbackMessage string `json:"fallback_message,omitempty"`
	Pairs           []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Keywords string `json:"keywords,omitempty"`
		Priority int    `json:"priority,omitempty"`
	} `json:"pairs,omitempty"`
}

func (s *Server) handleCreateBot(w http.ResponseWriter, r *http.Request) {
	var req createBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slug == "" || req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "missing bot name or slug")
		return
	}

	botID, err := s.storage.CreateBot(r.Context(), &models.Bot{
		Slug:            req.Slug,
		Name:            req.Name,
		Theme:           req.Theme,
		FallbackMessage: req.FallbackMessage,
	})
	if errors.Is(err, storage.ErrExists) {
		s.respondError(w, http.StatusConflict, "bot with this slug already exists")
		return
	}
	if err != nil {
		s.logger.Error("create bot failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, pair := range req.Pairs {
		if pair.Question == "" || pair.Answer == "" {
			continue
		}
		if _, err := s.storage.CreateQnA(r.Context(), &models.QnA{
			BotID:    botID,
			Question: pair.Question,
			Answer:   pair.Answer,
			Keywords: pair.Keywords,
			Priority: pair.Priority,
		}); err != nil {
			s.logger.Error("create qna failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{
		"slug": req.Slug,
		"link": "/chat/" + req.Slug,
	})
}

func (s *Server) handleGetBot(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	bot, err := s.storage.GetBotBySlug(r.Context(), slug)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "bot not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	qnas, err := s.storage.ListQnA(r.Context(), bot.ID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pairs := make([]map[string]string, 0, len(qnas))
	for _, q := range qnas {
		pairs = append(pairs, map[string]string{"question": q.Question, "answer": q.Answer})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":  bot.Name,
		"slug":  bot.Slug,
		"theme": bot.Theme,
		"pairs": pairs,
	})
}

func (s *Server) handleBotStats(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	bot, err := s.storage.GetBotBySlug(r.Context(), slug)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "bot not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := s.storage.GetStats(r.Context(), bot.ID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"slug": bot.Slug, "stats": stats})
}

type addQnARequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Keywords string `json:"keywords,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

func (s *Server) handleAddQnA(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	bot, err := s.storage.GetBotBySlug(r.Context(), slug)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "bot not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req addQnARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" || req.Answer == "" {
		s.respondError(w, http.StatusBadRequest, "missing question or answer")
		return
	}

	id, err := s.storage.CreateQnA(r.Context(), &models.QnA{
		BotID:    bot.ID,
		Question: req.Question,
		Answer:   req.Answer,
		Keywords: req.Keywords,
		Priority: req.Priority,
	})
	if err != nil {
		s.logger.Error("create qna failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "status": "created"})
}

func (s *Server) handleDeleteQnA(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid qna id")
		return
	}
	if err := s.storage.DeleteQnA(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "qna not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	botCount, err := s.storage.CountBots(ctx)
	if err != nil {
		s.logger.Error("status: count bots failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	qnaCount, err := s.storage.CountQnA(ctx)
	if err != nil {
		s.logger.Error("status: count qna failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	weights := s.engine.Config()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"bots": botCount,
		"qna":  qnaCount,
		"weights": map[string]interface{}{
			"exact_match_bonus":    weights.ExactMatchBonus,
			"keyword_points":       weights.KeywordPoints,
			"regex_points":         weights.RegexPoints,
			"similarity_weight":    weights.SimilarityWeight,
			"priority_weight":      weights.PriorityWeight,
			"similarity_threshold": weights.SimilarityThreshold,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
