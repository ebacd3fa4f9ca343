package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/rulebot/internal/config"
	"github.com/hyperjump/rulebot/internal/match"
	"github.com/hyperjump/rulebot/internal/models"
	"github.com/hyperjump/rulebot/internal/storage"
)

func newTestServer(t *testing.T) (*Server, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	engine := match.NewEngine(store, nil)
	srv := NewServer(engine, store, &config.ServerConfig{Host: "localhost", Port: 0}, zap.NewNop())
	return srv, store
}

func seedCafeBot(t *testing.T, store storage.Storage) int64 {
	t.Helper()
	ctx := context.Background()
	botID, err := store.CreateBot(ctx, &models.Bot{Slug: "cafe", Name: "Cafe"})
	if err != nil {
		t.Fatalf("failed to create bot: %v", err)
	}
	if _, err := store.CreateQnA(ctx, &models.QnA{
		BotID:    botID,
		Question: "What are your hours?",
		Answer:   "9 to 5.",
		Keywords: "hours,open,closed,time",
		Priority: 10,
	}); err != nil {
		t.Fatalf("failed to create qna: %v", err)
	}
	return botID
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleChat(t *testing.T) {
	srv, store := newTestServer(t)
	botID := seedCafeBot(t, store)

	rec := doRequest(t, srv, http.MethodPost, "/chat", map[string]string{
		"bot":     "cafe",
		"message": "what time do you open?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["matched"] != true {
		t.Error("expected a match")
	}
	if body["answer"] != "9 to 5." {
		t.Errorf("answer = %v", body["answer"])
	}
	if body["session_id"] == "" || body["session_id"] == nil {
		t.Error("expected a minted session id")
	}
	if _, hasDebug := body["debug"]; hasDebug {
		t.Error("debug detail attached without debug mode")
	}

	// A fresh session id means one session and one message recorded.
	stats, err := store.GetStats(context.Background(), botID)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if len(stats) != 1 || stats[0].DailySessions != 1 || stats[0].MessageCount != 1 {
		t.Errorf("stats = %+v, want 1 session / 1 message", stats)
	}
}

func TestHandleChat_ExistingSession(t *testing.T) {
	srv, store := newTestServer(t)
	botID := seedCafeBot(t, store)

	rec := doRequest(t, srv, http.MethodPost, "/chat", map[string]string{
		"bot":        "cafe",
		"message":    "hours?",
		"session_id": "abc-123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["session_id"] != "abc-123" {
		t.Errorf("session id = %v, want abc-123", body["session_id"])
	}

	stats, err := store.GetStats(context.Background(), botID)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if len(stats) != 1 || stats[0].DailySessions != 0 || stats[0].MessageCount != 1 {
		t.Errorf("stats = %+v, want 0 sessions / 1 message", stats)
	}
}

func TestHandleChat_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []map[string]string{
		{},
		{"bot": "cafe"},
		{"message": "hello"},
	} {
		rec := doRequest(t, srv, http.MethodPost, "/chat", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHandleChat_UnknownBot(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/chat", map[string]string{
		"bot":     "ghost",
		"message": "hello",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["matched"] != false {
		t.Error("unknown bot should not match")
	}
	if body["answer"] != match.BotNotFoundAnswer {
		t.Errorf("answer = %v, want %q", body["answer"], match.BotNotFoundAnswer)
	}
}

func TestHandleCreateBot(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/bots", map[string]interface{}{
		"slug": "new-bot",
		"name": "New Bot",
		"pairs": []map[string]interface{}{
			{"question": "Hi?", "answer": "Hello!", "keywords": "hi,hello", "priority": 5},
			{"question": "", "answer": "skipped"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["link"] != "/chat/new-bot" {
		t.Errorf("link = %v", body["link"])
	}

	bot, err := store.GetBotBySlug(context.Background(), "new-bot")
	if err != nil {
		t.Fatalf("bot not persisted: %v", err)
	}
	qnas, err := store.ListQnA(context.Background(), bot.ID)
	if err != nil {
		t.Fatalf("failed to list qna: %v", err)
	}
	if len(qnas) != 1 {
		t.Errorf("persisted %d qna pairs, want 1 (blank pair skipped)", len(qnas))
	}
}

func TestHandleCreateBot_Conflict(t *testing.T) {
	srv, store := newTestServer(t)
	seedCafeBot(t, store)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/bots", map[string]string{
		"slug": "cafe",
		"name": "Another Cafe",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandleCreateBot_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/bots", map[string]string{"name": "No Slug"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGetBot(t *testing.T) {
	srv, store := newTestServer(t)
	seedCafeBot(t, store)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/bots/cafe", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["slug"] != "cafe" || body["name"] != "Cafe" {
		t.Errorf("body = %v", body)
	}
	pairs, ok := body["pairs"].([]interface{})
	if !ok || len(pairs) != 1 {
		t.Errorf("pairs = %v, want 1 entry", body["pairs"])
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/bots/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleBotStats(t *testing.T) {
	srv, store := newTestServer(t)
	botID := seedCafeBot(t, store)
	if err := store.IncrementStats(context.Background(), botID, 2, 7); err != nil {
		t.Fatalf("failed to increment stats: %v", err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/bots/cafe/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	stats, ok := body["stats"].([]interface{})
	if !ok || len(stats) != 1 {
		t.Fatalf("stats = %v, want 1 row", body["stats"])
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/bots/ghost/stats", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleAddQnA(t *testing.T) {
	srv, store := newTestServer(t)
	botID := seedCafeBot(t, store)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/bots/cafe/qna", map[string]interface{}{
		"question": "Do you have wifi?",
		"answer":   "Yes.",
		"keywords": "wifi,internet",
		"priority": 8,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	qnas, err := store.ListQnA(context.Background(), botID)
	if err != nil {
		t.Fatalf("failed to list qna: %v", err)
	}
	if len(qnas) != 2 {
		t.Errorf("qna count = %d, want 2", len(qnas))
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/bots/cafe/qna", map[string]string{"question": "no answer"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/bots/ghost/qna", map[string]string{
		"question": "q", "answer": "a",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDeleteQnA(t *testing.T) {
	srv, store := newTestServer(t)
	botID := seedCafeBot(t, store)
	qnas, err := store.ListQnA(context.Background(), botID)
	if err != nil || len(qnas) != 1 {
		t.Fatalf("setup failed: %v", err)
	}

	qnaPath := "/api/v1/qna/" + strconv.FormatInt(qnas[0].ID, 10)
	rec := doRequest(t, srv, http.MethodDelete, qnaPath, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, qnaPath, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 on second delete", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/qna/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-numeric id", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, store := newTestServer(t)
	seedCafeBot(t, store)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["bots"] != float64(1) || body["qna"] != float64(1) {
		t.Errorf("counts = bots %v, qna %v", body["bots"], body["qna"])
	}
	weights, ok := body["weights"].(map[string]interface{})
	if !ok {
		t.Fatalf("weights = %v", body["weights"])
	}
	if weights["exact_match_bonus"] != float64(40) {
		t.Errorf("exact_match_bonus = %v, want 40", weights["exact_match_bonus"])
	}
	if weights["similarity_threshold"] != 0.55 {
		t.Errorf("similarity_threshold = %v, want 0.55", weights["similarity_threshold"])
	}
}
