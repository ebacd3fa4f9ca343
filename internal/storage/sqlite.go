// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/hyperjump/rulebot/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS bots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		slug TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		theme TEXT DEFAULT 'light',
		visibility TEXT DEFAULT 'unlisted',
		fallback_message TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS qna (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bot_id INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		keywords TEXT DEFAULT '',
		priority INTEGER DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (bot_id) REFERENCES bots(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_qna_bot_id ON qna(bot_id);

	CREATE TABLE IF NOT EXISTS bot_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bot_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		daily_sessions INTEGER DEFAULT 0,
		message_count INTEGER DEFAULT 0,
		FOREIGN KEY (bot_id) REFERENCES bots(id) ON DELETE CASCADE,
		UNIQUE(bot_id, date)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// DefaultFallbackMessage is used when a bot is created without one.
const DefaultFallbackMessage = "Sorry, I didn't understand that. Can you rephrase your question?"

// CreateBot inserts a bot and returns its id. Returns ErrExists when the
// slug is already taken.
func (s *SQLiteStorage) CreateBot(ctx context.Context, bot *models.Bot) (int64, error) {
	if bot.Theme == "" {
		bot.Theme = "light"
	}
	if bot.Visibility == "" {
		bot.Visibility = "unlisted"
	}
	if bot.FallbackMessage == "" {
		bot.FallbackMessage = DefaultFallbackMessage
	}
	now := time.Now().UTC()
	bot.CreatedAt = now
	bot.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bots (slug, name, theme, visibility, fallback_message, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		bot.Slug, bot.Name, bot.Theme, bot.Visibility, bot.FallbackMessage, bot.CreatedAt, bot.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, fmt.Errorf("bot %q: %w", bot.Slug, ErrExists)
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	bot.ID = id
	return id, nil
}

// GetBotBySlug returns the bot with the given slug, or ErrNotFound.
func (s *SQLiteStorage) GetBotBySlug(ctx context.Context, slug string) (*models.Bot, error) {
	return s.getBot(ctx, `SELECT id, slug, name, theme, visibility, fallback_message, created_at, updated_at
		 FROM bots WHERE slug = ?`, slug)
}

// GetBotByID returns the bot with the given id, or ErrNotFound.
func (s *SQLiteStorage) GetBotByID(ctx context.Context, id int64) (*models.Bot, error) {
	return s.getBot(ctx, `SELECT id, slug, name, theme, visibility, fallback_message, created_at, updated_at
		 FROM bots WHERE id = ?`, id)
}

func (s *SQLiteStorage) getBot(ctx context.Context, query string, arg interface{}) (*models.Bot, error) {
	var bot models.Bot
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&bot.ID, &bot.Slug, &bot.Name, &bot.Theme, &bot.Visibility,
		&bot.FallbackMessage, &bot.CreatedAt, &bot.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bot: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &bot, nil
}

// UpdateBotFallback updates a bot's fallback message.
func (s *SQLiteStorage) UpdateBotFallback(ctx context.Context, id int64, fallback string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bots SET fallback_message = ?, updated_at = ? WHERE id = ?`,
		fallback, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("bot %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateQnA inserts a Q&A pair and returns its id. A zero priority is
// stored as the default priority 1.
func (s *SQLiteStorage) CreateQnA(ctx context.Context, qna *models.QnA) (int64, error) {
	if qna.Priority == 0 {
		qna.Priority = 1
	}
	qna.CreatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO qna (bot_id, question, answer, keywords, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		qna.BotID, qna.Question, qna.Answer, qna.Keywords, qna.Priority, qna.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	qna.ID = id
	return id, nil
}

// ListQnA returns all Q&A pairs for a bot ordered by priority DESC then
// id ASC. The match engine's strict greater-than tie-breaking depends on
// exactly this ordering.
func (s *SQLiteStorage) ListQnA(ctx context.Context, botID int64) ([]*models.QnA, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bot_id, question, answer, keywords, priority, created_at
		 FROM qna WHERE bot_id = ? ORDER BY priority DESC, id ASC`,
		botID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qnas []*models.QnA
	for rows.Next() {
		var q models.QnA
		if err := rows.Scan(&q.ID, &q.BotID, &q.Question, &q.Answer, &q.Keywords, &q.Priority, &q.CreatedAt); err != nil {
			return nil, err
		}
		qnas = append(qnas, &q)
	}
	return qnas, rows.Err()
}

// DeleteQnA removes a Q&A pair by id.
func (s *SQLiteStorage) DeleteQnA(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM qna WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("qna %d: %w", id, ErrNotFound)
	}
	return nil
}

// IncrementStats bumps the daily session and message counters for a bot.
func (s *SQLiteStorage) IncrementStats(ctx context.Context, botID int64, sessions, messages int64) error {
	today := time.Now().UTC().Format("2006-01-02")
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bot_stats (bot_id, date, daily_sessions, message_count)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(bot_id, date) DO UPDATE SET
			daily_sessions = daily_sessions + ?,
			message_count = message_count + ?`,
		botID, today, sessions, messages, sessions, messages,
	)
	return err
}

// GetStats returns all daily stats rows for a bot, newest first.
func (s *SQLiteStorage) GetStats(ctx context.Context, botID int64) ([]*models.BotStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bot_id, date, daily_sessions, message_count
		 FROM bot_stats WHERE bot_id = ? ORDER BY date DESC`,
		botID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*models.BotStats
	for rows.Next() {
		var st models.BotStats
		if err := rows.Scan(&st.BotID, &st.Date, &st.DailySessions, &st.MessageCount); err != nil {
			return nil, err
		}
		stats = append(stats, &st)
	}
	return stats, rows.Err()
}

// CountBots returns the total number of bots.
func (s *SQLiteStorage) CountBots(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bots`).Scan(&count)
	return count, err
}

// CountQnA returns the total number of Q&A pairs.
func (s *SQLiteStorage) CountQnA(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qna`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
