// Package storage defines the persistence interface for bots, Q&A pairs,
// and usage stats.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/rulebot/internal/models"
)

// ErrNotFound is returned when a bot or Q&A row does not exist.
var ErrNotFound = errors.New("not found")

// ErrExists is returned when creating a bot whose slug is already taken.
var ErrExists = errors.New("already exists")

// Storage defines bot and Q&A persistence operations.
type Storage interface {
	// Bot operations
	CreateBot(ctx context.Context, bot *models.Bot) (int64, error)
	GetBotBySlug(ctx context.Context, slug string) (*models.Bot, error)
	GetBotByID(ctx context.Context, id int64) (*models.Bot, error)
	UpdateBotFallback(ctx context.Context, id int64, fallback string) error

	// Q&A operations. ListQnA returns rows ordered by priority DESC then
	// id ASC; the match engine's tie-breaking depends on this ordering.
	CreateQnA(ctx context.Context, qna *models.QnA) (int64, error)
	ListQnA(ctx context.Context, botID int64) ([]*models.QnA, error)
	DeleteQnA(ctx context.Context, id int64) error

	// Stats
	IncrementStats(ctx context.Context, botID int64, sessions, messages int64) error
	GetStats(ctx context.Context, botID int64) ([]*models.BotStats, error)
	CountBots(ctx context.Context) (int64, error)
	CountQnA(ctx context.Context) (int64, error)

	Close() error
}
