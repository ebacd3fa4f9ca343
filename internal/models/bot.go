// Package models defines the core data types shared across RuleBot.
package models

import "time"

// Bot is a single chatbot owning a set of Q&A pairs. It is immutable for
// the duration of a match call.
type Bot struct {
	ID              int64     `json:"id"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	Theme           string    `json:"theme"`
	Visibility      string    `json:"visibility"`
	FallbackMessage string    `json:"fallback_message"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// QnA is one stored question/answer record scoped to a single bot.
// Keywords holds the raw keyword spec string (possibly empty); Priority
// defaults to 1 when not set by the author.
type QnA struct {
	ID        int64     `json:"id"`
	BotID     int64     `json:"bot_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Keywords  string    `json:"keywords,omitempty"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// BotStats is a per-bot, per-day usage counter row.
type BotStats struct {
	BotID         int64  `json:"bot_id"`
	Date          string `json:"date"`
	DailySessions int64  `json:"daily_sessions"`
	MessageCount  int64  `json:"message_count"`
}
