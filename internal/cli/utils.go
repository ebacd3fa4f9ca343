// Package cli provides CLI output utilities for RuleBot.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/rulebot/internal/models"
	"github.com/hyperjump/rulebot/pkg/utils"
)

// OutputFormat is the format for match result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteMatchResult writes a match result to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteMatchResult(w io.Writer, result *models.MatchResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeMatchResultText(w, result)
		return nil
	}
}

func writeMatchResultText(w io.Writer, result *models.MatchResult) {
	fmt.Fprintln(w, result.Answer)
	if result.Matched {
		fmt.Fprintf(w, "  [matched %q, confidence %d]\n", utils.Truncate(result.Question, 70), result.Confidence)
	} else {
		fmt.Fprintf(w, "  [no match, confidence %d]\n", result.Confidence)
	}
	if result.Debug != nil {
		fmt.Fprintf(w, "  [via] exact=%t keywords=%v regex=%v ratio=%.3f priority=%d\n",
			result.Debug.Exact, result.Debug.MatchedKeywords, result.Debug.MatchedRegex,
			result.Debug.Ratio, result.Debug.Priority)
	}
}
