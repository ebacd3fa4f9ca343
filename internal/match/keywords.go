package match

import (
	"regexp"
	"strings"
)

// Matcher is the compiled form of a keyword spec: an ordered set of plain
// phrases and an ordered set of regex patterns. It is produced once per
// spec string and is safe for concurrent use.
//
// Spec grammar (comma separated, tokens trimmed, empty tokens skipped):
//
//	re:^hours$      regex, compiled case-insensitively
//	/open|closed/i  regex between slashes; a trailing "i" enables
//	                case-insensitivity, other flag letters are ignored
//	free wifi       plain phrase, stored lowercased
type Matcher struct {
	phrases  []phraseMatcher
	patterns []patternMatcher
}

// phraseMatcher is a plain phrase. word is non-nil for single-token
// phrases, which must match on word boundaries; multi-token phrases match
// by substring containment.
type phraseMatcher struct {
	text string
	word *regexp.Regexp
}

// patternMatcher is a compiled regex together with its source pattern,
// kept for reporting which patterns hit.
type patternMatcher struct {
	source string
	re     *regexp.Regexp
}

// ParseKeywordSpec compiles a raw keyword spec string into a Matcher.
// Tokens whose regex fails to compile are dropped from the matcher and
// returned in dropped so callers can surface the typo; scoring proceeds
// with the remaining tokens (documented degradation, not a failure).
// Phrase and pattern order is preserved from the spec for deterministic
// scoring and debug output. An empty spec yields an empty matcher.
func ParseKeywordSpec(spec string) (m *Matcher, dropped []string) {
	m = &Matcher{}
	if spec == "" {
		return m, nil
	}

	for _, raw := range strings.Split(spec, ",") {
		kw := strings.TrimSpace(raw)
		if kw == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(kw, "re:"); ok {
			pat := strings.TrimSpace(rest)
			re, err := regexp.Compile("(?i)" + pat)
			if err != nil {
				dropped = append(dropped, kw)
				continue
			}
			m.patterns = append(m.patterns, patternMatcher{source: pat, re: re})
			continue
		}

		if len(kw) >= 2 && kw[0] == '/' && strings.Count(kw, "/") >= 2 {
			last := strings.LastIndex(kw, "/")
			pat := kw[1:last]
			flags := strings.ToLower(kw[last+1:])
			expr := pat
			if strings.Contains(flags, "i") {
				expr = "(?i)" + pat
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				dropped = append(dropped, kw)
				continue
			}
			m.patterns = append(m.patterns, patternMatcher{source: pat, re: re})
			continue
		}

		phrase := strings.ToLower(kw)
		pm := phraseMatcher{text: phrase}
		if len(strings.Fields(phrase)) == 1 {
			// Whole-word match so "cat" does not hit inside "category".
			pm.word = regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
		}
		m.phrases = append(m.phrases, pm)
	}

	return m, dropped
}

// MatchPhrases returns the phrases that appear in text, in spec order.
// text is expected to be normalized. Single-token phrases match as whole
// words; multi-token phrases match as contiguous substrings.
func (m *Matcher) MatchPhrases(text string) []string {
	var hits []string
	for _, p := range m.phrases {
		if p.word != nil {
			if p.word.MatchString(text) {
				hits = append(hits, p.text)
			}
		} else if strings.Contains(text, p.text) {
			hits = append(hits, p.text)
		}
	}
	return hits
}

// MatchPatterns returns the source patterns whose regex finds a match
// anywhere in text, in spec order. Any number of matches counts once.
func (m *Matcher) MatchPatterns(text string) []string {
	var hits []string
	for _, p := range m.patterns {
		if p.re.MatchString(text) {
			hits = append(hits, p.source)
		}
	}
	return hits
}

// Empty reports whether the matcher has no phrases and no patterns.
func (m *Matcher) Empty() bool {
	return len(m.phrases) == 0 && len(m.patterns) == 0
}
