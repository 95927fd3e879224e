// Package analyzer turns one raw text item into a structured detection
// result: keyword hits, structural pattern hits, inferred exposure
// categories, a coarse risk level and a confidence score.
package analyzer

import (
	"strings"

	"github.com/sirupsen/logrus"

	"leakwatch/pkg/patterns"
	"leakwatch/pkg/threat"
)

// maxPatternExamples caps how many matched substrings are retained per
// pattern kind for display. The true match count is kept separately and
// is what scoring consumes.
const maxPatternExamples = 5

// KeywordMatch records one monitored keyword found in the text.
type KeywordMatch struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
	// Contexts holds the non-whitespace spans containing the keyword,
	// for display only.
	Contexts []string `json:"contexts,omitempty"`
}

// PatternMatch records the hits of one structural detector.
type PatternMatch struct {
	Kind     string       `json:"kind"`
	Severity threat.Level `json:"severity"`
	// Count is the true number of matches; Examples is capped at 5.
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// DetectionResult is the per-item analysis output. It is immutable once
// produced and owned by the caller.
type DetectionResult struct {
	Keywords   []KeywordMatch `json:"keywords"`
	Patterns   []PatternMatch `json:"patterns"`
	Categories []string       `json:"categories"`
	RiskLevel  threat.Level   `json:"risk_level"`
	Confidence int            `json:"confidence"`
}

// HasFindings reports whether anything at all matched.
func (r *DetectionResult) HasFindings() bool {
	return len(r.Keywords) > 0 || len(r.Patterns) > 0
}

// Analyzer runs the pattern library against raw text. It holds only
// immutable rule tables and is safe for concurrent use.
type Analyzer struct {
	logger  *logrus.Entry
	library *patterns.Library
}

// New creates an analyzer backed by the given pattern library. A nil
// library selects the built-in rules.
func New(logger *logrus.Logger, library *patterns.Library) *Analyzer {
	if library == nil {
		library = patterns.DefaultLibrary()
	}
	return &Analyzer{
		logger:  logger.WithField("component", "analyzer"),
		library: library,
	}
}

// Analyze inspects a single text item. It is a pure function of the text
// and the static pattern library; no network or storage side effects.
func (a *Analyzer) Analyze(text string) *DetectionResult {
	result := &DetectionResult{
		Keywords:   make([]KeywordMatch, 0),
		Patterns:   make([]PatternMatch, 0),
		Categories: make([]string, 0),
	}
	if text == "" {
		return result
	}

	lower := strings.ToLower(text)

	// Keyword pass: case-insensitive containment, occurrence counts plus
	// the surrounding tokens for display.
	totalKeywordHits := 0
	for _, keyword := range a.library.Keywords() {
		count := strings.Count(lower, keyword)
		if count == 0 {
			continue
		}
		totalKeywordHits += count
		result.Keywords = append(result.Keywords, KeywordMatch{
			Keyword:  keyword,
			Count:    count,
			Contexts: keywordContexts(text, keyword),
		})
	}

	// Pattern pass: every structural detector runs; examples are capped
	// but the count stays exact.
	totalPatternHits := 0
	for _, detector := range a.library.Detectors() {
		matches := detector.Match(text)
		if len(matches) == 0 {
			continue
		}
		totalPatternHits += len(matches)
		examples := matches
		if len(examples) > maxPatternExamples {
			examples = examples[:maxPatternExamples]
		}
		result.Patterns = append(result.Patterns, PatternMatch{
			Kind:     detector.Kind,
			Severity: detector.Severity,
			Count:    len(matches),
			Examples: examples,
		})
	}

	// Category inference: declarative trigger table, set semantics.
	seen := make(map[string]bool)
	for _, rule := range a.library.CategoryRules() {
		if !strings.Contains(lower, rule.Trigger) || seen[rule.Category] {
			continue
		}
		seen[rule.Category] = true
		result.Categories = append(result.Categories, rule.Category)
	}

	result.RiskLevel = deriveRiskLevel(result.Patterns, totalKeywordHits, len(result.Categories))
	result.Confidence = deriveConfidence(totalPatternHits, totalKeywordHits)

	if result.HasFindings() {
		a.logger.WithFields(logrus.Fields{
			"keyword_hits": totalKeywordHits,
			"pattern_hits": totalPatternHits,
			"categories":   len(result.Categories),
			"risk_level":   result.RiskLevel.String(),
			"confidence":   result.Confidence,
		}).Debug("Detection completed")
	}

	return result
}

// keywordContexts collects the whitespace-delimited spans of the original
// text that contain the keyword.
func keywordContexts(text, keyword string) []string {
	var contexts []string
	for _, span := range strings.Fields(text) {
		if strings.Contains(strings.ToLower(span), keyword) {
			contexts = append(contexts, span)
		}
	}
	return contexts
}

// deriveRiskLevel accumulates the detection risk score and buckets it.
// Pattern instances contribute by severity (critical 40, high 25,
// medium 15), keyword occurrences add min(hits*5, 30), and each inferred
// category adds 8. The breakpoints are a fixed discrete classifier.
func deriveRiskLevel(patternHits []PatternMatch, keywordHits, categoryCount int) threat.Level {
	score := 0
	for _, match := range patternHits {
		score += match.Count * severityWeight(match.Severity)
	}

	keywordScore := keywordHits * 5
	if keywordScore > 30 {
		keywordScore = 30
	}
	score += keywordScore
	score += categoryCount * 8

	switch {
	case score >= 70:
		return threat.LevelCritical
	case score >= 50:
		return threat.LevelHigh
	case score >= 30:
		return threat.LevelMedium
	default:
		return threat.LevelLow
	}
}

func severityWeight(severity threat.Level) int {
	switch severity {
	case threat.LevelCritical:
		return 40
	case threat.LevelHigh:
		return 25
	case threat.LevelMedium:
		return 15
	default:
		return 0
	}
}

// deriveConfidence computes the 0-100 confidence score from the total
// pattern and keyword hit counts.
func deriveConfidence(patternHits, keywordHits int) int {
	confidence := patternHits * 15
	if confidence > 50 {
		confidence = 50
	}

	keywordPart := keywordHits * 5
	if keywordPart > 30 {
		keywordPart = 30
	}
	confidence += keywordPart

	if patternHits > 0 {
		confidence += 10
	}
	if keywordHits > 3 {
		confidence += 10
	}

	if confidence > 100 {
		confidence = 100
	}
	return confidence
}
