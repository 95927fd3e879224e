package threat

import (
	"encoding/json"
	"strings"
	"time"
)

// Level is the coarse severity bucket assigned to a detection or threat.
// Levels carry an explicit total order so comparisons and max-severity
// logic never fall back to string matching.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelCritical
)

// String returns the canonical lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	default:
		return "low"
	}
}

// ParseLevel converts a level name to a Level. Unknown or empty values
// map to LevelLow rather than erroring, so malformed upstream records
// degrade instead of failing the batch.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return LevelCritical
	case "high":
		return LevelHigh
	case "medium":
		return LevelMedium
	default:
		return LevelLow
	}
}

// Levels lists all levels from most to least severe. Report summaries
// iterate this so every bucket appears even when its count is zero.
func Levels() []Level {
	return []Level{LevelCritical, LevelHigh, LevelMedium, LevelLow}
}

// MarshalJSON encodes the level as its string name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level from its string name.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseLevel(s)
	return nil
}

// Threat is one observed exposure incident: a detection result enriched
// with platform and actor context. Threats are built at the collection
// boundary and consumed read-only by the scoring, correlation and
// reporting components.
type Threat struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	Username   string    `json:"username"`
	Content    string    `json:"content,omitempty"`
	Engagement int       `json:"engagement"`
	RiskLevel  Level     `json:"risk_level"`
	DataTypes  []string  `json:"data_types"`
	DetectedAt time.Time `json:"detected_at,omitempty"`
}

// HasTimestamp reports whether the threat carries a detection timestamp.
// The timestamp is optional on the input contract; a zero time means absent.
func (t *Threat) HasTimestamp() bool {
	return !t.DetectedAt.IsZero()
}

// HasDataType reports whether the threat carries the given data-type label.
func (t *Threat) HasDataType(label string) bool {
	for _, dt := range t.DataTypes {
		if dt == label {
			return true
		}
	}
	return false
}

// ScoredThreat is a threat with its computed 0-100 severity score.
// Rank is report-local: it is assigned only when the threat lands on a
// top-N list and is zero otherwise.
type ScoredThreat struct {
	Threat
	Score int `json:"threat_score"`
	Rank  int `json:"rank,omitempty"`
}
