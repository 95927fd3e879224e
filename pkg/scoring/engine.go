// Package scoring computes the fine-grained 0-100 severity score of
// individual threats and the batch-level risk assessment derived from
// those scores.
package scoring

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"leakwatch/pkg/patterns"
	"leakwatch/pkg/threat"
)

// Platform dispersion buckets.
const (
	DispersionLow    = "LOW"
	DispersionMedium = "MEDIUM"
	DispersionHigh   = "HIGH"
)

// Overall risk verdicts.
const (
	VerdictCritical = "CRITICAL"
	VerdictHigh     = "HIGH"
	VerdictMedium   = "MEDIUM"
	VerdictLow      = "LOW"
)

// Config is the tunable scoring surface. All tables are supplied
// externally so they can be recalibrated without touching the algorithm.
type Config struct {
	// BaseScores maps a threat's risk level to its additive base score.
	BaseScores map[threat.Level]int

	// PlatformMultipliers maps lowercase platform names to reach factors.
	// Unknown platforms score with a factor of 1.0.
	PlatformMultipliers map[string]float64

	// SensitiveDataTypes lists the data-type labels that earn the flat
	// sensitivity bonus.
	SensitiveDataTypes []string
}

// DefaultConfig returns the built-in scoring tables.
func DefaultConfig() *Config {
	return &Config{
		BaseScores: map[threat.Level]int{
			threat.LevelCritical: 40,
			threat.LevelHigh:     30,
			threat.LevelMedium:   20,
			threat.LevelLow:      10,
		},
		PlatformMultipliers: map[string]float64{
			"forum":     0.8,
			"linkedin":  1.0,
			"facebook":  1.1,
			"instagram": 1.1,
			"reddit":    1.2,
			"twitter":   1.3,
			"github":    1.4,
			"discord":   1.4,
			"telegram":  1.6,
			"pastebin":  1.8,
			"darkweb":   2.0,
		},
		SensitiveDataTypes: []string{
			patterns.CategoryCredentials,
			patterns.CategoryCustomerData,
			patterns.CategoryFinancialInfo,
			patterns.CategoryDatabase,
		},
	}
}

// Engine scores threats. Scoring is pure and order-independent: the
// score of one threat never depends on the rest of the batch.
type Engine struct {
	logger *logrus.Entry
	config *Config
}

// NewEngine creates a scoring engine. A nil config selects the defaults.
func NewEngine(logger *logrus.Logger, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		logger: logger.WithField("component", "scoring"),
		config: config,
	}
}

// Score computes the severity score of a single threat. The result is
// rounded to the nearest integer and clamped to [0,100]; clamping is
// always the final step.
func (e *Engine) Score(t threat.Threat) int {
	base := float64(e.config.BaseScores[t.RiskLevel])

	engagement := float64(t.Engagement) / 1000.0 * 20.0
	if engagement > 20 {
		engagement = 20
	}

	score := (base + engagement) * e.platformMultiplier(t.Platform)

	if e.hasSensitiveData(t.DataTypes) {
		score += 15
	}

	rounded := int(math.Round(score))
	if rounded > 100 {
		rounded = 100
	}
	if rounded < 0 {
		rounded = 0
	}
	return rounded
}

// ScoreBatch scores every threat in the batch, preserving input order.
func (e *Engine) ScoreBatch(threats []threat.Threat) []threat.ScoredThreat {
	scored := make([]threat.ScoredThreat, 0, len(threats))
	for _, t := range threats {
		scored = append(scored, threat.ScoredThreat{
			Threat: t,
			Score:  e.Score(t),
		})
	}
	return scored
}

func (e *Engine) platformMultiplier(platform string) float64 {
	if multiplier, ok := e.config.PlatformMultipliers[strings.ToLower(platform)]; ok {
		return multiplier
	}
	return 1.0
}

func (e *Engine) hasSensitiveData(dataTypes []string) bool {
	for _, dt := range dataTypes {
		for _, sensitive := range e.config.SensitiveDataTypes {
			if dt == sensitive {
				return true
			}
		}
	}
	return false
}

// Assessment is the batch-level risk summary derived from per-item scores.
type Assessment struct {
	OverallRisk        string  `json:"overall_risk"`
	AverageScore       float64 `json:"average_score"`
	MaxScore           int     `json:"max_score"`
	CriticalCount      int     `json:"critical_count"`
	PlatformDispersion string  `json:"platform_dispersion"`
}

// Assess computes the batch aggregates and the overall verdict. An empty
// batch yields a zero-valued LOW assessment; averages never divide by zero.
func (e *Engine) Assess(scored []threat.ScoredThreat) Assessment {
	if len(scored) == 0 {
		return Assessment{
			OverallRisk:        VerdictLow,
			PlatformDispersion: DispersionLow,
		}
	}

	total := 0
	maxScore := 0
	criticalCount := 0
	platformCounts := make(map[string]int)
	for _, st := range scored {
		total += st.Score
		if st.Score > maxScore {
			maxScore = st.Score
		}
		if st.RiskLevel == threat.LevelCritical {
			criticalCount++
		}
		platformCounts[st.Platform]++
	}

	average := float64(total) / float64(len(scored))

	return Assessment{
		OverallRisk:        verdict(average, maxScore, criticalCount),
		AverageScore:       average,
		MaxScore:           maxScore,
		CriticalCount:      criticalCount,
		PlatformDispersion: DispersionBucket(platformStdDev(platformCounts)),
	}
}

// verdict applies the escalation ladder in fixed order; the first
// matching condition wins.
func verdict(average float64, maxScore, criticalCount int) string {
	switch {
	case maxScore >= 80 || criticalCount >= 5:
		return VerdictCritical
	case average >= 60 || criticalCount >= 2:
		return VerdictHigh
	case average >= 40:
		return VerdictMedium
	default:
		return VerdictLow
	}
}

// platformStdDev computes the population standard deviation of the
// per-platform item counts.
func platformStdDev(platformCounts map[string]int) float64 {
	if len(platformCounts) == 0 {
		return 0
	}

	sum := 0
	for _, count := range platformCounts {
		sum += count
	}
	mean := float64(sum) / float64(len(platformCounts))

	variance := 0.0
	for _, count := range platformCounts {
		delta := float64(count) - mean
		variance += delta * delta
	}
	variance /= float64(len(platformCounts))

	return math.Sqrt(variance)
}

// DispersionBucket maps a standard deviation to its coarse bucket.
func DispersionBucket(sigma float64) string {
	switch {
	case sigma > 5:
		return DispersionHigh
	case sigma > 2:
		return DispersionMedium
	default:
		return DispersionLow
	}
}
