// Package report composes detection, scoring and correlation output into
// a timeframe-scoped threat report and keeps generated reports in a
// bounded, time-evicted cache.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leakwatch/pkg/correlation"
	"leakwatch/pkg/scoring"
	"leakwatch/pkg/threat"
)

// Timeline trend values.
const (
	TrendUp     = "UP"
	TrendDown   = "DOWN"
	TrendStable = "STABLE"
)

const dayFormat = "2006-01-02"

// Summary holds the batch-wide counts.
type Summary struct {
	TotalThreats      int            `json:"total_threats"`
	ByRiskLevel       map[string]int `json:"by_risk_level"`
	DistinctPlatforms int            `json:"distinct_platforms"`
	DistinctDataTypes int            `json:"distinct_data_types"`
	AverageScore      float64        `json:"average_score"`
}

// DataTypePattern is the per-data-type slice of the pattern breakdown.
type DataTypePattern struct {
	Count     int      `json:"count"`
	Platforms []string `json:"platforms"`
}

// PatternBreakdown groups the batch along the reporting dimensions.
// Hour and day-of-week buckets only count threats carrying a timestamp.
type PatternBreakdown struct {
	ByPlatform  map[string]int             `json:"by_platform"`
	ByDataType  map[string]DataTypePattern `json:"by_data_type"`
	ByRiskLevel map[string]int             `json:"by_risk_level"`
	ByHour      map[int]int                `json:"by_hour"`
	ByDayOfWeek map[string]int             `json:"by_day_of_week"`
}

// RiskAssessment couples the scoring verdict with the correlation list
// so the serialized report carries both.
type RiskAssessment struct {
	scoring.Assessment
	Correlations []correlation.Correlation `json:"correlations"`
}

// Recommendations is the fixed three-tier action checklist. Content is
// static and independent of the batch.
type Recommendations struct {
	Immediate  []string `json:"immediate"`
	ShortTerm  []string `json:"short_term"`
	MediumTerm []string `json:"medium_term"`
}

// Timeline is the per-day incident view.
type Timeline struct {
	Daily   map[string]int `json:"daily"`
	Trend   string         `json:"trend"`
	PeakDay string         `json:"peak_day,omitempty"`
}

// Metrics holds the derived report metrics.
type Metrics struct {
	ThreatDensity      float64  `json:"threat_density"`
	PlatformDispersion string   `json:"platform_dispersion"`
	Timeline           Timeline `json:"timeline"`
}

// Report is the generated, cached, point-in-time analysis over a threat
// batch. It is plain structured data, never mutated after creation, and
// round-trips through JSON without loss.
type Report struct {
	ReportID        string                `json:"report_id"`
	GeneratedAt     time.Time             `json:"generated_at"`
	Timeframe       string                `json:"timeframe"`
	Summary         Summary               `json:"summary"`
	TopThreats      []threat.ScoredThreat `json:"top_threats"`
	Patterns        PatternBreakdown      `json:"patterns"`
	RiskAssessment  RiskAssessment        `json:"risk_assessment"`
	Recommendations Recommendations       `json:"recommendations"`
	Metrics         Metrics               `json:"metrics"`
}

// Generator builds reports from threat batches.
type Generator struct {
	logger     *logrus.Entry
	engine     *scoring.Engine
	correlator *correlation.Analyzer
	cache      *Cache
	topLimit   int
}

// NewGenerator creates a report generator. topLimit bounds the top-threat
// list; values below 1 fall back to the default of 10.
func NewGenerator(logger *logrus.Logger, engine *scoring.Engine, correlator *correlation.Analyzer, cache *Cache, topLimit int) *Generator {
	if topLimit < 1 {
		topLimit = 10
	}
	return &Generator{
		logger:     logger.WithField("component", "report"),
		engine:     engine,
		correlator: correlator,
		cache:      cache,
		topLimit:   topLimit,
	}
}

// Cache exposes the generator's report cache.
func (g *Generator) Cache() *Cache {
	return g.cache
}

// Generate scores and correlates the batch, assembles the report, stores
// it in the cache under a fresh identifier and returns it. An empty
// batch produces a zero-valued report rather than NaN aggregates.
func (g *Generator) Generate(threats []threat.Threat, timeframe string) *Report {
	r := &Report{
		ReportID:        uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Timeframe:       timeframe,
		Recommendations: defaultRecommendations(),
	}

	scored := g.engine.ScoreBatch(threats)

	r.Summary = buildSummary(scored)
	r.TopThreats = topThreats(scored, g.topLimit)
	r.Patterns = buildBreakdown(scored)
	r.RiskAssessment = RiskAssessment{
		Assessment:   g.engine.Assess(scored),
		Correlations: g.correlator.Correlate(threats),
	}
	r.Metrics = buildMetrics(scored, r.RiskAssessment.PlatformDispersion)

	g.cache.Put(r)

	g.logger.WithFields(logrus.Fields{
		"report_id":    r.ReportID,
		"timeframe":    timeframe,
		"threats":      len(threats),
		"overall_risk": r.RiskAssessment.OverallRisk,
	}).Info("Report generated")

	return r
}

func buildSummary(scored []threat.ScoredThreat) Summary {
	summary := Summary{
		TotalThreats: len(scored),
		ByRiskLevel:  make(map[string]int, 4),
	}
	for _, level := range threat.Levels() {
		summary.ByRiskLevel[level.String()] = 0
	}

	platforms := make(map[string]bool)
	dataTypes := make(map[string]bool)
	total := 0
	for _, st := range scored {
		summary.ByRiskLevel[st.RiskLevel.String()]++
		if st.Platform != "" {
			platforms[st.Platform] = true
		}
		for _, dt := range st.DataTypes {
			dataTypes[dt] = true
		}
		total += st.Score
	}
	summary.DistinctPlatforms = len(platforms)
	summary.DistinctDataTypes = len(dataTypes)
	if len(scored) > 0 {
		summary.AverageScore = float64(total) / float64(len(scored))
	}
	return summary
}

// topThreats sorts a copy of the batch by descending score, stable on
// ties, slices to the limit and assigns ranks 1..N.
func topThreats(scored []threat.ScoredThreat, limit int) []threat.ScoredThreat {
	top := make([]threat.ScoredThreat, len(scored))
	copy(top, scored)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})

	if len(top) > limit {
		top = top[:limit]
	}
	for i := range top {
		top[i].Rank = i + 1
	}
	return top
}

func buildBreakdown(scored []threat.ScoredThreat) PatternBreakdown {
	breakdown := PatternBreakdown{
		ByPlatform:  make(map[string]int),
		ByDataType:  make(map[string]DataTypePattern),
		ByRiskLevel: make(map[string]int),
		ByHour:      make(map[int]int),
		ByDayOfWeek: make(map[string]int),
	}

	for _, st := range scored {
		if st.Platform != "" {
			breakdown.ByPlatform[st.Platform]++
		}
		breakdown.ByRiskLevel[st.RiskLevel.String()]++

		for _, dt := range st.DataTypes {
			entry := breakdown.ByDataType[dt]
			entry.Count++
			if st.Platform != "" && !containsString(entry.Platforms, st.Platform) {
				entry.Platforms = append(entry.Platforms, st.Platform)
			}
			breakdown.ByDataType[dt] = entry
		}

		if st.HasTimestamp() {
			breakdown.ByHour[st.DetectedAt.Hour()]++
			breakdown.ByDayOfWeek[st.DetectedAt.Weekday().String()]++
		}
	}
	return breakdown
}

func buildMetrics(scored []threat.ScoredThreat, dispersion string) Metrics {
	return Metrics{
		ThreatDensity:      float64(len(scored)) / 7.0,
		PlatformDispersion: dispersion,
		Timeline:           buildTimeline(scored),
	}
}

// buildTimeline buckets timestamped threats per day. The trend compares
// the first and last date buckets in chronological order; ties on the
// peak count go to the earliest date encountered.
func buildTimeline(scored []threat.ScoredThreat) Timeline {
	timeline := Timeline{
		Daily: make(map[string]int),
		Trend: TrendStable,
	}

	for _, st := range scored {
		if st.HasTimestamp() {
			timeline.Daily[st.DetectedAt.Format(dayFormat)]++
		}
	}
	if len(timeline.Daily) == 0 {
		return timeline
	}

	days := make([]string, 0, len(timeline.Daily))
	for day := range timeline.Daily {
		days = append(days, day)
	}
	sort.Strings(days)

	first := timeline.Daily[days[0]]
	last := timeline.Daily[days[len(days)-1]]
	switch {
	case len(days) == 1:
		timeline.Trend = TrendStable
	case last > first:
		timeline.Trend = TrendUp
	case last < first:
		timeline.Trend = TrendDown
	}

	peak := 0
	for _, day := range days {
		if timeline.Daily[day] > peak {
			peak = timeline.Daily[day]
			timeline.PeakDay = day
		}
	}
	return timeline
}

func defaultRecommendations() Recommendations {
	return Recommendations{
		Immediate: []string{
			"Revoke and rotate any exposed credentials, tokens and API keys",
			"Request takedown of posts exposing customer or employee data",
			"Notify the security incident response team of critical findings",
		},
		ShortTerm: []string{
			"Audit access logs for the systems referenced in exposed content",
			"Review repository and paste-site activity of repeat actors",
			"Tighten data-handling policy for the affected platforms",
		},
		MediumTerm: []string{
			"Run security-awareness training on public data exposure",
			"Expand monitored keyword coverage based on observed leaks",
			"Schedule recurring exposure reviews across all platforms",
		},
	}
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
