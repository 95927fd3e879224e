package scoring

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"leakwatch/pkg/threat"
)

func newTestEngine() *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce log noise in tests
	return NewEngine(logger, nil)
}

func TestScoreBaseByRiskLevel(t *testing.T) {
	e := newTestEngine()

	cases := []struct {
		level threat.Level
		want  int
	}{
		{threat.LevelCritical, 40},
		{threat.LevelHigh, 30},
		{threat.LevelMedium, 20},
		{threat.LevelLow, 10},
	}
	for _, tc := range cases {
		t.Run(tc.level.String(), func(t *testing.T) {
			got := e.Score(threat.Threat{Platform: "linkedin", RiskLevel: tc.level})
			require.Equal(t, tc.want, got)
		})
	}
}

func TestScoreEngagementCapsAtTwenty(t *testing.T) {
	e := newTestEngine()

	base := threat.Threat{Platform: "linkedin", RiskLevel: threat.LevelLow}

	at500 := base
	at500.Engagement = 500
	require.Equal(t, 20, e.Score(at500)) // 10 + 10

	at1000 := base
	at1000.Engagement = 1000
	require.Equal(t, 30, e.Score(at1000)) // 10 + 20

	at50000 := base
	at50000.Engagement = 50000
	require.Equal(t, 30, e.Score(at50000), "engagement beyond 1000 adds nothing")
}

func TestScorePlatformMultiplier(t *testing.T) {
	e := newTestEngine()

	base := threat.Threat{RiskLevel: threat.LevelCritical}

	onDarkweb := base
	onDarkweb.Platform = "darkweb"
	require.Equal(t, 80, e.Score(onDarkweb))

	onForum := base
	onForum.Platform = "forum"
	require.Equal(t, 32, e.Score(onForum))

	// Unknown platforms fall back to a factor of 1.0.
	unknown := base
	unknown.Platform = "myspace"
	require.Equal(t, 40, e.Score(unknown))

	mixedCase := base
	mixedCase.Platform = "GitHub"
	require.Equal(t, 56, e.Score(mixedCase))
}

func TestScoreSensitiveDataBonus(t *testing.T) {
	e := newTestEngine()

	plain := threat.Threat{Platform: "linkedin", RiskLevel: threat.LevelMedium, DataTypes: []string{"Source Code"}}
	require.Equal(t, 20, e.Score(plain))

	sensitive := plain
	sensitive.DataTypes = []string{"Source Code", "Credentials"}
	require.Equal(t, 35, e.Score(sensitive), "sensitive bonus is flat regardless of how many types qualify")

	doubly := plain
	doubly.DataTypes = []string{"Credentials", "Customer Data"}
	require.Equal(t, 35, e.Score(doubly))
}

func TestScoreClampsToHundred(t *testing.T) {
	e := newTestEngine()

	worst := threat.Threat{
		Platform:   "darkweb",
		RiskLevel:  threat.LevelCritical,
		Engagement: 5000,
		DataTypes:  []string{"Credentials"},
	}
	// (40 + 20) * 2.0 + 15 = 135 before the clamp.
	require.Equal(t, 100, e.Score(worst))
}

func TestScoreBatchPreservesOrder(t *testing.T) {
	e := newTestEngine()

	threats := []threat.Threat{
		{ID: "a", Platform: "forum", RiskLevel: threat.LevelLow},
		{ID: "b", Platform: "darkweb", RiskLevel: threat.LevelCritical},
		{ID: "c", Platform: "reddit", RiskLevel: threat.LevelMedium},
	}
	scored := e.ScoreBatch(threats)

	require.Len(t, scored, 3)
	require.Equal(t, "a", scored[0].ID)
	require.Equal(t, "b", scored[1].ID)
	require.Equal(t, "c", scored[2].ID)
	require.Equal(t, e.Score(threats[1]), scored[1].Score)
}

func TestAssessEmptyBatch(t *testing.T) {
	e := newTestEngine()

	assessment := e.Assess(nil)

	require.Equal(t, VerdictLow, assessment.OverallRisk)
	require.Equal(t, 0.0, assessment.AverageScore)
	require.Equal(t, 0, assessment.MaxScore)
	require.Equal(t, 0, assessment.CriticalCount)
	require.Equal(t, DispersionLow, assessment.PlatformDispersion)
}

func TestVerdictLadder(t *testing.T) {
	cases := []struct {
		name          string
		average       float64
		maxScore      int
		criticalCount int
		want          string
	}{
		{"max_score_triggers_critical", 30, 85, 0, VerdictCritical},
		{"critical_count_triggers_critical", 30, 50, 5, VerdictCritical},
		{"average_triggers_high", 65, 70, 0, VerdictHigh},
		{"two_criticals_trigger_high", 30, 70, 2, VerdictHigh},
		{"average_triggers_medium", 45, 70, 0, VerdictMedium},
		{"quiet_batch_is_low", 20, 35, 0, VerdictLow},
		{"critical_rule_wins_over_high", 90, 85, 2, VerdictCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, verdict(tc.average, tc.maxScore, tc.criticalCount))
		})
	}
}

func TestAssessCountsCriticalsByRiskLevel(t *testing.T) {
	e := newTestEngine()

	scored := e.ScoreBatch([]threat.Threat{
		{Platform: "forum", RiskLevel: threat.LevelCritical},
		{Platform: "forum", RiskLevel: threat.LevelCritical},
		{Platform: "forum", RiskLevel: threat.LevelLow},
	})
	assessment := e.Assess(scored)

	require.Equal(t, 2, assessment.CriticalCount)
	require.Equal(t, VerdictHigh, assessment.OverallRisk)
	require.Equal(t, 32, assessment.MaxScore)
}

func TestDispersionBucket(t *testing.T) {
	require.Equal(t, DispersionLow, DispersionBucket(0))
	require.Equal(t, DispersionLow, DispersionBucket(2.0))
	require.Equal(t, DispersionMedium, DispersionBucket(3.5))
	require.Equal(t, DispersionMedium, DispersionBucket(5.0))
	require.Equal(t, DispersionHigh, DispersionBucket(5.1))
}

func TestAssessPlatformDispersion(t *testing.T) {
	e := newTestEngine()

	// One platform with 10 items, another with 2: sigma 4 is MEDIUM.
	var threats []threat.Threat
	for i := 0; i < 10; i++ {
		threats = append(threats, threat.Threat{Platform: "pastebin", RiskLevel: threat.LevelLow})
	}
	threats = append(threats,
		threat.Threat{Platform: "reddit", RiskLevel: threat.LevelLow},
		threat.Threat{Platform: "reddit", RiskLevel: threat.LevelLow},
	)

	assessment := e.Assess(e.ScoreBatch(threats))
	require.Equal(t, DispersionMedium, assessment.PlatformDispersion)
}
