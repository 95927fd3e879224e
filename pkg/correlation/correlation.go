// Package correlation detects relationships across a batch of threats:
// the same sensitive-data category surfacing on multiple platforms, and
// the same actor appearing in multiple incidents.
package correlation

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"leakwatch/pkg/threat"
)

// Type identifies the correlation rule that produced an entry.
type Type string

const (
	TypeMultiPlatformExposure Type = "MULTI_PLATFORM_EXPOSURE"
	TypeRepeatOffender        Type = "REPEAT_OFFENDER"
)

// Correlation is a derived relationship linking two or more threats.
// Correlations are recomputed per report and never persisted.
type Correlation struct {
	Type        Type     `json:"type"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	DataType    string   `json:"data_type,omitempty"`
	Username    string   `json:"username,omitempty"`
	Platforms   []string `json:"platforms"`
	Count       int      `json:"count"`
}

// Analyzer runs the correlation rules. Both rules are pure batch
// transforms; a single threat can contribute to several correlations.
type Analyzer struct {
	logger *logrus.Entry
}

// NewAnalyzer creates a correlation analyzer.
func NewAnalyzer(logger *logrus.Logger) *Analyzer {
	return &Analyzer{
		logger: logger.WithField("component", "correlation"),
	}
}

// Correlate evaluates both rules over the batch. Multi-platform entries
// come before repeat-offender entries; within each rule the input
// iteration order is preserved.
func (a *Analyzer) Correlate(threats []threat.Threat) []Correlation {
	correlations := a.multiPlatformExposures(threats)
	correlations = append(correlations, a.repeatOffenders(threats)...)

	if len(correlations) > 0 {
		a.logger.WithFields(logrus.Fields{
			"threats":      len(threats),
			"correlations": len(correlations),
		}).Debug("Correlation pass completed")
	}
	return correlations
}

// multiPlatformExposures groups threats by data-type label and reports
// any label seen on more than one threat across more than one platform.
func (a *Analyzer) multiPlatformExposures(threats []threat.Threat) []Correlation {
	groups := make(map[string][]threat.Threat)
	var order []string
	for _, t := range threats {
		for _, dataType := range t.DataTypes {
			if dataType == "" {
				continue
			}
			if _, seen := groups[dataType]; !seen {
				order = append(order, dataType)
			}
			groups[dataType] = append(groups[dataType], t)
		}
	}

	var correlations []Correlation
	for _, dataType := range order {
		members := groups[dataType]
		platforms := distinctPlatforms(members)
		if len(members) < 2 || len(platforms) < 2 {
			continue
		}
		correlations = append(correlations, Correlation{
			Type:     TypeMultiPlatformExposure,
			Severity: "high",
			Description: fmt.Sprintf("%q exposed across %d platforms in %d incidents",
				dataType, len(platforms), len(members)),
			DataType:  dataType,
			Platforms: platforms,
			Count:     len(members),
		})
	}
	return correlations
}

// repeatOffenders groups threats by acting username (exact, case
// sensitive) and reports any actor tied to more than one incident.
func (a *Analyzer) repeatOffenders(threats []threat.Threat) []Correlation {
	groups := make(map[string][]threat.Threat)
	var order []string
	for _, t := range threats {
		// A missing username is tolerated as absent, not an error.
		if t.Username == "" {
			continue
		}
		if _, seen := groups[t.Username]; !seen {
			order = append(order, t.Username)
		}
		groups[t.Username] = append(groups[t.Username], t)
	}

	var correlations []Correlation
	for _, username := range order {
		members := groups[username]
		if len(members) < 2 {
			continue
		}
		platforms := distinctPlatforms(members)
		correlations = append(correlations, Correlation{
			Type:     TypeRepeatOffender,
			Severity: "high",
			Description: fmt.Sprintf("actor %q involved in %d incidents across %d platforms",
				username, len(members), len(platforms)),
			Username:  username,
			Platforms: platforms,
			Count:     len(members),
		})
	}
	return correlations
}

// distinctPlatforms returns the member platforms deduplicated in
// first-seen order.
func distinctPlatforms(threats []threat.Threat) []string {
	seen := make(map[string]bool)
	var platforms []string
	for _, t := range threats {
		if t.Platform == "" || seen[t.Platform] {
			continue
		}
		seen[t.Platform] = true
		platforms = append(platforms, t.Platform)
	}
	return platforms
}
