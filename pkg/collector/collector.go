// Package collector is the boundary to the upstream content-retrieval
// collaborators. It pulls raw text items from pluggable sources with
// per-source failure isolation and enriches detection results into
// threat records for the scoring pipeline.
package collector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leakwatch/pkg/analyzer"
	"leakwatch/pkg/errors"
	"leakwatch/pkg/threat"
)

// ContentItem is one raw text item from an upstream source. PostedAt is
// optional; a zero time means the source supplied no timestamp.
type ContentItem struct {
	Platform   string    `json:"platform"`
	Author     string    `json:"author"`
	Engagement int       `json:"engagement"`
	Text       string    `json:"text"`
	PostedAt   time.Time `json:"posted_at,omitempty"`
}

// Source supplies raw content items from one upstream platform.
type Source interface {
	// Name returns the source name, used for logging and error reporting.
	Name() string

	// Fetch retrieves the currently available content items.
	Fetch(ctx context.Context) ([]ContentItem, error)
}

// SourceStatus records the outcome of fetching one source. A failed
// source carries its error and a zero item count; it is excluded from
// aggregate denominators downstream.
type SourceStatus struct {
	Source string `json:"source"`
	Items  int    `json:"items"`
	Error  string `json:"error,omitempty"`
}

// Batch is the outcome of one collection run: the items that were
// retrieved plus the per-source statuses, including failures.
type Batch struct {
	Items    []ContentItem  `json:"items"`
	Statuses []SourceStatus `json:"statuses"`
}

// Failed returns the statuses of sources whose fetch errored.
func (b *Batch) Failed() []SourceStatus {
	var failed []SourceStatus
	for _, s := range b.Statuses {
		if s.Error != "" {
			failed = append(failed, s)
		}
	}
	return failed
}

// Manager fans collection out over the registered sources and builds
// threat records from whatever content was obtained.
type Manager struct {
	logger   *logrus.Entry
	sources  []Source
	analyzer *analyzer.Analyzer
}

// NewManager creates a collection manager over the given sources.
func NewManager(logger *logrus.Logger, an *analyzer.Analyzer, sources ...Source) *Manager {
	return &Manager{
		logger:   logger.WithField("component", "collector"),
		sources:  sources,
		analyzer: an,
	}
}

// Collect fetches every source in order. A failure on one source is
// recorded in its status and never aborts the rest of the batch.
func (m *Manager) Collect(ctx context.Context) Batch {
	batch := Batch{}

	for _, source := range m.sources {
		items, err := source.Fetch(ctx)
		if err != nil {
			wrapped := errors.NewSourceFailure(source.Name(), err)
			m.logger.WithError(wrapped).WithField("source", source.Name()).
				Warn("Source fetch failed, continuing with remaining sources")
			batch.Statuses = append(batch.Statuses, SourceStatus{
				Source: source.Name(),
				Error:  wrapped.Error(),
			})
			continue
		}

		batch.Items = append(batch.Items, items...)
		batch.Statuses = append(batch.Statuses, SourceStatus{
			Source: source.Name(),
			Items:  len(items),
		})
	}

	m.logger.WithFields(logrus.Fields{
		"sources": len(m.sources),
		"items":   len(batch.Items),
		"failed":  len(batch.Failed()),
	}).Info("Collection completed")

	return batch
}

// BuildThreats analyzes every item and enriches the ones with findings
// into threat records. Items with no detections are dropped; missing
// optional fields are tolerated as absent.
func (m *Manager) BuildThreats(items []ContentItem) []threat.Threat {
	var threats []threat.Threat
	for _, item := range items {
		result := m.analyzer.Analyze(item.Text)
		if !result.HasFindings() {
			continue
		}

		threats = append(threats, threat.Threat{
			ID:         uuid.NewString(),
			Platform:   item.Platform,
			Username:   item.Author,
			Content:    item.Text,
			Engagement: item.Engagement,
			RiskLevel:  result.RiskLevel,
			DataTypes:  result.Categories,
			DetectedAt: item.PostedAt,
		})
	}

	m.logger.WithFields(logrus.Fields{
		"items":   len(items),
		"threats": len(threats),
	}).Info("Threat enrichment completed")

	return threats
}
