package collector

import (
	"context"
	"time"
)

// StaticSource serves a fixed set of content items. It stands in for the
// real retrieval collaborators, which are external to this core, and
// doubles as a test fixture.
type StaticSource struct {
	name  string
	items []ContentItem
}

// NewStaticSource creates a fixed-content source.
func NewStaticSource(name string, items []ContentItem) *StaticSource {
	return &StaticSource{name: name, items: items}
}

// Name implements Source.
func (s *StaticSource) Name() string {
	return s.name
}

// Fetch implements Source. It honors context cancellation but otherwise
// always succeeds.
func (s *StaticSource) Fetch(ctx context.Context) ([]ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := make([]ContentItem, len(s.items))
	copy(items, s.items)
	return items, nil
}

// SampleSources returns the built-in demonstration sources used when no
// real retrieval layer is wired in.
func SampleSources() []Source {
	now := time.Now().UTC()

	return []Source{
		NewStaticSource("reddit", []ContentItem{
			{
				Platform:   "reddit",
				Author:     "throwaway_dev42",
				Engagement: 1250,
				Text:       "Our database schema diagram got shared in a public channel, full customer table layout visible",
				PostedAt:   now.Add(-26 * time.Hour),
			},
			{
				Platform:   "reddit",
				Author:     "infosec_anon",
				Engagement: 311,
				Text:       "Found a paste with internal employee salary spreadsheets from a fintech startup",
				PostedAt:   now.Add(-50 * time.Hour),
			},
		}),
		NewStaticSource("github", []ContentItem{
			{
				Platform:   "github",
				Author:     "throwaway_dev42",
				Engagement: 87,
				Text:       "Committed config with password and api key sk9f2LQ8vNwRtY5uZbXcJdK3mH6pA1eG by accident, rotating now",
				PostedAt:   now.Add(-3 * time.Hour),
			},
			{
				Platform:   "github",
				Author:     "oss-janitor",
				Engagement: 44,
				Text:       "This repository leaks a postgres connection string pointing at 203.0.113.54 with credentials inline",
				PostedAt:   now.Add(-20 * time.Hour),
			},
		}),
		NewStaticSource("pastebin", []ContentItem{
			{
				Platform:   "pastebin",
				Author:     "null",
				Engagement: 2300,
				Text:       "dumping customer records: jane.doe@example.com, card 4111 1111 1111 1111, more to follow",
				PostedAt:   now.Add(-7 * time.Hour),
			},
		}),
		NewStaticSource("twitter", []ContentItem{
			{
				Platform:   "twitter",
				Author:     "gossip_acct",
				Engagement: 5400,
				Text:       "apparently their whole source code mirror is public, staff emails included",
				PostedAt:   now.Add(-30 * time.Hour),
			},
			{
				Platform: "twitter",
				Author:   "bot_relay",
				Text:     "nothing to see here, just weather pictures",
			},
		}),
	}
}
