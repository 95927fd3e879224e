package patterns

import (
	"testing"

	"github.com/stretchr/testify/require"

	"leakwatch/pkg/threat"
)

func detectorByKind(t *testing.T, kind string) *Detector {
	t.Helper()
	for i := range detectors {
		if detectors[i].Kind == kind {
			return &detectors[i]
		}
	}
	t.Fatalf("no detector registered for kind %s", kind)
	return nil
}

func TestAPIKeyDetector(t *testing.T) {
	d := detectorByKind(t, KindAPIKey)
	require.Equal(t, threat.LevelCritical, d.Severity)

	matches := d.Match("token is sk1234567890abcdef1234567890abcdef go")
	require.Len(t, matches, 1)
	require.Equal(t, "sk1234567890abcdef1234567890abcdef", matches[0])

	// 31 alphanumeric characters is below the threshold.
	require.Empty(t, d.Match("short1234567890abcdef1234567890"))
}

func TestIPAddressDetector(t *testing.T) {
	d := detectorByKind(t, KindIPAddress)
	require.Equal(t, threat.LevelHigh, d.Severity)

	matches := d.Match("host 10.0.0.5 and fallback 192.168.1.200")
	require.Equal(t, []string{"10.0.0.5", "192.168.1.200"}, matches)

	require.Empty(t, d.Match("version 1.2.3 released"))
}

func TestEmailDetector(t *testing.T) {
	d := detectorByKind(t, KindEmail)
	require.Equal(t, threat.LevelMedium, d.Severity)

	matches := d.Match("contact alice@example.com or bob.smith+dev@corp.co.uk")
	require.Equal(t, []string{"alice@example.com", "bob.smith+dev@corp.co.uk"}, matches)

	require.Empty(t, d.Match("see the @handle on the platform"))
}

func TestCreditCardDetector(t *testing.T) {
	d := detectorByKind(t, KindCreditCard)
	require.Equal(t, threat.LevelCritical, d.Severity)

	cases := []struct {
		name string
		text string
	}{
		{"spaces", "card 4111 1111 1111 1111 was posted"},
		{"hyphens", "card 4111-1111-1111-1111 was posted"},
		{"plain", "card 4111111111111111 was posted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Len(t, d.Match(tc.text), 1)
		})
	}

	require.Empty(t, d.Match("ticket 1234-5678 closed"))
}

func TestDBConnectionDetectorCountsOnce(t *testing.T) {
	d := detectorByKind(t, KindDBConnection)
	require.Equal(t, threat.LevelCritical, d.Severity)

	// Repeated and mixed engine mentions still report a single match.
	matches := d.Match("postgres://u:p@db/prod and a mysql replica and more postgres")
	require.Len(t, matches, 1)

	require.Empty(t, d.Match("our document store is proprietary"))
}

func TestDBConnectionDetectorIsCaseInsensitive(t *testing.T) {
	d := detectorByKind(t, KindDBConnection)
	require.Len(t, d.Match("Migrated the MongoDB cluster yesterday"), 1)
}

func TestDefaultLibrary(t *testing.T) {
	lib := DefaultLibrary()

	require.Contains(t, lib.Keywords(), "password")
	require.Contains(t, lib.Keywords(), "api key")
	require.Len(t, lib.Detectors(), 5)
	require.NotEmpty(t, lib.CategoryRules())
}
