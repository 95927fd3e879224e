// Package patterns holds the static detection rules used by the content
// analyzer: the monitored keyword list, the structural detectors, and the
// category inference table. Everything here is immutable data plus pure
// matching functions; the package carries no state and is safe for
// concurrent use.
package patterns

import (
	"regexp"
	"strings"

	"leakwatch/pkg/threat"
)

// Detector kinds. The kind strings appear in detection results and
// reports, so they are part of the output contract.
const (
	KindAPIKey       = "API_KEY"
	KindIPAddress    = "IP_ADDRESS"
	KindEmail        = "EMAIL"
	KindCreditCard   = "CREDIT_CARD"
	KindDBConnection = "DB_CONNECTION"
)

// Detector is one structural pattern rule: a kind, a fixed severity and a
// pure matcher from text to the list of matched substrings.
type Detector struct {
	Kind     string
	Severity threat.Level
	match    func(text string) []string
}

// Match runs the detector against the text and returns all matched
// substrings. A nil return means no match.
func (d *Detector) Match(text string) []string {
	return d.match(text)
}

var (
	// API-key-like tokens: any alphanumeric run of 32 or more characters.
	apiKeyRegex = regexp.MustCompile(`[A-Za-z0-9]{32,}`)

	// IPv4-shaped addresses: four dot-separated groups of 1-3 digits.
	ipAddressRegex = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)

	// Email addresses: standard local@domain.tld shape.
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Payment-card-like sequences: four groups of four digits with
	// optional space or hyphen separators.
	creditCardRegex = regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)
)

// databaseEngines is the fixed set of datastore engine names whose mention
// in content counts as a connection-string exposure signal.
var databaseEngines = []string{
	"mysql",
	"postgresql",
	"postgres",
	"mongodb",
	"mariadb",
	"oracle",
	"sqlserver",
	"redis",
	"cassandra",
	"elasticsearch",
}

func regexMatcher(re *regexp.Regexp) func(string) []string {
	return func(text string) []string {
		return re.FindAllString(text, -1)
	}
}

// matchDatabaseMention reports at most one match regardless of how many
// times or how many engines the text mentions. Repetition of an engine
// name is not additional evidence of a connection-string leak.
func matchDatabaseMention(text string) []string {
	lower := strings.ToLower(text)
	for _, engine := range databaseEngines {
		if strings.Contains(lower, engine) {
			return []string{engine}
		}
	}
	return nil
}

// detectors is the ordered structural detector set. Order is fixed for
// presentation only; each detector contributes to scoring independently.
var detectors = []Detector{
	{Kind: KindAPIKey, Severity: threat.LevelCritical, match: regexMatcher(apiKeyRegex)},
	{Kind: KindIPAddress, Severity: threat.LevelHigh, match: regexMatcher(ipAddressRegex)},
	{Kind: KindEmail, Severity: threat.LevelMedium, match: regexMatcher(emailRegex)},
	{Kind: KindCreditCard, Severity: threat.LevelCritical, match: regexMatcher(creditCardRegex)},
	{Kind: KindDBConnection, Severity: threat.LevelCritical, match: matchDatabaseMention},
}

// monitoredKeywords is the ordered list of terms checked with a
// case-insensitive containment match.
var monitoredKeywords = []string{
	"password",
	"credentials",
	"api key",
	"apikey",
	"secret",
	"token",
	"database",
	"schema",
	"confidential",
	"internal",
	"employee",
	"staff",
	"customer",
	"salary",
	"financial",
	"source code",
	"repository",
}

// CategoryRule maps a trigger substring to an exposure category label.
// Rules are evaluated uniformly over the lowercased text, so the rule set
// is data rather than branching code.
type CategoryRule struct {
	Trigger  string
	Category string
}

// Exposure category labels.
const (
	CategoryEmployeeInfo  = "Employee Information"
	CategoryAPIKeys       = "API Keys/Secrets"
	CategoryCustomerData  = "Customer Data"
	CategoryDatabase      = "Database Schema"
	CategoryCredentials   = "Credentials"
	CategorySourceCode    = "Source Code"
	CategoryFinancialInfo = "Financial Information"
)

var categoryRules = []CategoryRule{
	{Trigger: "employee", Category: CategoryEmployeeInfo},
	{Trigger: "staff", Category: CategoryEmployeeInfo},
	{Trigger: "api", Category: CategoryAPIKeys},
	{Trigger: "key", Category: CategoryAPIKeys},
	{Trigger: "customer", Category: CategoryCustomerData},
	{Trigger: "database", Category: CategoryDatabase},
	{Trigger: "schema", Category: CategoryDatabase},
	{Trigger: "password", Category: CategoryCredentials},
	{Trigger: "credential", Category: CategoryCredentials},
	{Trigger: "source", Category: CategorySourceCode},
	{Trigger: "code", Category: CategorySourceCode},
	{Trigger: "financial", Category: CategoryFinancialInfo},
	{Trigger: "salary", Category: CategoryFinancialInfo},
}

// Library bundles the rule tables handed to the content analyzer.
type Library struct {
	keywords      []string
	detectors     []Detector
	categoryRules []CategoryRule
}

// DefaultLibrary returns the built-in rule set.
func DefaultLibrary() *Library {
	return &Library{
		keywords:      monitoredKeywords,
		detectors:     detectors,
		categoryRules: categoryRules,
	}
}

// Keywords returns the ordered monitored keyword list.
func (l *Library) Keywords() []string {
	return l.keywords
}

// Detectors returns the ordered structural detector list.
func (l *Library) Detectors() []Detector {
	return l.detectors
}

// CategoryRules returns the category inference table.
func (l *Library) CategoryRules() []CategoryRule {
	return l.categoryRules
}
