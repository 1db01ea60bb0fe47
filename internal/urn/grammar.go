// Package urn defines the family-specific URN grammars used across the
// traceability graph, plus constructors and parsers for each family.
//
// A URN is an opaque string of the form family:segment(:segment)*(.variant)?.
// The family prefix selects the grammar; each grammar is a single anchored
// regular expression kept in one data-driven table so adding a family is a
// data change.
package urn

import (
	"regexp"
	"sort"
	"strings"
)

// Family names recognized by the grammar table.
const (
	FamilyWagon     = "wagon"
	FamilyFeature   = "feature"
	FamilyWMBT      = "wmbt"
	FamilyAcc       = "acc"
	FamilyComponent = "component"
	FamilyContract  = "contract"
	FamilyTelemetry = "telemetry"
	FamilyTrain     = "train"
	FamilyMigration = "migration"
	FamilyTable     = "table"
	FamilyTest      = "test"
	FamilyPlan      = "plan"
	FamilyEndpoint  = "endpoint"
	FamilyTopic     = "topic"
	FamilyTeam      = "team"
)

const harnessAlternation = "UNIT|HTTP|EVENT|WS|E2E|A11Y|VIS|METRIC|JOB|DB|SEC|LOAD|SCRIPT|WIDGET|GOLDEN|BLOC|INTEGRATION|RLS|EDGE|REALTIME|STORAGE"

var patterns = map[string]*regexp.Regexp{
	// Identities
	FamilyWagon:     regexp.MustCompile(`^wagon:[a-z][a-z0-9-]*$`),
	FamilyFeature:   regexp.MustCompile(`^feature:[a-z][a-z0-9-]*:[a-z][a-z0-9-]*$`),
	FamilyComponent: regexp.MustCompile(`^component:[a-z][a-z0-9-]*:[a-z][a-z0-9-]*:[a-zA-Z0-9.]+:(frontend|backend|fe|be):(presentation|application|domain|integration|controller|usecase|repository|assembly)$`),

	// Artifacts (colon hierarchy with optional dot variant)
	FamilyPlan:      regexp.MustCompile(`^plan:[a-z0-9]+(-[a-z0-9]+)*(:[a-z0-9]+(-[a-z0-9]+)*)*(\.[a-z0-9-]+)?$`),
	FamilyContract:  regexp.MustCompile(`^contract:[a-z][a-z0-9-]*(:[a-z][a-z0-9-]+)+(\.[a-z][a-z0-9-]+)?$`),
	FamilyTelemetry: regexp.MustCompile(`^telemetry:[a-z][a-z0-9-]*(:[a-z][a-z0-9-]+)*(\.[a-z][a-z0-9-]+)?$`),
	FamilyTest: regexp.MustCompile(`^test:(` +
		// Acceptance form: test:{wagon}:{feature}:{WMBT}-{HARNESS}-{NNN}-{slug}
		`[a-z][a-z0-9-]*:[a-z][a-z0-9-]*:[A-Z]\d{3}-(?:` + harnessAlternation + `)-\d{3}-[a-z0-9][a-z0-9-]*` +
		`|` +
		// Journey form: test:train:{train-id}:{HARNESS}-{NNN}-{slug}
		`train:\d{4}-[a-z0-9][a-z0-9-]*:(?:` + harnessAlternation + `)-\d{3}-[a-z0-9][a-z0-9-]*` +
		`|` +
		// Legacy dotted form, kept for migration only
		`[a-z0-9]+(?:-[a-z0-9]+)*(?::[a-z0-9]+(?:-[a-z0-9]+)*)*(?:\.[a-z0-9-]+)?` +
		`)$`),

	// Work items
	FamilyWMBT: regexp.MustCompile(`^wmbt:[a-z][a-z0-9-]*:[DLPCEMYRK][0-9]{3}$`),
	FamilyAcc:  regexp.MustCompile(`^acc:[a-z][a-z0-9-]*:[DLPCEMYRK][0-9]{3}-(` + harnessAlternation + `)-[0-9]{3}(?:-[a-z0-9-]+)?$`),

	// Resources
	FamilyEndpoint: regexp.MustCompile(`^endpoint:[a-z0-9-]+\.(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\.[a-z0-9-/]+$`),
	FamilyTopic:    regexp.MustCompile(`^topic:[a-z0-9-]+$`),
	FamilyTable:    regexp.MustCompile(`^table:[a-z0-9_]+$`),
	FamilyTeam:     regexp.MustCompile(`^team:[a-z0-9-]+$`),

	// Release management
	FamilyTrain:     regexp.MustCompile(`^train:\d{4}-[a-z0-9][a-z0-9-]*$`),
	FamilyMigration: regexp.MustCompile(`^migration:\d{14}_[a-z][a-z0-9_]*$`),
}

// Validate reports whether urn matches the grammar of the given family.
// Unknown families never validate.
func Validate(urn, family string) bool {
	re, ok := patterns[family]
	if !ok {
		return false
	}
	return re.MatchString(urn)
}

// Pattern returns the grammar source for a family, or "" if unknown.
func Pattern(family string) string {
	re, ok := patterns[family]
	if !ok {
		return ""
	}
	return re.String()
}

// FamilyOf extracts the family prefix from a URN. Returns "" when the URN
// has no colon and therefore no family.
func FamilyOf(urn string) string {
	idx := strings.IndexByte(urn, ':')
	if idx <= 0 {
		return ""
	}
	return urn[:idx]
}

// KnownFamily reports whether the grammar table has an entry for family.
func KnownFamily(family string) bool {
	_, ok := patterns[family]
	return ok
}

// Families returns all grammar families in sorted order.
func Families() []string {
	out := make([]string, 0, len(patterns))
	for f := range patterns {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
