package diagnosis

import (
	"context"
	"strings"
)

// categoryRule maps a set of trigger substrings to one finding.
type categoryRule struct {
	triggers []string
	finding  Finding
}

func (r categoryRule) matches(text string) bool {
	for _, t := range r.triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Symptom rules in priority order; findings always come out in this order,
// never in input-scan order. Matching is plain substring containment with no
// word-boundary guard ("antiknock" fires the knocking rule via "knock") —
// kept as-is, known false-positive risk.
var symptomRules = []categoryRule{
	{
		triggers: []string{"black smoke"},
		finding: Finding{
			Category:       "black smoke",
			Summary:        "Possible over-fuelling or restricted air supply.",
			Recommendation: "Check air filter, turbocharger, fuel injectors, and boost leaks.",
		},
	},
	{
		triggers: []string{"white smoke"},
		finding: Finding{
			Category:       "white smoke",
			Summary:        "Possible unburned fuel or low compression.",
			Recommendation: "Check injection timing, compression, and cold-start system.",
		},
	},
	{
		triggers: []string{"blue smoke", "oil smoke"},
		finding: Finding{
			Category:       "oil smoke",
			Summary:        "Possible oil burning.",
			Recommendation: "Check turbocharger seals, valve stem seals, piston rings.",
		},
	},
	{
		triggers: []string{"no start", "won't start", "wont start"},
		finding: Finding{
			Category:       "no start",
			Summary:        "Engine not starting.",
			Recommendation: "Check battery voltage, starter motor, fuel supply, emergency stops and safety shutdowns.",
		},
	},
	{
		triggers: []string{"knock", "knocking", "metallic noise"},
		finding: Finding{
			Category:       "knocking",
			Summary:        "Abnormal knocking noise.",
			Recommendation: "Check injection timing, bearing clearances, loose connecting rods, or detonation.",
		},
	},
	{
		triggers: []string{"overheat", "overheating", "high temperature"},
		finding: Finding{
			Category:       "overheating",
			Summary:        "Engine overheating.",
			Recommendation: "Check cooling water flow, thermostat, sea strainer (for marine), coolant level, and pump impeller.",
		},
	},
	{
		triggers: []string{"low power", "no power", "loss of power"},
		finding: Finding{
			Category:       "low power",
			Summary:        "Loss of power.",
			Recommendation: "Check fuel filters, air filters, turbocharger performance, and exhaust backpressure.",
		},
	},
}

// Engine-type rules match against the engine_type tag instead of the symptom
// text. Additive: they never replace symptom findings and never count as a
// symptom match for fallback purposes.
var engineTypeRules = []categoryRule{
	{
		triggers: []string{"marine", "ship"},
		finding: Finding{
			Category:       "marine",
			Summary:        "Marine-specific checks.",
			Recommendation: "Inspect sea-water inlet, strainers, cooling jackets, and gearbox load.",
		},
	},
}

var fallbackFinding = Finding{
	Category:       "general",
	Summary:        "No clear rule-based match found.",
	Recommendation: "Check basics: fuel, air, compression, and lubrication.",
}

// RuleEngine derives diagnostic findings from free text by evaluating the
// fixed rule table. Pure and reentrant: no state, no I/O, safe for
// unrestricted parallel invocation.
type RuleEngine struct{}

func NewRuleEngine() *RuleEngine { return &RuleEngine{} }

// Diagnose implements Diagnoser. Total over its input domain: any input,
// empty strings included, yields a non-empty report and a nil error. The
// fallback finding is appended whenever no symptom rule fires, so an
// engine-type-only match still carries the generic guidance.
func (RuleEngine) Diagnose(_ context.Context, engineType, symptoms string) (Report, error) {
	text := strings.ToLower(symptoms)
	engine := strings.ToLower(engineType)

	var findings []Finding
	for _, r := range symptomRules {
		if r.matches(text) {
			findings = append(findings, r.finding)
		}
	}
	matched := len(findings) > 0

	for _, r := range engineTypeRules {
		if r.matches(engine) {
			findings = append(findings, r.finding)
		}
	}

	if !matched {
		findings = append(findings, fallbackFinding)
	}

	return Report{Findings: findings}, nil
}
