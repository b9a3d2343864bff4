package sections

import (
	"regexp"
	"strings"
)

// Rule pairs a section label with the heading pattern that opens it.
// Rules are evaluated in order; the first pattern to match wins.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// headingRules is the fixed list of known filing section headings.
// A section's body runs from its heading to the start of whichever
// other heading appears next in the text.
var headingRules = []Rule{
	{Name: "Business", Pattern: regexp.MustCompile(`(?i)\bbusiness\s*overview\b|^\s*business\s*$`)},
	{Name: "Risk Factors", Pattern: regexp.MustCompile(`(?i)\brisk\s+factors\b`)},
	{Name: "Legal Proceedings", Pattern: regexp.MustCompile(`(?i)\blegal\s+proceedings\b`)},
	{Name: "Management's Discussion", Pattern: regexp.MustCompile(`(?i)management'?s\s+discussion\s+and\s+analysis`)},
	{Name: "Market Risk", Pattern: regexp.MustCompile(`(?i)quantitative\s+and\s+qualitative\s+disclosures\s+about\s+market\s+risk`)},
	{Name: "Financial Statements", Pattern: regexp.MustCompile(`(?i)\bfinancial\s+statements\s+and\s+supplementary\s+data\b`)},
	{Name: "Controls and Procedures", Pattern: regexp.MustCompile(`(?i)\bcontrols\s+and\s+procedures\b`)},
}

// itemRules are form-specific structural fallbacks ("Item 1A. Risk
// Factors" style) tried when the plain heading does not match.
var itemRules = map[string]*regexp.Regexp{
	"Business":                regexp.MustCompile(`(?i)item\s+1\.?\s+business\b`),
	"Risk Factors":            regexp.MustCompile(`(?i)item\s+1a\.?\s+risk\s+factors`),
	"Legal Proceedings":       regexp.MustCompile(`(?i)item\s+3\.?\s+legal\s+proceedings`),
	"Management's Discussion": regexp.MustCompile(`(?i)item\s+7\.?\s+management'?s\s+discussion`),
	"Market Risk":             regexp.MustCompile(`(?i)item\s+7a\.?\s+quantitative`),
	"Financial Statements":    regexp.MustCompile(`(?i)item\s+8\.?\s+financial\s+statements`),
	"Controls and Procedures": regexp.MustCompile(`(?i)item\s+9a\.?\s+controls`),
}

// financialFigurePatterns pull headline numbers straight out of the
// text when structured sections are too sparse for a useful prompt.
var financialFigurePatterns = []Rule{
	{Name: "Revenue", Pattern: regexp.MustCompile(`(?i)(?:total\s+)?(?:net\s+)?revenues?\s+(?:of\s+|were\s+|was\s+|increased\s+to\s+|decreased\s+to\s+)?\$?[\d,]+(?:\.\d+)?\s*(?:million|billion|thousand)?`)},
	{Name: "Net Income", Pattern: regexp.MustCompile(`(?i)net\s+(?:income|loss)\s+(?:of\s+|was\s+|attributable[^$]{0,40})?\$?[\d,]+(?:\.\d+)?\s*(?:million|billion|thousand)?`)},
	{Name: "EPS", Pattern: regexp.MustCompile(`(?i)(?:diluted\s+|basic\s+)?earnings\s+per\s+share\s+(?:of\s+|was\s+|were\s+)?\$?[\d,]+(?:\.\d+)?`)},
}

// Section is one extracted labeled section
type Section struct {
	Name string
	Text string
}

// ExtractSection returns the named section's body, or false if its
// heading cannot be found. The body runs from the heading match to the
// nearest subsequent match of any other known heading, or end of text.
func ExtractSection(text, name string) (string, bool) {
	rule, ok := ruleByName(name)
	if !ok {
		return "", false
	}

	loc := rule.Pattern.FindStringIndex(text)
	if loc == nil {
		// Try the structural form before giving up
		if itemPattern, exists := itemRules[rule.Name]; exists {
			loc = itemPattern.FindStringIndex(text)
		}
	}
	if loc == nil {
		return "", false
	}

	// Body runs from just past the heading to the nearest other heading
	rest := text[loc[1]:]
	end := len(rest)
	for _, other := range headingRules {
		if other.Name == rule.Name {
			continue
		}
		if next := other.Pattern.FindStringIndex(rest); next != nil && next[0] < end {
			end = next[0]
		}
	}

	section := CleanText(rest[:end])
	if section == "" {
		return "", false
	}
	return section, true
}

// ExtractAll runs every heading rule against the text and returns the
// sections that matched, in rule order. Missing sections are simply
// absent from the result.
func ExtractAll(text string) []Section {
	cleaned := CleanText(text)

	var found []Section
	for _, rule := range headingRules {
		if body, ok := ExtractSection(cleaned, rule.Name); ok {
			found = append(found, Section{Name: rule.Name, Text: body})
		}
	}
	return found
}

// ExtractFinancialFigures pulls headline figure sentences from the
// text, labeled by figure kind. At most one match per kind.
func ExtractFinancialFigures(text string) []Section {
	var figures []Section
	for _, rule := range financialFigurePatterns {
		if match := rule.Pattern.FindString(text); match != "" {
			figures = append(figures, Section{
				Name: rule.Name,
				Text: strings.TrimSpace(match),
			})
		}
	}
	return figures
}

func ruleByName(name string) (Rule, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	for _, rule := range headingRules {
		if strings.ToLower(rule.Name) == target {
			return rule, true
		}
	}
	return Rule{}, false
}
