package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filingText = `Risk Factors
Our business faces supply chain disruption.
Demand for our products may soften.
Legal Proceedings
We are party to various lawsuits in the ordinary course.
Controls and Procedures
Management evaluated disclosure controls.`

func TestExtractSectionStopsAtNextHeading(t *testing.T) {
	body, ok := ExtractSection(filingText, "Risk Factors")
	require.True(t, ok)

	assert.Contains(t, body, "supply chain disruption")
	assert.Contains(t, body, "Demand for our products may soften.")
	assert.NotContains(t, body, "Risk Factors")
	assert.NotContains(t, body, "lawsuits")
	assert.NotContains(t, body, "disclosure controls")
}

func TestExtractSectionItemFallback(t *testing.T) {
	text := `Item 1. Business
We design and sell consumer electronics worldwide.
Legal Proceedings
Various claims are pending.`

	body, ok := ExtractSection(text, "Business")
	require.True(t, ok)
	assert.Contains(t, body, "consumer electronics")
	assert.NotContains(t, body, "claims are pending")
}

func TestExtractSectionCaseInsensitiveName(t *testing.T) {
	body, ok := ExtractSection(filingText, "risk factors")
	require.True(t, ok)
	assert.Contains(t, body, "supply chain disruption")
}

func TestExtractSectionMissing(t *testing.T) {
	_, ok := ExtractSection("No recognizable headings here.", "Risk Factors")
	assert.False(t, ok)

	_, ok = ExtractSection(filingText, "Not A Real Section")
	assert.False(t, ok)
}

func TestExtractAll(t *testing.T) {
	found := ExtractAll(filingText)
	require.Len(t, found, 3)

	// Rule order, not document order
	assert.Equal(t, "Risk Factors", found[0].Name)
	assert.Equal(t, "Legal Proceedings", found[1].Name)
	assert.Equal(t, "Controls and Procedures", found[2].Name)
	assert.Contains(t, found[1].Text, "various lawsuits")
}

func TestExtractFinancialFigures(t *testing.T) {
	text := `Total revenues of $394,328 million grew year over year.
Net income was $96,995 million for the period.
Diluted earnings per share of $6.13 reflected the buyback.`

	figures := ExtractFinancialFigures(text)
	require.Len(t, figures, 3)

	byName := make(map[string]string, len(figures))
	for _, figure := range figures {
		byName[figure.Name] = figure.Text
	}
	assert.Contains(t, byName["Revenue"], "$394,328 million")
	assert.Contains(t, byName["Net Income"], "$96,995 million")
	assert.Contains(t, byName["EPS"], "$6.13")
}

func TestExtractFinancialFiguresNone(t *testing.T) {
	assert.Empty(t, ExtractFinancialFigures("Nothing quantitative in here."))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips urls",
			input:    "See https://www.sec.gov/filings for details",
			expected: "See for details",
		},
		{
			name:     "strips emails",
			input:    "Contact investor.relations@example.com today",
			expected: "Contact today",
		},
		{
			name:     "strips page footers",
			input:    "Revenue grew.\nPage 12 of 300\nMargins held.",
			expected: "Revenue grew.\n\nMargins held.",
		},
		{
			name:     "strips bare page number lines",
			input:    "Revenue grew.\n42\nMargins held.",
			expected: "Revenue grew.\n\nMargins held.",
		},
		{
			name:     "collapses dotted leaders",
			input:    "Business.......5",
			expected: "Business 5",
		},
		{
			name:     "collapses whitespace runs",
			input:    "a  \t  b\n\n\n\n\nc",
			expected: "a b\n\nc",
		},
		{
			name:     "removes control characters",
			input:    "before\x00\x0bafter",
			expected: "before after",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}
