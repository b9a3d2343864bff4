// Package common provides shared utilities across the application.
package common

import (
	"regexp"
	"strings"
)

// Ticker represents a normalized stock ticker symbol.
// Filings and market data are keyed by the uppercase Code.
type Ticker struct {
	// Code is the normalized uppercase symbol (e.g., "AAPL", "BRK.B")
	Code string
	// Raw is the original ticker string
	Raw string
}

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z])?$`)

// ParseTicker normalizes a ticker string.
// Supports formats:
//   - "AAPL" -> Code="AAPL"
//   - "aapl" -> Code="AAPL" (normalized to uppercase)
//   - "  msft " -> Code="MSFT" (whitespace trimmed)
//   - "BRK.B" -> Code="BRK.B" (class-share suffix preserved)
func ParseTicker(ticker string) Ticker {
	raw := ticker
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Ticker{}
	}
	return Ticker{
		Code: ticker,
		Raw:  raw,
	}
}

// String returns the normalized ticker string.
func (t Ticker) String() string {
	return t.Code
}

// IsValid reports whether the normalized code looks like a listed symbol.
func (t Ticker) IsValid() bool {
	return t.Code != "" && tickerPattern.MatchString(t.Code)
}
