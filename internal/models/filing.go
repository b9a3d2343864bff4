package models

import "time"

// Filing is a dated regulatory document associated with a ticker.
// Filings are summarized directly from their stored PDF and are
// independent of the chunk index.
type Filing struct {
	// Ticker is the normalized uppercase symbol; unique per filing record
	Ticker string `json:"ticker" badgerhold:"unique"`
	// FormType is the SEC form type (e.g., "10-K", "10-Q")
	FormType string `json:"form_type"`
	// FilingDate is the date the form was filed
	FilingDate time.Time `json:"filing_date"`
	// PathToDoc is the local path of the downloaded PDF
	PathToDoc string `json:"path_to_doc"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Year returns the filing year
func (f *Filing) Year() int {
	return f.FilingDate.Year()
}
