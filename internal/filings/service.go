package filings

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/httpclient"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// FilingRecord is the subset of the SEC search API response we use
type FilingRecord struct {
	Ticker       string `json:"ticker"`
	FormType     string `json:"formType"`
	FiledAt      string `json:"filedAt"`
	LinkToFiling string `json:"linkToFilingDetails"`
}

// Service discovers SEC filings through the search API, converts them
// to PDF through the filing-reader endpoint, stores the document under
// the configured save directory, and records metadata. Per-ticker
// failures are logged and skipped so one bad symbol never aborts a
// batch run.
type Service struct {
	config     *common.FilingsConfig
	storage    interfaces.FilingStorage
	httpClient *http.Client
	logger     arbor.ILogger
}

// NewService creates a new filings service
func NewService(config *common.FilingsConfig, storage interfaces.FilingStorage, logger arbor.ILogger) *Service {
	return &Service{
		config:     config,
		storage:    storage,
		httpClient: httpclient.NewDefaultHTTPClient(60 * time.Second),
		logger:     logger,
	}
}

// FetchAll fetches filings for every ticker in the constituents CSV.
// Returns the number of filings downloaded.
func (s *Service) FetchAll(ctx context.Context, formType string, year int) (int, error) {
	tickers, err := s.loadConstituents()
	if err != nil {
		return 0, err
	}

	s.logger.Info().
		Int("tickers", len(tickers)).
		Str("form_type", formType).
		Int("year", year).
		Msg("Fetching filings for constituents")

	downloaded := 0
	for _, ticker := range tickers {
		select {
		case <-ctx.Done():
			return downloaded, ctx.Err()
		default:
		}

		count, err := s.FetchTicker(ctx, ticker, formType, year)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to fetch filings, skipping ticker")
			continue
		}
		downloaded += count
	}

	return downloaded, nil
}

// FetchTicker fetches and stores filings for a single ticker. Returns
// the number of filings downloaded.
func (s *Service) FetchTicker(ctx context.Context, ticker, formType string, year int) (int, error) {
	parsed := common.ParseTicker(ticker)
	if !parsed.IsValid() {
		return 0, fmt.Errorf("invalid ticker %q", ticker)
	}

	records, err := s.searchFilings(ctx, parsed.Code, formType, year)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		s.logger.Info().Str("ticker", parsed.Code).Msg("No filings found")
		return 0, nil
	}

	downloaded := 0
	for _, record := range records {
		if err := s.downloadAndStore(ctx, &record, parsed.Code, formType, year); err != nil {
			s.logger.Warn().Err(err).
				Str("ticker", parsed.Code).
				Str("url", record.LinkToFiling).
				Msg("Failed to download filing, skipping")
			continue
		}
		downloaded++
	}

	return downloaded, nil
}

// searchFilings queries the SEC search API for filings matching the
// ticker, form type, and year, latest first.
func (s *Service) searchFilings(ctx context.Context, ticker, formType string, year int) ([]FilingRecord, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"query_string": map[string]interface{}{
				"query": fmt.Sprintf(`ticker:%s AND formType:"%s" AND filedAt:[%d-01-01 TO %d-12-31]`,
					ticker, formType, year, year),
			},
		},
		"from": 0,
		"size": 5,
		"sort": []map[string]interface{}{
			{"filedAt": map[string]string{"order": "desc"}},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("filing search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("filing search returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var payload struct {
		Filings []FilingRecord `json:"filings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return payload.Filings, nil
}

// downloadAndStore converts the filing to PDF, writes it under
// <save_dir>/<ticker>/<year>/<form>/, and records the filing metadata.
func (s *Service) downloadAndStore(ctx context.Context, record *FilingRecord, ticker, formType string, year int) error {
	if record.LinkToFiling == "" {
		return fmt.Errorf("no filing URL found")
	}

	readerURL := fmt.Sprintf("%s?token=%s&url=%s",
		s.config.PDFReaderURL, url.QueryEscape(s.config.APIKey), url.QueryEscape(record.LinkToFiling))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, readerURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("filing download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("filing download returned status %d", resp.StatusCode)
	}

	saveDir := filepath.Join(s.config.SaveDir, ticker, strconv.Itoa(year), formType)
	if err := os.MkdirAll(saveDir, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s_%d.pdf", ticker, formType, year)
	savePath := filepath.Join(saveDir, fileName)

	out, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(savePath)
		return fmt.Errorf("failed to write filing PDF: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close filing PDF: %w", err)
	}

	filingDate := parseFilingDate(record.FiledAt, year)

	filing := &models.Filing{
		Ticker:     ticker,
		FormType:   formType,
		FilingDate: filingDate,
		PathToDoc:  savePath,
	}
	if err := s.storage.SaveFiling(filing); err != nil {
		return fmt.Errorf("failed to save filing metadata: %w", err)
	}

	s.logger.Info().
		Str("ticker", ticker).
		Str("form_type", formType).
		Str("path", savePath).
		Msg("Filing downloaded")

	return nil
}

// loadConstituents reads tickers from the Symbol column of the
// constituents CSV. Rows with a missing symbol are skipped.
func (s *Service) loadConstituents() ([]string, error) {
	file, err := os.Open(s.config.ConstituentsCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open constituents CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	symbolCol := -1
	for i, name := range header {
		if name == "Symbol" {
			symbolCol = i
			break
		}
	}
	if symbolCol < 0 {
		return nil, fmt.Errorf("constituents CSV has no Symbol column")
	}

	var tickers []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if symbolCol >= len(row) || row[symbolCol] == "" {
			s.logger.Warn().Msg("Skipping row with missing ticker")
			continue
		}
		tickers = append(tickers, row[symbolCol])
	}

	return tickers, nil
}

// parseFilingDate parses the search API's filedAt timestamp, falling
// back to the start of the query year when it cannot be parsed.
func parseFilingDate(filedAt string, year int) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, filedAt); err == nil {
			return t
		}
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
