package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// FilingStorage implements the FilingStorage interface for Badger
type FilingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFilingStorage creates a new FilingStorage instance
func NewFilingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FilingStorage {
	return &FilingStorage{
		db:     db,
		logger: logger,
	}
}

// SaveFiling upserts a filing keyed by normalized ticker
func (s *FilingStorage) SaveFiling(filing *models.Filing) error {
	ticker := common.ParseTicker(filing.Ticker)
	if ticker.Code == "" {
		return fmt.Errorf("filing ticker is required")
	}
	filing.Ticker = ticker.Code

	now := time.Now()
	if filing.CreatedAt.IsZero() {
		filing.CreatedAt = now
	}
	filing.UpdatedAt = now

	// Preserve CreatedAt across upserts
	var existing models.Filing
	if err := s.db.Store().Get(filing.Ticker, &existing); err == nil {
		filing.CreatedAt = existing.CreatedAt
	}

	if err := s.db.Store().Upsert(filing.Ticker, filing); err != nil {
		return fmt.Errorf("failed to save filing: %w", err)
	}
	return nil
}

// GetFiling retrieves a filing by ticker (case-insensitive)
func (s *FilingStorage) GetFiling(ticker string) (*models.Filing, error) {
	code := common.ParseTicker(ticker).Code
	if code == "" {
		return nil, interfaces.ErrFilingNotFound
	}

	var filing models.Filing
	err := s.db.Store().Get(code, &filing)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrFilingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get filing: %w", err)
	}
	return &filing, nil
}

// GetFilingByYear retrieves a ticker's filing filed in the given year
func (s *FilingStorage) GetFilingByYear(ticker string, year int) (*models.Filing, error) {
	filing, err := s.GetFiling(ticker)
	if err != nil {
		return nil, err
	}
	if filing.Year() != year {
		return nil, interfaces.ErrFilingNotFound
	}
	return filing, nil
}

// ListFilings returns all stored filings
func (s *FilingStorage) ListFilings() ([]*models.Filing, error) {
	var filings []models.Filing
	if err := s.db.Store().Find(&filings, nil); err != nil {
		return nil, fmt.Errorf("failed to list filings: %w", err)
	}

	result := make([]*models.Filing, len(filings))
	for i := range filings {
		result[i] = &filings[i]
	}
	return result, nil
}

// DeleteFiling removes a filing by ticker; deleting a missing filing is a no-op
func (s *FilingStorage) DeleteFiling(ticker string) error {
	code := common.ParseTicker(ticker).Code
	err := s.db.Store().Delete(code, &models.Filing{})
	if err == badgerhold.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete filing: %w", err)
	}
	return nil
}

// CountFilings returns the number of stored filings
func (s *FilingStorage) CountFilings() (int, error) {
	count, err := s.db.Store().Count(&models.Filing{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count filings: %w", err)
	}
	return int(count), nil
}
