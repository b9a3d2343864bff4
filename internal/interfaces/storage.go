package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/quaestor/internal/models"
)

// ErrKeyNotFound is returned when a key/value lookup misses, including
// entries that have expired.
var ErrKeyNotFound = errors.New("key not found")

// ErrFilingNotFound is returned when no filing matches a ticker lookup.
var ErrFilingNotFound = errors.New("filing not found")

// FilingStorage - interface for filing metadata persistence.
// Filings are unique on ticker; lookups are case-insensitive.
type FilingStorage interface {
	SaveFiling(filing *models.Filing) error
	GetFiling(ticker string) (*models.Filing, error)
	GetFilingByYear(ticker string, year int) (*models.Filing, error)
	ListFilings() ([]*models.Filing, error)
	DeleteFiling(ticker string) error
	CountFilings() (int, error)
}

// KeyValueStorage - interface for expiring key/value persistence.
// Writes are last-write-wins with no locking; staleness only costs a
// recomputation.
type KeyValueStorage interface {
	// Get returns the value for key, or ErrKeyNotFound if absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value; a non-zero ttl bounds the entry's lifetime.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// StorageManager provides access to all storage interfaces with an
// explicit open/close lifecycle.
type StorageManager interface {
	FilingStorage() FilingStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
