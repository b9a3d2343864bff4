package models

import "time"

// KeyValuePair is a persisted key/value entry with optional expiry.
// An entry whose ExpiresAt is non-zero and in the past is treated as
// absent on read; presence is purely an optimization.
type KeyValuePair struct {
	Key       string    `json:"key" badgerhold:"unique"`
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the entry's lifetime has elapsed.
func (p *KeyValuePair) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}
