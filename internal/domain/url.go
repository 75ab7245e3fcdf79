package domain

import "time"

// ShortURL maps a generated alias to its target address.
type ShortURL struct {
	ID        string
	Alias     string
	Target    string
	CreatedBy string
	Clicks    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
