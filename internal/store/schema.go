package store

import (
	"time"
)

// SnoozeRecord is one snoozed item, keyed by the item's canonical key.
type SnoozeRecord struct {
	Key       string    `gorm:"primaryKey"`
	Until     time.Time `gorm:"not null;index:idx_snooze_until"`
	Title     string    `gorm:"not null;default:''"`
	URL       string    `gorm:"default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SeenKey marks an item the user has opened. Append-only from the UI's
// perspective.
type SeenKey struct {
	Key       string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// PinnedKey marks an item the user pinned to the top of the list.
type PinnedKey struct {
	Key       string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// NotifiedKey marks an item the background poll has already raised an OS
// notification for, so it never double-notifies.
type NotifiedKey struct {
	Key       string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// PRCacheRecord is the single-row snapshot of the last fresh page-1
// notifications fetch. Payload is the JSON-encoded cache envelope; the etag
// and fetch time are lifted into columns for cheap reads.
type PRCacheRecord struct {
	ID        int    `gorm:"primaryKey"`
	ETag      string `gorm:"default:''"`
	Payload   []byte `gorm:"not null"`
	FetchedAt time.Time
	UpdatedAt time.Time
}

// RepoMetaRecord caches repository metadata for the list's detail line.
type RepoMetaRecord struct {
	RepoFullName string `gorm:"primaryKey"`
	Description  string `gorm:"default:''"`
	Language     string `gorm:"default:''"`
	Stars        int    `gorm:"not null;default:0"`
	FetchedAt    time.Time
	UpdatedAt    time.Time
}

// LabelRecord caches the labels on one issue or PR, keyed "repo#number".
// Labels is a JSON-encoded string array.
type LabelRecord struct {
	Key       string `gorm:"primaryKey"`
	Labels    []byte `gorm:"not null"`
	FetchedAt time.Time
	UpdatedAt time.Time
}
