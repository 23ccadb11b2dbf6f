// Package store persists triage state in a local SQLite database: snoozes,
// seen/pinned/notified key sets, the page-1 notifications cache, and the
// repo/label metadata caches. Reads and writes go through short transactions
// retried on SQLITE_BUSY; last write wins across concurrent processes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/shhac/prinbox/internal/inbox"
)

const prCacheRowID = 1

// gormLogger forwards GORM's error and slow-query reporting to zap.
type gormLogger struct {
	log   *zap.Logger
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{log: l.log, level: level}
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level < logger.Warn {
		return
	}
	elapsed := time.Since(begin)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		sql, rows := fc()
		l.log.Error("query failed", zap.Error(err), zap.Duration("duration", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	} else if elapsed > 200*time.Millisecond {
		sql, rows := fc()
		l.log.Warn("slow query", zap.Duration("duration", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	}
}

// Store provides typed access to the triage database.
type Store struct {
	db *gorm.DB
}

// NewStore opens (creating if needed) the database at dbPath with WAL mode
// enabled and migrates the schema.
func NewStore(dbPath string, log *zap.Logger) (*Store, error) {
	if len(dbPath) > 0 && dbPath[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, dbPath[1:])
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      (&gormLogger{log: log}).LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Popup and background worker may hold the database at the same time.
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")

	if err := db.AutoMigrate(
		&SnoozeRecord{},
		&SeenKey{},
		&PinnedKey{},
		&NotifiedKey{},
		&PRCacheRecord{},
		&RepoMetaRecord{},
		&LabelRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Snoozes returns the full snooze map, expired entries included. Callers
// decide activity with SnoozeEntry.Active.
func (s *Store) Snoozes(ctx context.Context) (map[string]inbox.SnoozeEntry, error) {
	var records []SnoozeRecord
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Find(&records).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to load snoozes: %w", err)
	}
	out := make(map[string]inbox.SnoozeEntry, len(records))
	for _, r := range records {
		out[r.Key] = inbox.SnoozeEntry{Until: r.Until, Title: r.Title, URL: r.URL}
	}
	return out, nil
}

// GetSnooze reads one snooze entry.
func (s *Store) GetSnooze(ctx context.Context, key string) (inbox.SnoozeEntry, bool, error) {
	var rec SnoozeRecord
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	}, 3)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inbox.SnoozeEntry{}, false, nil
	}
	if err != nil {
		return inbox.SnoozeEntry{}, false, fmt.Errorf("failed to load snooze %s: %w", key, err)
	}
	return inbox.SnoozeEntry{Until: rec.Until, Title: rec.Title, URL: rec.URL}, true, nil
}

// PutSnooze creates or replaces the snooze entry for a key.
func (s *Store) PutSnooze(ctx context.Context, key string, e inbox.SnoozeEntry) error {
	rec := SnoozeRecord{Key: key, Until: e.Until, Title: e.Title, URL: e.URL}
	return withRetry(func() error {
		return s.db.WithContext(ctx).Save(&rec).Error
	}, 3)
}

// DeleteSnooze removes one entry, reporting whether it existed.
func (s *Store) DeleteSnooze(ctx context.Context, key string) (bool, error) {
	var deleted bool
	err := withRetry(func() error {
		result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&SnoozeRecord{})
		deleted = result.RowsAffected > 0
		return result.Error
	}, 3)
	return deleted, err
}

// ClearSnoozes removes every snooze entry.
func (s *Store) ClearSnoozes(ctx context.Context) error {
	return withRetry(func() error {
		return s.db.WithContext(ctx).Where("1 = 1").Delete(&SnoozeRecord{}).Error
	}, 3)
}

// SeenKeys returns the set of keys the user has opened.
func (s *Store) SeenKeys(ctx context.Context) (map[string]bool, error) {
	return s.keySet(ctx, &[]SeenKey{})
}

// MarkSeen records that the user opened an item. Idempotent.
func (s *Store) MarkSeen(ctx context.Context, key string) error {
	return withRetry(func() error {
		return s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&SeenKey{Key: key}).Error
	}, 3)
}

// PinnedKeys returns the set of pinned keys.
func (s *Store) PinnedKeys(ctx context.Context) (map[string]bool, error) {
	return s.keySet(ctx, &[]PinnedKey{})
}

// TogglePin flips the pin state for a key and returns the new state.
func (s *Store) TogglePin(ctx context.Context, key string) (bool, error) {
	var pinned bool
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Where("key = ?", key).Delete(&PinnedKey{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				pinned = false
				return nil
			}
			pinned = true
			return tx.Create(&PinnedKey{Key: key}).Error
		})
	}, 3)
	return pinned, err
}

// NotifiedKeys returns the set of keys already announced by the poll.
func (s *Store) NotifiedKeys(ctx context.Context) (map[string]bool, error) {
	return s.keySet(ctx, &[]NotifiedKey{})
}

// MarkNotified records keys the poll has announced. Idempotent.
func (s *Store) MarkNotified(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	records := make([]NotifiedKey, len(keys))
	for i, k := range keys {
		records[i] = NotifiedKey{Key: k}
	}
	return withRetry(func() error {
		return s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&records).Error
	}, 3)
}

// PRCache reads the persisted page-1 snapshot. The second return is false
// when no snapshot has been written yet or the stored payload is unreadable.
func (s *Store) PRCache(ctx context.Context) (inbox.Cache, bool, error) {
	var rec PRCacheRecord
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("id = ?", prCacheRowID).First(&rec).Error
	}, 3)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inbox.Cache{}, false, nil
	}
	if err != nil {
		return inbox.Cache{}, false, fmt.Errorf("failed to load pr cache: %w", err)
	}
	var cache inbox.Cache
	if err := json.Unmarshal(rec.Payload, &cache); err != nil {
		return inbox.Cache{}, false, nil
	}
	return cache, true, nil
}

// SavePRCache replaces the page-1 snapshot.
func (s *Store) SavePRCache(ctx context.Context, c inbox.Cache) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode pr cache: %w", err)
	}
	rec := PRCacheRecord{ID: prCacheRowID, ETag: c.ETag, Payload: payload, FetchedAt: c.FetchedAt}
	return withRetry(func() error {
		return s.db.WithContext(ctx).Save(&rec).Error
	}, 3)
}

func (s *Store) keySet(ctx context.Context, dest interface{}) (map[string]bool, error) {
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Find(dest).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to load key set: %w", err)
	}
	out := map[string]bool{}
	switch records := dest.(type) {
	case *[]SeenKey:
		for _, r := range *records {
			out[r.Key] = true
		}
	case *[]PinnedKey:
		for _, r := range *records {
			out[r.Key] = true
		}
	case *[]NotifiedKey:
		for _, r := range *records {
			out[r.Key] = true
		}
	}
	return out, nil
}

// withRetry retries operations on SQLITE_BUSY with linear backoff.
func withRetry(fn func() error, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}
		return err
	}
	return fmt.Errorf("operation failed after %d retries", maxRetries)
}
