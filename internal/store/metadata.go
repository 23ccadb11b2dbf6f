package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shhac/prinbox/internal/github"
)

// Metadata cache lifetimes. Labels change often enough to warrant a short
// window; repo descriptions barely change at all.
const (
	labelCacheTTL = time.Hour
	repoMetaTTL   = 24 * time.Hour
)

// RepoMeta reads cached repository metadata. Stale entries read as missing.
func (s *Store) RepoMeta(ctx context.Context, repoFullName string) (github.RepoMeta, bool, error) {
	var rec RepoMetaRecord
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("repo_full_name = ?", repoFullName).First(&rec).Error
	}, 3)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return github.RepoMeta{}, false, nil
	}
	if err != nil {
		return github.RepoMeta{}, false, fmt.Errorf("failed to load repo meta: %w", err)
	}
	if time.Since(rec.FetchedAt) > repoMetaTTL {
		return github.RepoMeta{}, false, nil
	}
	return github.RepoMeta{Description: rec.Description, Language: rec.Language, Stars: rec.Stars}, true, nil
}

// SaveRepoMeta caches repository metadata.
func (s *Store) SaveRepoMeta(ctx context.Context, repoFullName string, meta github.RepoMeta) error {
	rec := RepoMetaRecord{
		RepoFullName: repoFullName,
		Description:  meta.Description,
		Language:     meta.Language,
		Stars:        meta.Stars,
		FetchedAt:    time.Now().UTC(),
	}
	return withRetry(func() error {
		return s.db.WithContext(ctx).Save(&rec).Error
	}, 3)
}

// CachedLabels reads the cached labels for one issue. Stale entries read as
// missing.
func (s *Store) CachedLabels(ctx context.Context, repoFullName string, number int) ([]string, bool, error) {
	key := fmt.Sprintf("%s#%d", repoFullName, number)
	var rec LabelRecord
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	}, 3)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load labels: %w", err)
	}
	if time.Since(rec.FetchedAt) > labelCacheTTL {
		return nil, false, nil
	}
	var labels []string
	if err := json.Unmarshal(rec.Labels, &labels); err != nil {
		return nil, false, nil
	}
	return labels, true, nil
}

// SaveLabels caches the labels for one issue.
func (s *Store) SaveLabels(ctx context.Context, repoFullName string, number int, labels []string) error {
	payload, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("failed to encode labels: %w", err)
	}
	rec := LabelRecord{
		Key:       fmt.Sprintf("%s#%d", repoFullName, number),
		Labels:    payload,
		FetchedAt: time.Now().UTC(),
	}
	return withRetry(func() error {
		return s.db.WithContext(ctx).Save(&rec).Error
	}, 3)
}

// labelFetcher is the upstream slice LabelSource needs.
type labelFetcher interface {
	GetIssueLabels(ctx context.Context, repoFullName string, number int) ([]string, error)
}

// LabelSource is a read-through label cache over the API client. A fetch
// failure is returned to the caller; nothing is cached for failed lookups.
type LabelSource struct {
	store   *Store
	fetcher labelFetcher
}

func NewLabelSource(s *Store, fetcher labelFetcher) *LabelSource {
	return &LabelSource{store: s, fetcher: fetcher}
}

// IssueLabels returns the labels for one issue, from cache when fresh.
func (l *LabelSource) IssueLabels(ctx context.Context, repoFullName string, number int) ([]string, error) {
	if labels, ok, err := l.store.CachedLabels(ctx, repoFullName, number); err == nil && ok {
		return labels, nil
	}
	labels, err := l.fetcher.GetIssueLabels(ctx, repoFullName, number)
	if err != nil {
		return nil, err
	}
	// Cache write failure is non-fatal; the next lookup refetches.
	_ = l.store.SaveLabels(ctx, repoFullName, number, labels)
	return labels, nil
}
