package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/infrastructure/redis"
)

// directoryCacheTTL bounds staleness of cached directory records. Records
// only change through administrative flows, so a short TTL is plenty.
const directoryCacheTTL = 5 * time.Minute

// CachedCompanyDirectory is a read-through Redis cache over a
// domain.CompanyDirectory. Login and refresh hit GetByID on every request;
// caching the name-to-db_name link keeps those off the master database.
// ExistsByName and Create always go to the database: the uniqueness
// constraint there is the provisioning guard's source of truth.
type CachedCompanyDirectory struct {
	inner  domain.CompanyDirectory
	cache  *redis.Client
	logger *slog.Logger
}

// NewCachedCompanyDirectory wraps inner with a Redis read-through cache.
// A nil cache client disables caching entirely.
func NewCachedCompanyDirectory(inner domain.CompanyDirectory, cache *redis.Client, logger *slog.Logger) *CachedCompanyDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedCompanyDirectory{inner: inner, cache: cache, logger: logger}
}

// ExistsByName passes through to the database.
func (d *CachedCompanyDirectory) ExistsByName(ctx context.Context, companyName string) (bool, error) {
	return d.inner.ExistsByName(ctx, companyName)
}

// Create passes through and primes the cache with the new record.
func (d *CachedCompanyDirectory) Create(ctx context.Context, companyName, dbName string) (*domain.CompanyRecord, error) {
	rec, err := d.inner.Create(ctx, companyName, dbName)
	if err != nil {
		return nil, err
	}
	d.store(ctx, rec)
	return rec, nil
}

// GetByID returns the cached record when present, loading and caching on miss.
func (d *CachedCompanyDirectory) GetByID(ctx context.Context, id int64) (*domain.CompanyRecord, error) {
	key := fmt.Sprintf("company:id:%d", id)
	if rec := d.load(ctx, key); rec != nil {
		return rec, nil
	}
	rec, err := d.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, rec)
	return rec, nil
}

// GetByName returns the cached record when present, loading and caching on miss.
func (d *CachedCompanyDirectory) GetByName(ctx context.Context, companyName string) (*domain.CompanyRecord, error) {
	key := "company:name:" + companyName
	if rec := d.load(ctx, key); rec != nil {
		return rec, nil
	}
	rec, err := d.inner.GetByName(ctx, companyName)
	if err != nil {
		return nil, err
	}
	d.store(ctx, rec)
	return rec, nil
}

// load fetches and decodes a cached record; cache failures degrade to a miss.
func (d *CachedCompanyDirectory) load(ctx context.Context, key string) *domain.CompanyRecord {
	if d.cache == nil {
		return nil
	}
	raw, err := d.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return nil
	}
	rec := &domain.CompanyRecord{}
	if err := json.Unmarshal([]byte(raw), rec); err != nil {
		d.logger.Warn("corrupt directory cache entry", slog.String("key", key))
		return nil
	}
	return rec
}

func (d *CachedCompanyDirectory) store(ctx context.Context, rec *domain.CompanyRecord) {
	if d.cache == nil {
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	for _, key := range []string{
		fmt.Sprintf("company:id:%d", rec.ID),
		"company:name:" + rec.CompanyName,
	} {
		if err := d.cache.Set(ctx, key, raw, directoryCacheTTL); err != nil {
			d.logger.Warn("failed to cache directory record",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
}
