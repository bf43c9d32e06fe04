package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/providers"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
)

// CachedFacilityAdapter wraps a FacilityRepository with read caching.
// Facility reads dominate the engine (every issue/schedule operation starts
// with a lookup-by-code). Direct writes invalidate here; writes that happen
// inside a transaction are invalidated by the unit of work after commit.
type CachedFacilityAdapter struct {
	adapter repositories.FacilityRepository
	cache   providers.CacheProvider
}

// NewCachedFacilityAdapter creates a new cached facility adapter
func NewCachedFacilityAdapter(adapter repositories.FacilityRepository, cache providers.CacheProvider) repositories.FacilityRepository {
	return &CachedFacilityAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

const facilityByCodeTTL = 300 // seconds

func facilityCacheKey(code string) string {
	return fmt.Sprintf("facility:%s", code)
}

// Create creates a facility and primes nothing; the first read fills the cache
func (c *CachedFacilityAdapter) Create(ctx context.Context, facility *entities.Facility) error {
	if err := c.adapter.Create(ctx, facility); err != nil {
		return err
	}
	c.invalidate(ctx, facility.Code)
	return nil
}

// GetByCode retrieves a facility, from cache when possible
func (c *CachedFacilityAdapter) GetByCode(ctx context.Context, code string) (*entities.Facility, error) {
	key := facilityCacheKey(code)

	if data, err := c.cache.Get(ctx, key); err == nil {
		facility := &entities.Facility{}
		if err := json.Unmarshal(data, facility); err == nil {
			return facility, nil
		}
		// Corrupt entry: fall through to the store and rewrite it.
	}

	facility, err := c.adapter.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(facility); err == nil {
		if err := c.cache.Set(ctx, key, data, facilityByCodeTTL); err != nil {
			log.Debug().Err(err).Str("facility_code", code).Msg("failed to cache facility")
		}
	}
	return facility, nil
}

// Update updates a facility and invalidates its cache entry
func (c *CachedFacilityAdapter) Update(ctx context.Context, facility *entities.Facility) error {
	if err := c.adapter.Update(ctx, facility); err != nil {
		return err
	}
	c.invalidate(ctx, facility.Code)
	return nil
}

// Delete deletes a facility and invalidates its cache entry
func (c *CachedFacilityAdapter) Delete(ctx context.Context, code string) error {
	if err := c.adapter.Delete(ctx, code); err != nil {
		return err
	}
	c.invalidate(ctx, code)
	return nil
}

// List bypasses the cache; listings are admin traffic
func (c *CachedFacilityAdapter) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	return c.adapter.List(ctx, filter)
}

func (c *CachedFacilityAdapter) invalidate(ctx context.Context, code string) {
	if err := c.cache.Delete(ctx, facilityCacheKey(code)); err != nil {
		log.Debug().Err(err).Str("facility_code", code).Msg("failed to invalidate facility cache")
	}
}
