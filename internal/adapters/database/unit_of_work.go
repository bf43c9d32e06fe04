package database

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/providers"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	"github.com/civicworks/facilitycare/internal/infrastructure/clients/postgres"
)

// UnitOfWork implements repositories.UnitOfWork over a single PostgreSQL
// transaction. The stores handed to fn share the transaction, so an invariant
// check, the triggering write and every cascade commit or roll back together.
// After a successful commit the cache entry of every facility written inside
// the transaction is dropped, so cascaded status changes are never served
// stale by the cached facility adapter.
type UnitOfWork struct {
	client *postgres.Client
	cache  providers.CacheProvider
}

// NewUnitOfWork creates a new unit of work. cache may be nil when the service
// runs uncached.
func NewUnitOfWork(client *postgres.Client, cache providers.CacheProvider) repositories.UnitOfWork {
	return &UnitOfWork{client: client, cache: cache}
}

// Execute runs fn against transaction-scoped stores
func (u *UnitOfWork) Execute(ctx context.Context, fn func(stores repositories.Stores) error) error {
	tracked := &trackedFacilityStore{}
	err := u.client.WithinTx(ctx, func(tx *sql.Tx) error {
		tracked.FacilityRepository = newFacilityTxAdapter(tx)
		return fn(repositories.Stores{
			Facilities:  tracked,
			Issues:      newIssueTxAdapter(tx),
			Schedules:   newScheduleTxAdapter(tx),
			Attachments: newAttachmentTxAdapter(tx),
		})
	})
	if err != nil {
		return err
	}

	if u.cache != nil {
		for _, code := range tracked.written {
			if err := u.cache.Delete(ctx, facilityCacheKey(code)); err != nil {
				log.Debug().Err(err).Str("facility_code", code).Msg("failed to invalidate facility cache")
			}
		}
	}
	return nil
}

// trackedFacilityStore records the codes of facilities written inside the
// transaction. The writes happen through the bare tx adapter, so the cached
// adapter never sees them; the unit of work invalidates on its behalf.
type trackedFacilityStore struct {
	repositories.FacilityRepository
	written []string
}

func (t *trackedFacilityStore) Create(ctx context.Context, facility *entities.Facility) error {
	if err := t.FacilityRepository.Create(ctx, facility); err != nil {
		return err
	}
	t.record(facility.Code)
	return nil
}

func (t *trackedFacilityStore) Update(ctx context.Context, facility *entities.Facility) error {
	if err := t.FacilityRepository.Update(ctx, facility); err != nil {
		return err
	}
	t.record(facility.Code)
	return nil
}

func (t *trackedFacilityStore) Delete(ctx context.Context, code string) error {
	if err := t.FacilityRepository.Delete(ctx, code); err != nil {
		return err
	}
	t.record(code)
	return nil
}

func (t *trackedFacilityStore) record(code string) {
	for _, c := range t.written {
		if c == code {
			return
		}
	}
	t.written = append(t.written, code)
}
