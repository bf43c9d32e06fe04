package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	"github.com/civicworks/facilitycare/internal/infrastructure/clients/postgres"
)

type fakeCache struct {
	deleted []string
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("cache miss")
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func setupUnitOfWork(t *testing.T) (*UnitOfWork, *fakeCache, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	cache := &fakeCache{}
	return &UnitOfWork{client: postgres.NewClientFromDB(mockDB), cache: cache}, cache, mock
}

func TestUnitOfWork_Execute(t *testing.T) {
	t.Run("drops cache entries for facilities written in the transaction", func(t *testing.T) {
		uow, cache, mock := setupUnitOfWork(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "facilities"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := uow.Execute(context.Background(), func(stores repositories.Stores) error {
			return stores.Facilities.Update(context.Background(), &entities.Facility{
				Code:   "PARK-001",
				Kind:   entities.FacilityKindPark,
				Name:   "Riverside Park",
				Status: entities.FacilityStatusUnderMaintenance,
			})
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"facility:PARK-001"}, cache.deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalidates each facility once", func(t *testing.T) {
		uow, cache, mock := setupUnitOfWork(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "facilities"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "facilities"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := uow.Execute(context.Background(), func(stores repositories.Stores) error {
			facility := &entities.Facility{Code: "PARK-001", Status: entities.FacilityStatusFaultDamaged}
			if err := stores.Facilities.Update(context.Background(), facility); err != nil {
				return err
			}
			facility.Status = entities.FacilityStatusOperational
			return stores.Facilities.Update(context.Background(), facility)
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"facility:PARK-001"}, cache.deleted)
	})

	t.Run("keeps cache entries when the transaction rolls back", func(t *testing.T) {
		uow, cache, mock := setupUnitOfWork(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "facilities"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err := uow.Execute(context.Background(), func(stores repositories.Stores) error {
			if err := stores.Facilities.Update(context.Background(), &entities.Facility{
				Code:   "PARK-001",
				Status: entities.FacilityStatusUnderMaintenance,
			}); err != nil {
				return err
			}
			return errors.New("later step failed")
		})

		assert.Error(t, err)
		assert.Empty(t, cache.deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tolerates a nil cache", func(t *testing.T) {
		uow, _, mock := setupUnitOfWork(t)
		uow.cache = nil

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "facilities"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := uow.Execute(context.Background(), func(stores repositories.Stores) error {
			return stores.Facilities.Update(context.Background(), &entities.Facility{
				Code:   "PARK-001",
				Status: entities.FacilityStatusOperational,
			})
		})

		assert.NoError(t, err)
	})
}
