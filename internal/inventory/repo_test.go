package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Single connection so concurrent writers serialize instead of
	// tripping sqlite's locking.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	bloodInventory := `
CREATE TABLE IF NOT EXISTS blood_inventory (
  blood_group TEXT PRIMARY KEY,
  available_units INTEGER NOT NULL DEFAULT 0,
  last_updated DATETIME
);`
	require.NoError(t, db.Exec(bloodInventory).Error)

	return db
}

func seedInventory(t *testing.T, db *gorm.DB, group enums.BloodGroup, units int, at time.Time) {
	t.Helper()
	require.NoError(t, db.Exec(
		"INSERT INTO blood_inventory (blood_group, available_units, last_updated) VALUES (?, ?, ?)",
		group, units, at,
	).Error)
}

func TestAdjustUnitsGuardRejectsNegativeResult(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	seeded := time.Now().Add(-time.Hour)
	seedInventory(t, db, enums.BloodGroupOPositive, 5, seeded)

	affected, err := repo.AdjustUnits(context.Background(), enums.BloodGroupOPositive, -6)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	entry, err := repo.GetByBloodGroup(context.Background(), enums.BloodGroupOPositive)
	require.NoError(t, err)
	assert.Equal(t, 5, entry.AvailableUnits, "rejected adjustment must leave the row unchanged")

	affected, err = repo.AdjustUnits(context.Background(), enums.BloodGroupOPositive, -5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected, "draining to exactly zero is allowed")
}

func TestAdjustUnitsAdvancesLastUpdated(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	seeded := time.Now().UTC().Add(-time.Hour)
	seedInventory(t, db, enums.BloodGroupABNegative, 2, seeded)

	affected, err := repo.AdjustUnits(context.Background(), enums.BloodGroupABNegative, 3)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	entry, err := repo.GetByBloodGroup(context.Background(), enums.BloodGroupABNegative)
	require.NoError(t, err)
	assert.Equal(t, 5, entry.AvailableUnits)
	assert.True(t, entry.LastUpdated.After(seeded), "last_updated must advance on adjustment")
}

func TestAdjustUnitsMissingRow(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	affected, err := repo.AdjustUnits(context.Background(), enums.BloodGroupBNegative, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestAdjustUnitsConcurrentIncrementsDoNotLoseUpdates(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	seedInventory(t, db, enums.BloodGroupAPositive, 5, time.Now())

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustUnits(context.Background(), enums.BloodGroupAPositive, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent adjust: %v", err)
	}

	entry, err := repo.GetByBloodGroup(context.Background(), enums.BloodGroupAPositive)
	require.NoError(t, err)
	assert.Equal(t, 5+writers, entry.AvailableUnits, "every increment must land")
}

func TestSetUnitsOverwritesAndAdvancesLastUpdated(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	seeded := time.Now().UTC().Add(-time.Hour)
	seedInventory(t, db, enums.BloodGroupONegative, 7, seeded)

	affected, err := repo.SetUnits(context.Background(), enums.BloodGroupONegative, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	entry, err := repo.GetByBloodGroup(context.Background(), enums.BloodGroupONegative)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.AvailableUnits)
	assert.True(t, entry.LastUpdated.After(seeded), "last_updated must advance on override")
}
