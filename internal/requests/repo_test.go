package requests

import (
	"context"
	"testing"
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRequestsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	recipients := `
CREATE TABLE IF NOT EXISTS recipients (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  blood_group TEXT NOT NULL,
  reason TEXT,
  hospital_name TEXT,
  city TEXT,
  state TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	bloodRequests := `
CREATE TABLE IF NOT EXISTS blood_requests (
  id TEXT PRIMARY KEY,
  recipient_id TEXT NOT NULL,
  blood_group TEXT NOT NULL,
  units_needed INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  request_date DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(recipients).Error)
	require.NoError(t, db.Exec(bloodRequests).Error)

	return db
}

func seedRequest(t *testing.T, db *gorm.DB, recipientID uuid.UUID, group enums.BloodGroup, units int, status enums.RequestStatus, at time.Time) *models.BloodRequest {
	t.Helper()
	request := &models.BloodRequest{
		ID:          uuid.New(),
		RecipientID: recipientID,
		BloodGroup:  group,
		UnitsNeeded: units,
		Status:      status,
		RequestDate: at,
	}
	require.NoError(t, db.Create(request).Error)
	return request
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	recipientID := uuid.New()
	created := seedRequest(t, db, recipientID, enums.BloodGroupOPositive, 3, enums.RequestStatusPending, time.Now())

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, recipientID, found.RecipientID)
	assert.Equal(t, enums.BloodGroupOPositive, found.BloodGroup)
	assert.Equal(t, 3, found.UnitsNeeded)
}

func TestRepositoryListFiltersAndOrders(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	recipientID := uuid.New()
	otherID := uuid.New()
	now := time.Now()

	older := seedRequest(t, db, recipientID, enums.BloodGroupAPositive, 2, enums.RequestStatusPending, now.Add(-2*time.Hour))
	newer := seedRequest(t, db, recipientID, enums.BloodGroupAPositive, 4, enums.RequestStatusUrgent, now)
	seedRequest(t, db, otherID, enums.BloodGroupBNegative, 1, enums.RequestStatusCancelled, now.Add(-time.Hour))

	rows, err := repo.List(context.Background(), ListFilters{RecipientID: &recipientID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID, "newest request first")
	assert.Equal(t, older.ID, rows[1].ID)

	urgent := enums.RequestStatusUrgent
	rows, err = repo.List(context.Background(), ListFilters{Status: &urgent})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, newer.ID, rows[0].ID)

	group := enums.BloodGroupBNegative
	rows, err = repo.List(context.Background(), ListFilters{BloodGroup: &group})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestRepositoryDeleteReportsAffectedRows(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	created := seedRequest(t, db, uuid.New(), enums.BloodGroupABPositive, 1, enums.RequestStatusPending, time.Now())

	affected, err := repo.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = repo.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	_, err = repo.FindByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
