package reports

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("BLOODBANK_DB_DSN")
	if dsn == "" {
		t.Skip("BLOODBANK_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func mustCreateRecipient(t *testing.T, tx *gorm.DB, group enums.BloodGroup) *models.Recipient {
	t.Helper()
	recipient := &models.Recipient{
		ID:         uuid.New(),
		Name:       "Report Tester",
		Email:      "bb_test_" + uuid.NewString() + "@example.com",
		Phone:      "555-0100",
		BloodGroup: group,
	}
	if err := tx.Create(recipient).Error; err != nil {
		t.Fatalf("create recipient: %v", err)
	}
	return recipient
}

func mustCreateRequest(t *testing.T, tx *gorm.DB, recipientID uuid.UUID, group enums.BloodGroup, units int, status enums.RequestStatus) {
	t.Helper()
	request := &models.BloodRequest{
		ID:          uuid.New(),
		RecipientID: recipientID,
		BloodGroup:  group,
		UnitsNeeded: units,
		Status:      status,
		RequestDate: time.Now(),
	}
	if err := tx.Create(request).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}
}

func TestTopUrgentNeedsExcludesCancelledAndOrders(t *testing.T) {
	conn := openTestDB(t)

	tx := conn.Begin()
	defer tx.Rollback()

	recipient := mustCreateRecipient(t, tx, enums.BloodGroupOPositive)
	mustCreateRequest(t, tx, recipient.ID, enums.BloodGroupOPositive, 3, enums.RequestStatusPending)
	mustCreateRequest(t, tx, recipient.ID, enums.BloodGroupOPositive, 4, enums.RequestStatusUrgent)
	mustCreateRequest(t, tx, recipient.ID, enums.BloodGroupANegative, 5, enums.RequestStatusFulfilled)
	mustCreateRequest(t, tx, recipient.ID, enums.BloodGroupBPositive, 50, enums.RequestStatusCancelled)

	repo := NewRepository(tx)
	rows, err := repo.TopUrgentNeeds(context.Background(), 10)
	if err != nil {
		t.Fatalf("top urgent needs: %v", err)
	}

	totals := make(map[enums.BloodGroup]int)
	for _, row := range rows {
		totals[row.BloodGroup] = row.TotalUnits
	}

	if totals[enums.BloodGroupOPositive] < 7 {
		t.Fatalf("expected O+ total >= 7, got %d", totals[enums.BloodGroupOPositive])
	}
	if totals[enums.BloodGroupANegative] < 5 {
		t.Fatalf("fulfilled requests must still count, got %d", totals[enums.BloodGroupANegative])
	}

	for i := 1; i < len(rows); i++ {
		if rows[i].TotalUnits > rows[i-1].TotalUnits {
			t.Fatalf("rows not ordered by total desc: %+v", rows)
		}
		if rows[i].TotalUnits == rows[i-1].TotalUnits && rows[i].BloodGroup < rows[i-1].BloodGroup {
			t.Fatalf("ties not ordered by blood group asc: %+v", rows)
		}
	}
}

func TestRecentDonorsSkipsDonorsWithoutDonations(t *testing.T) {
	conn := openTestDB(t)

	tx := conn.Begin()
	defer tx.Rollback()

	fresh := &models.Donor{
		ID:         uuid.New(),
		Name:       "Never Donated",
		Email:      "bb_test_" + uuid.NewString() + "@example.com",
		Phone:      "555-0101",
		BloodGroup: enums.BloodGroupAPositive,
	}
	if err := tx.Create(fresh).Error; err != nil {
		t.Fatalf("create donor: %v", err)
	}

	repo := NewRepository(tx)
	rows, err := repo.RecentDonors(context.Background(), 50)
	if err != nil {
		t.Fatalf("recent donors: %v", err)
	}
	for _, donor := range rows {
		if donor.ID == fresh.ID {
			t.Fatal("donor without donations must not appear")
		}
		if donor.LastDonationDate == nil {
			t.Fatal("recent donors must have a last donation date")
		}
	}
}
