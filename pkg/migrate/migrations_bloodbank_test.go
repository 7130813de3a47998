package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielortega/bloodbank-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_blood_inventory.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS blood_inventory",
		"CHECK (available_units >= 0)",
		"INSERT INTO blood_inventory",
		"ON CONFLICT (blood_group) DO NOTHING",
		"DROP TABLE IF EXISTS blood_inventory",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}

	for _, group := range []string{"'A+'", "'A-'", "'B+'", "'B-'", "'AB+'", "'AB-'", "'O+'", "'O-'"} {
		if !strings.Contains(content, group) {
			t.Errorf("seed missing blood group %s", group)
		}
	}
}

func TestDonationHistoryMigrationRestrictsDonorDelete(t *testing.T) {
	content := readMigration(t, "*_create_donation_history.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS donation_history",
		"FOREIGN KEY (donor_id) REFERENCES donors(id) ON DELETE RESTRICT",
		"CHECK (units_donated > 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBloodRequestsMigrationConstrainsStatus(t *testing.T) {
	content := readMigration(t, "*_create_blood_requests.sql")

	checks := []string{
		"CHECK (status IN ('pending', 'urgent', 'fulfilled', 'cancelled'))",
		"CHECK (units_needed > 0)",
		"FOREIGN KEY (recipient_id) REFERENCES recipients(id) ON DELETE RESTRICT",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
