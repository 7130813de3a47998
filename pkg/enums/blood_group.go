package enums

import "fmt"

// BloodGroup is one of the eight canonical ABO/Rh type strings. Every
// persisted row that references a blood group stores exactly one of these
// values; the inventory table keys on them directly.
type BloodGroup string

const (
	BloodGroupAPositive  BloodGroup = "A+"
	BloodGroupANegative  BloodGroup = "A-"
	BloodGroupBPositive  BloodGroup = "B+"
	BloodGroupBNegative  BloodGroup = "B-"
	BloodGroupABPositive BloodGroup = "AB+"
	BloodGroupABNegative BloodGroup = "AB-"
	BloodGroupOPositive  BloodGroup = "O+"
	BloodGroupONegative  BloodGroup = "O-"
)

var validBloodGroups = []BloodGroup{
	BloodGroupAPositive,
	BloodGroupANegative,
	BloodGroupBPositive,
	BloodGroupBNegative,
	BloodGroupABPositive,
	BloodGroupABNegative,
	BloodGroupOPositive,
	BloodGroupONegative,
}

// AllBloodGroups returns the canonical values in display order.
func AllBloodGroups() []BloodGroup {
	out := make([]BloodGroup, len(validBloodGroups))
	copy(out, validBloodGroups)
	return out
}

// String implements fmt.Stringer.
func (b BloodGroup) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BloodGroup.
func (b BloodGroup) IsValid() bool {
	for _, candidate := range validBloodGroups {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBloodGroup converts raw input into a BloodGroup.
func ParseBloodGroup(value string) (BloodGroup, error) {
	for _, candidate := range validBloodGroups {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid blood group %q", value)
}
