package enums

import "fmt"

// UnitStatus tracks the lifecycle of an individually tracked inventory unit.
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"
	UnitStatusAssigned    UnitStatus = "ASSIGNED"
	UnitStatusDamaged     UnitStatus = "DAMAGED"
	UnitStatusMaintenance UnitStatus = "MAINTENANCE"
	UnitStatusRetired     UnitStatus = "RETIRED"
)

var validUnitStatuses = []UnitStatus{
	UnitStatusAvailable,
	UnitStatusAssigned,
	UnitStatusDamaged,
	UnitStatusMaintenance,
	UnitStatusRetired,
}

// String implements fmt.Stringer.
func (s UnitStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known UnitStatus.
func (s UnitStatus) IsValid() bool {
	for _, candidate := range validUnitStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseUnitStatus converts raw input into a UnitStatus.
func ParseUnitStatus(value string) (UnitStatus, error) {
	for _, candidate := range validUnitStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit status %q", value)
}

// ReturnDisposition maps a caller-supplied disposition on return to the status
// the unit lands in. Unrecognized values fall back to AVAILABLE.
func ReturnDisposition(value string) UnitStatus {
	switch UnitStatus(value) {
	case UnitStatusDamaged:
		return UnitStatusDamaged
	case UnitStatusMaintenance:
		return UnitStatusMaintenance
	default:
		return UnitStatusAvailable
	}
}
