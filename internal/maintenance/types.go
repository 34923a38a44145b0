package maintenance

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned when a maintenance type label is not part of the vocabulary.
var ErrUnknownType = errors.New("unknown maintenance type")

// Type is a maintenance type label. Only the constants below are valid.
type Type string

const (
	TypeGeneral             Type = "General Maintenance"
	TypeTimingBelt          Type = "Timing Belt"
	TypeBattery             Type = "Battery"
	TypeFlexibleCable       Type = "Flexible Cable"
	TypeOverhaulMaintenance Type = "Overhaul - Maintenance"
	TypeOverhaulBelt        Type = "Overhaul - Belt"
	TypeOverhaulCable       Type = "Overhaul - Cable"
	TypeOverhaulParts       Type = "Overhaul - Parts"
)

// AllTypes lists every maintenance type in display order.
var AllTypes = []Type{
	TypeGeneral,
	TypeTimingBelt,
	TypeBattery,
	TypeFlexibleCable,
	TypeOverhaulMaintenance,
	TypeOverhaulBelt,
	TypeOverhaulCable,
	TypeOverhaulParts,
}

var descriptions = map[Type]string{
	TypeGeneral:             "Periodic inspection, grease replacement and general checks",
	TypeTimingBelt:          "Timing belt inspection and tension adjustment",
	TypeBattery:             "Encoder backup battery replacement",
	TypeFlexibleCable:       "Internal flexible cable inspection and replacement",
	TypeOverhaulMaintenance: "Overhaul: reduction gear and lubrication service",
	TypeOverhaulBelt:        "Overhaul: timing belt replacement",
	TypeOverhaulCable:       "Overhaul: internal cable harness replacement",
	TypeOverhaulParts:       "Overhaul: wear parts replacement",
}

// Valid reports whether t is one of the known maintenance types.
func (t Type) Valid() bool {
	_, ok := descriptions[t]
	return ok
}

// Description returns the fixed human readable description for t.
func (t Type) Description() string {
	return descriptions[t]
}

// ParseType converts a label into a Type. Surrounding whitespace is ignored,
// the comparison is otherwise exact.
func ParseType(s string) (Type, error) {
	t := Type(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// IsOverhaulVariant reports whether t belongs to the overhaul family.
func IsOverhaulVariant(t Type) bool {
	switch t {
	case TypeOverhaulMaintenance, TypeOverhaulBelt, TypeOverhaulCable, TypeOverhaulParts:
		return true
	default:
		return false
	}
}

// Status is the maintenance state of one type on one controller.
// Values are ordered by severity.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusOverdue
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusOverdue:
		return "OVERDUE"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText encodes the status as its label so it reads the same in JSON and BSON.
func (s Status) MarshalText() ([]byte, error) {
	if s < StatusOK || s > StatusOverdue {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a status label.
func (s *Status) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "OK":
		*s = StatusOK
	case "WARNING":
		*s = StatusWarning
	case "OVERDUE":
		*s = StatusOverdue
	default:
		return fmt.Errorf("invalid status %q", string(b))
	}
	return nil
}

// Worst returns the more severe of a and b.
func Worst(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}
