package inventory

import (
	"fmt"
	"strings"
)

type StatusClass string

var statusFilterKey = strings.NewReplacer("_", "", " ", "", "-", "")

const (
	StatusBooked       StatusClass = "Booked"
	StatusAvailable    StatusClass = "Available"
	StatusOnHold       StatusClass = "OnHold"
	StatusUnclassified StatusClass = "Unclassified"
)

// Classify maps free-text status values such as "BOOKED", "Not Booked" or
// "Hold " onto a status class.
func Classify(raw string) StatusClass {
	v := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	switch {
	case v == "":
		return StatusUnclassified
	case strings.Contains(v, "not booked"):
		return StatusAvailable
	case strings.Contains(v, "booked"):
		return StatusBooked
	case strings.Contains(v, "hold"):
		return StatusOnHold
	default:
		return StatusUnclassified
	}
}

func ClassifyNullable(raw *string) StatusClass {
	if raw == nil {
		return StatusUnclassified
	}
	return Classify(*raw)
}

// ParseStatusClass accepts filter input in any casing.
func ParseStatusClass(v string) (StatusClass, error) {
	switch statusFilterKey.Replace(strings.ToLower(strings.TrimSpace(v))) {
	case "":
		return "", nil
	case "booked":
		return StatusBooked, nil
	case "available", "notbooked":
		return StatusAvailable, nil
	case "onhold", "hold":
		return StatusOnHold, nil
	case "unclassified":
		return StatusUnclassified, nil
	}
	return "", fmt.Errorf("unknown status %q", v)
}

// IsScheduled reports whether the class represents a committed or held booking.
func (c StatusClass) IsScheduled() bool {
	return c == StatusBooked || c == StatusOnHold
}

func (c StatusClass) displayRank() int {
	switch c {
	case StatusBooked:
		return 0
	case StatusOnHold:
		return 1
	default:
		return 2
	}
}
