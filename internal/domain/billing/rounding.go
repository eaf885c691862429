package billing

// RoundingMode is the policy for converting billable minutes to a whole-hour
// count in flat-rate pricing.
type RoundingMode string

const (
	RoundingUp      RoundingMode = "up"
	RoundingDown    RoundingMode = "down"
	RoundingNearest RoundingMode = "nearest"
)

// IsValid checks if the mode is a known RoundingMode
func (m RoundingMode) IsValid() bool {
	switch m {
	case RoundingUp, RoundingDown, RoundingNearest:
		return true
	}
	return false
}

// String returns the string representation of the rounding mode
func (m RoundingMode) String() string {
	return string(m)
}
