// Package clock provides the wall-clock implementation of the billing
// domain's Clock interface.
package clock

import (
	"time"

	"github.com/billing/backend/internal/domain/billing"
)

// SystemClock reads the system wall clock in UTC.
type SystemClock struct{}

// NewSystemClock creates a SystemClock
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time in UTC
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Ensure SystemClock implements billing.Clock
var _ billing.Clock = (*SystemClock)(nil)
