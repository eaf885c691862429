package billing

import "time"

// Clock abstracts wall-clock access so billing calculations stay
// deterministic in tests. Every operation reads the clock exactly once.
type Clock interface {
	Now() time.Time
}
