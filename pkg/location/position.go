package location

import (
	"fmt"
	"math"
	"time"
)

// Position is a single fix reported by a provider.
type Position struct {
	Provider  string
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters
	Time      time.Time
}

// Age is how long before now the fix was taken.
func (p Position) Age(now time.Time) time.Duration {
	return now.Sub(p.Time)
}

// IsStale reports whether the fix is older than bound. A zero bound never
// makes a fix stale.
func (p Position) IsStale(bound TimeBound, now time.Time) bool {
	if bound.IsZero() {
		return false
	}
	return p.Age(now) > bound.Duration()
}

func (p Position) String() string {
	return fmt.Sprintf("%s(%.6f, %.6f ±%.0fm @ %s)",
		p.Provider, p.Latitude, p.Longitude, p.Accuracy, p.Time.UTC().Format(time.RFC3339))
}

// TimeBound is an amount of a time unit. It serves both as the maximum age of
// a cached fix and as the timeout of a live request. The zero value means
// "no bound".
type TimeBound struct {
	Amount int64
	Unit   time.Duration
}

// Within builds a bound of amount units, e.g. Within(30, time.Minute).
func Within(amount int64, unit time.Duration) TimeBound {
	return TimeBound{Amount: amount, Unit: unit}
}

// Bound wraps a plain duration.
func Bound(d time.Duration) TimeBound {
	if d <= 0 {
		return TimeBound{}
	}
	return TimeBound{Amount: int64(d), Unit: time.Nanosecond}
}

// Duration is the bound as a time.Duration, saturating at the largest
// representable one.
func (b TimeBound) Duration() time.Duration {
	if b.IsZero() {
		return 0
	}
	if b.Amount > math.MaxInt64/int64(b.Unit) {
		return math.MaxInt64
	}
	return time.Duration(b.Amount) * b.Unit
}

func (b TimeBound) IsZero() bool {
	return b.Amount <= 0 || b.Unit <= 0
}

func (b TimeBound) String() string {
	if b.IsZero() {
		return "none"
	}
	return b.Duration().String()
}

// Clock supplies the current time; tests replace it.
type Clock func() time.Time
