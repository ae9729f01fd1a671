package shared

import (
	"fmt"
	"math"
)

// Percentage is a non-negative percent value such as a production or loyalty bonus.
// Values are clamped once, at construction.
type Percentage struct {
	value float64
}

// NewPercentage clamps v into [0, +Inf). NaN becomes 0.
func NewPercentage(v float64) Percentage {
	if math.IsNaN(v) || v < 0 {
		return Percentage{}
	}
	if math.IsInf(v, 1) {
		return Percentage{value: math.MaxFloat64}
	}
	return Percentage{value: v}
}

// ZeroPercent is the neutral bonus
var ZeroPercent = Percentage{}

// Value returns the raw percent number (e.g. 30 for 30%)
func (p Percentage) Value() float64 {
	return p.value
}

// Multiplier returns 1 + p/100
func (p Percentage) Multiplier() float64 {
	return 1 + p.value/100
}

// Add returns the clamped sum of two percentages
func (p Percentage) Add(other Percentage) Percentage {
	return NewPercentage(p.value + other.value)
}

// IsZero reports whether the percentage is 0
func (p Percentage) IsZero() bool {
	return p.value == 0
}

func (p Percentage) String() string {
	return fmt.Sprintf("%.1f%%", p.value)
}
