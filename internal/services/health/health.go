// Package health implements hit point arithmetic.
package health

import "math"

// Band is a coarse health category used for colouring
type Band string

const (
	BandHealthy  Band = "healthy"
	BandWounded  Band = "wounded"
	BandCritical Band = "critical"
)

// Quick-adjust amounts offered by the user interfaces
const (
	SmallStep = 1
	LargeStep = 5
)

// Adjust returns current+delta clamped to [0, max].
// A negative max is treated as 0. Overflow saturates instead of wrapping.
func Adjust(current, max, delta int) int {
	return Clamp(saturatingAdd(current, delta), max)
}

// Clamp limits hp to [0, max]
func Clamp(hp, max int) int {
	if max < 0 {
		max = 0
	}
	if hp < 0 {
		return 0
	}
	if hp > max {
		return max
	}
	return hp
}

func saturatingAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	if b < 0 && a < math.MinInt-b {
		return math.MinInt
	}
	return a + b
}

// Percent returns current as a whole percentage of max, in [0, 100]
func Percent(current, max int) int {
	if max <= 0 {
		return 0
	}
	hp := Clamp(current, max)
	return int(int64(hp) * 100 / int64(max))
}

// TextBand classifies health for text colouring: above 75% is healthy,
// above 30% wounded, anything else critical.
func TextBand(current, max int) Band {
	return band(Percent(current, max), 75, 30)
}

// BarBand classifies health for the bar fill, which uses 50% and 25%
func BarBand(current, max int) Band {
	return band(Percent(current, max), 50, 25)
}

func band(pct, healthy, wounded int) Band {
	switch {
	case pct > healthy:
		return BandHealthy
	case pct > wounded:
		return BandWounded
	default:
		return BandCritical
	}
}
