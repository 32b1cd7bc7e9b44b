// Package leveling maps cumulative points to levels on an exponential curve.
package leveling

import "math"

const (
	DefaultBasePoints = 100
	DefaultMultiplier = 1.5
)

// Curve is an exponential leveling curve. The threshold for the first level-up
// is BasePoints; each later threshold is the previous one times Multiplier,
// truncated to an integer before the next step.
type Curve struct {
	BasePoints int64
	Multiplier float64
}

// Position is where a cumulative point total lands on the curve.
type Position struct {
	Level              int   `json:"level"`
	PointsIntoLevel    int64 `json:"points_into_level"`
	PointsForNextLevel int64 `json:"points_for_next_level"`
}

// DefaultCurve returns the 100 / 1.5 curve.
func DefaultCurve() Curve {
	return Curve{BasePoints: DefaultBasePoints, Multiplier: DefaultMultiplier}
}

// PointsRequiredForLevel returns floor(BasePoints * Multiplier^(level-2)) for
// level >= 2 and 0 otherwise.
func (c Curve) PointsRequiredForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(math.Floor(float64(c.BasePoints) * math.Pow(c.Multiplier, float64(level-2))))
}

// CumulativePointsToReach sums PointsRequiredForLevel from level 1 up to level.
func (c Curve) CumulativePointsToReach(level int) int64 {
	var total int64
	for l := 1; l <= level; l++ {
		total += c.PointsRequiredForLevel(l)
	}
	return total
}

// Resolve walks the curve from level 1, spending thresholds while the
// remaining total covers them. It must stay iterative: truncating each
// threshold before multiplying drifts from the closed form at higher levels,
// and stored levels were computed this way.
func (c Curve) Resolve(totalPoints int64) Position {
	if totalPoints < 0 {
		totalPoints = 0
	}
	level := 1
	required := c.BasePoints
	if required < 1 {
		required = 1
	}
	remaining := totalPoints
	for remaining >= required {
		remaining -= required
		level++
		required = c.next(required)
	}
	return Position{Level: level, PointsIntoLevel: remaining, PointsForNextLevel: required}
}

// next returns the following threshold, saturating instead of overflowing and
// always growing so Resolve terminates.
func (c Curve) next(required int64) int64 {
	f := float64(required) * c.Multiplier
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	n := int64(f)
	if n <= required {
		n = required + 1
	}
	return n
}

// ProgressPercent is floor(pointsInto / pointsForNext * 100), 0 when the
// denominator is not positive.
func (p Position) ProgressPercent() int {
	if p.PointsForNextLevel <= 0 {
		return 0
	}
	pct := int(math.Floor(float64(p.PointsIntoLevel) / float64(p.PointsForNextLevel) * 100))
	// float64 rounding near MaxInt64 can reach 100 while into < next.
	if pct >= 100 && p.PointsIntoLevel < p.PointsForNextLevel {
		pct = 99
	}
	return pct
}

// PointsToNextLevel is how many more points complete the current level.
func (p Position) PointsToNextLevel() int64 {
	return p.PointsForNextLevel - p.PointsIntoLevel
}
