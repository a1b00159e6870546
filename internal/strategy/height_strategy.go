package strategy

import "math"

// HeightStrategy converts an observer distance and an angle-like reading into a height
type HeightStrategy interface {
	Estimate(distance, angleOrSlope float64) float64
	GetStrategyName() string
}

// LegacyHeightStrategy reproduces the formula the field tool has always used:
//
//	height = distance * sqrt(1 + a^2)
//
// The second input is labelled "angle in degrees" on the form but is used as a
// dimensionless multiplier. That is not the geometric height for an elevation
// angle; it is kept as-is so historical readings stay comparable.
// See TangentHeightStrategy for the trigonometric version.
type LegacyHeightStrategy struct{}

// NewLegacyHeightStrategy creates the legacy strategy
func NewLegacyHeightStrategy() HeightStrategy {
	return &LegacyHeightStrategy{}
}

// Estimate applies distance * sqrt(1 + a^2)
func (s *LegacyHeightStrategy) Estimate(distance, angleOrSlope float64) float64 {
	return distance * math.Sqrt(1+angleOrSlope*angleOrSlope)
}

func (s *LegacyHeightStrategy) GetStrategyName() string {
	return "legacy"
}

// TangentHeightStrategy treats the input as an elevation angle in degrees:
//
//	height = distance * tan(angle * pi / 180)
type TangentHeightStrategy struct{}

// NewTangentHeightStrategy creates the trigonometric strategy
func NewTangentHeightStrategy() HeightStrategy {
	return &TangentHeightStrategy{}
}

// Estimate applies distance * tan(radians(angle))
func (s *TangentHeightStrategy) Estimate(distance, angleDegrees float64) float64 {
	return distance * math.Tan(angleDegrees*math.Pi/180)
}

func (s *TangentHeightStrategy) GetStrategyName() string {
	return "tangent"
}

// EstimationContext holds the strategy chosen by configuration
type EstimationContext struct {
	strategy HeightStrategy
}

// NewEstimationContext creates a context around a strategy
func NewEstimationContext(strategy HeightStrategy) *EstimationContext {
	return &EstimationContext{
		strategy: strategy,
	}
}

// ExecuteEstimate runs the current strategy
func (c *EstimationContext) ExecuteEstimate(distance, angleOrSlope float64) float64 {
	return c.strategy.Estimate(distance, angleOrSlope)
}

// GetCurrentStrategy returns the current strategy name
func (c *EstimationContext) GetCurrentStrategy() string {
	return c.strategy.GetStrategyName()
}
