// Package height turns a distance and angle reading into an estimated tree height.
package height

import (
	"go-tree-inspector/internal/strategy"
	"go-tree-inspector/pkg/models"
	"go-tree-inspector/pkg/validation"
)

// Estimator is a pure function of its inputs; it holds no per-call state.
type Estimator struct {
	context   *strategy.EstimationContext
	validator *validation.MeasurementValidator
}

// NewEstimator wires a strategy with the validator that matches its domain
func NewEstimator(s strategy.HeightStrategy) *Estimator {
	v := validation.NewMeasurementValidator()
	if s.GetStrategyName() == "tangent" {
		v = validation.NewMeasurementValidatorForTangent()
	}
	return &Estimator{
		context:   strategy.NewEstimationContext(s),
		validator: v,
	}
}

// Formula names the configured strategy
func (e *Estimator) Formula() string {
	return e.context.GetCurrentStrategy()
}

// Estimate applies the formula to already-validated input. It has no error
// path: finite positive inputs always give a finite, non-negative height.
func (e *Estimator) Estimate(distance, angleOrSlope float64) models.HeightEstimate {
	return models.HeightEstimate{
		HeightUnits: e.context.ExecuteEstimate(distance, angleOrSlope),
		Formula:     e.Formula(),
	}
}

// Validate checks a form submission against the configured formula's domain
func (e *Estimator) Validate(input models.HeightMeasurementInput) error {
	return e.validator.Validate(input)
}

// Measure validates a form submission and then estimates
func (e *Estimator) Measure(input models.HeightMeasurementInput) (models.HeightEstimate, error) {
	if err := e.Validate(input); err != nil {
		return models.HeightEstimate{}, err
	}
	return e.Estimate(input.Distance, input.AngleOrSlope), nil
}
