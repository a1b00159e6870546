package validation

import (
	"math"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/pkg/models"
)

// MaxTangentAngle bounds the elevation angle when the tangent formula is used;
// tan diverges at 90 degrees.
const MaxTangentAngle = 90.0

// MeasurementValidator is the input-collection boundary in front of the
// height estimator. The estimator itself assumes validated input.
type MeasurementValidator struct {
	boundAngle bool
}

// NewMeasurementValidator creates a validator for the legacy formula
func NewMeasurementValidator() *MeasurementValidator {
	return &MeasurementValidator{}
}

// NewMeasurementValidatorForTangent also rejects angles at or above 90 degrees
func NewMeasurementValidatorForTangent() *MeasurementValidator {
	return &MeasurementValidator{boundAngle: true}
}

// Validate rejects non-finite and non-positive values
func (v *MeasurementValidator) Validate(input models.HeightMeasurementInput) error {
	if !isPositiveFinite(input.Distance) {
		return apperrors.NewValidationError("distance must be a finite number greater than 0", nil)
	}
	if !isPositiveFinite(input.AngleOrSlope) {
		return apperrors.NewValidationError("angle must be a finite number greater than 0", nil)
	}
	if v.boundAngle && input.AngleOrSlope >= MaxTangentAngle {
		return apperrors.NewValidationError("angle must be below 90 degrees", nil)
	}
	return nil
}

func isPositiveFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x > 0
}
