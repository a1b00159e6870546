package height

import (
	"math"
	"testing"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/internal/strategy"
	"go-tree-inspector/pkg/models"
)

func TestEstimator_KnownValues(t *testing.T) {
	e := NewEstimator(strategy.NewLegacyHeightStrategy())

	tests := []struct {
		distance, angle, want float64
	}{
		{10, 0, 10.0},
		{10, 1, 14.142},
		{5, 2, 11.180},
	}
	for _, tt := range tests {
		got := e.Estimate(tt.distance, tt.angle)
		if math.Abs(got.HeightUnits-tt.want) > 1e-3 {
			t.Errorf("Estimate(%v, %v) = %v, want %v", tt.distance, tt.angle, got.HeightUnits, tt.want)
		}
		if got.Formula != "legacy" {
			t.Errorf("Expected legacy formula, got %s", got.Formula)
		}
	}
}

func TestEstimator_MeasureRejectsBeforeFormula(t *testing.T) {
	e := NewEstimator(strategy.NewLegacyHeightStrategy())

	bad := []models.HeightMeasurementInput{
		{Distance: 0, AngleOrSlope: 1},
		{Distance: 10, AngleOrSlope: 0},
		{Distance: -1, AngleOrSlope: 2},
		{Distance: math.NaN(), AngleOrSlope: 2},
		{Distance: 5, AngleOrSlope: math.Inf(1)},
	}
	for _, in := range bad {
		got, err := e.Measure(in)
		if err == nil {
			t.Errorf("Expected validation error for %+v", in)
			continue
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			t.Errorf("Expected validation error type for %+v, got %v", in, err)
		}
		if got != (models.HeightEstimate{}) {
			t.Errorf("Expected zero estimate on rejection, got %+v", got)
		}
	}
}

func TestEstimator_MeasureDoesNotMutateInput(t *testing.T) {
	e := NewEstimator(strategy.NewLegacyHeightStrategy())
	in := models.HeightMeasurementInput{Distance: 12.5, AngleOrSlope: 3.0}
	before := in

	got, err := e.Measure(in)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.HeightUnits-39.53) > 0.01 {
		t.Errorf("Expected ~39.53, got %v", got.HeightUnits)
	}
	if in != before {
		t.Errorf("Input changed: %+v", in)
	}
}

func TestEstimator_TangentBoundsAngle(t *testing.T) {
	e := NewEstimator(strategy.NewTangentHeightStrategy())
	if e.Formula() != "tangent" {
		t.Fatalf("Expected tangent, got %s", e.Formula())
	}

	if _, err := e.Measure(models.HeightMeasurementInput{Distance: 10, AngleOrSlope: 90}); err == nil {
		t.Error("Expected 90 degrees to be rejected for the tangent formula")
	}

	got, err := e.Measure(models.HeightMeasurementInput{Distance: 10, AngleOrSlope: 45})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.HeightUnits-10) > 1e-9 {
		t.Errorf("Expected 10, got %v", got.HeightUnits)
	}
}

func TestEstimator_ValidateDoesNotEstimate(t *testing.T) {
	e := NewEstimator(strategy.NewTangentHeightStrategy())

	if err := e.Validate(models.HeightMeasurementInput{Distance: 10, AngleOrSlope: 30}); err != nil {
		t.Errorf("Expected valid input, got %v", err)
	}
	if err := e.Validate(models.HeightMeasurementInput{Distance: 10, AngleOrSlope: 90}); err == nil {
		t.Error("Expected 90 degrees to be rejected for the tangent formula")
	}
}
