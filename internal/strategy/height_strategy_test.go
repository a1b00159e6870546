package strategy

import (
	"math"
	"testing"
)

const tolerance = 1e-3

func TestLegacyHeightStrategy_KnownValues(t *testing.T) {
	s := NewLegacyHeightStrategy()

	tests := []struct {
		distance, angle, want float64
	}{
		{10, 0, 10.0},
		{10, 1, 14.142},
		{5, 2, 11.180},
		{12.5, 3, 39.528},
	}

	for _, tt := range tests {
		got := s.Estimate(tt.distance, tt.angle)
		if math.Abs(got-tt.want) > tolerance {
			t.Errorf("Estimate(%v, %v) = %v, want %v", tt.distance, tt.angle, got, tt.want)
		}
	}
}

func TestLegacyHeightStrategy_Monotonic(t *testing.T) {
	s := NewLegacyHeightStrategy()

	prev := s.Estimate(0.1, 2)
	for d := 0.2; d <= 100; d += 0.1 {
		h := s.Estimate(d, 2)
		if h <= prev {
			t.Fatalf("Expected strictly increasing in distance at %v: %v <= %v", d, h, prev)
		}
		prev = h
	}

	prev = s.Estimate(10, 0.1)
	for a := 0.2; a <= 90; a += 0.1 {
		h := s.Estimate(10, a)
		if h <= prev {
			t.Fatalf("Expected strictly increasing in angle at %v: %v <= %v", a, h, prev)
		}
		prev = h
	}
}

func TestTangentHeightStrategy(t *testing.T) {
	s := NewTangentHeightStrategy()

	if got := s.Estimate(10, 45); math.Abs(got-10) > tolerance {
		t.Errorf("Expected 10 at 45 degrees, got %v", got)
	}
	if got := s.Estimate(20, 30); math.Abs(got-11.547) > tolerance {
		t.Errorf("Expected ~11.547 at 30 degrees, got %v", got)
	}
}

func TestEstimationContext(t *testing.T) {
	ctx := NewEstimationContext(NewLegacyHeightStrategy())
	if ctx.GetCurrentStrategy() != "legacy" {
		t.Errorf("Expected legacy, got %s", ctx.GetCurrentStrategy())
	}
	if got := ctx.ExecuteEstimate(10, 1); math.Abs(got-math.Sqrt2*10) > tolerance {
		t.Errorf("Unexpected estimate %v", got)
	}

	tan := NewEstimationContext(NewTangentHeightStrategy())
	if tan.GetCurrentStrategy() != "tangent" {
		t.Errorf("Expected tangent, got %s", tan.GetCurrentStrategy())
	}
}
