package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngleNorm(t *testing.T) {
	test.That(t, AngleNorm(0), test.ShouldEqual, 0)
	test.That(t, AngleNorm(3*math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, AngleNorm(-3*math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, AngleNorm(-math.Pi/2), test.ShouldAlmostEqual, -math.Pi/2)
}

func TestAllFinite(t *testing.T) {
	test.That(t, AllFinite(1, 2, 3), test.ShouldBeTrue)
	test.That(t, AllFinite(1, math.NaN()), test.ShouldBeFalse)
	test.That(t, AllFinite(math.Inf(1)), test.ShouldBeFalse)
	test.That(t, AllFinite(), test.ShouldBeTrue)
}

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1.0, 1.05, 0.1), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1.0, 1.2, 0.1), test.ShouldBeFalse)
}
