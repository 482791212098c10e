package utils

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// One degree of longitude at the equator is about 111.2 km.
	got := HaversineKm(0, 0, 0, 1)
	if math.Abs(got-111.2) > 1 {
		t.Fatalf("equator degree = %.2f km, want ~111.2", got)
	}

	// Berlin to Hamburg, roughly 255 km.
	got = HaversineKm(52.52, 13.405, 53.551, 9.993)
	if math.Abs(got-255) > 5 {
		t.Fatalf("Berlin-Hamburg = %.2f km, want ~255", got)
	}
}

func TestHaversineKmZeroDistance(t *testing.T) {
	if got := HaversineKm(48.137, 11.575, 48.137, 11.575); got != 0 {
		t.Fatalf("identical points = %v, want 0", got)
	}
}

func TestHaversineKmSymmetry(t *testing.T) {
	a := HaversineKm(52.52, 13.405, 48.137, 11.575)
	b := HaversineKm(48.137, 11.575, 52.52, 13.405)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("asymmetric: %v vs %v", a, b)
	}
}
