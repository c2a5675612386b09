package vmath

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestVecOps(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: -1, Y: 0.5, Z: 2}

	t.Run("add and sub are inverses", func(t *testing.T) {
		got := a.Add(b).Sub(b)
		if math.Abs(got.X-a.X) > epsilon || math.Abs(got.Y-a.Y) > epsilon || math.Abs(got.Z-a.Z) > epsilon {
			t.Errorf("Add then Sub = %+v, want %+v", got, a)
		}
	})

	t.Run("scale", func(t *testing.T) {
		got := a.Scale(2)
		want := Vec3{X: 2, Y: 4, Z: 6}
		if got != want {
			t.Errorf("Scale(2) = %+v, want %+v", got, want)
		}
	})

	t.Run("length", func(t *testing.T) {
		v := Vec3{X: 3, Y: 4, Z: 0}
		if math.Abs(v.Length()-5) > epsilon {
			t.Errorf("Length() = %f, want 5", v.Length())
		}
	})

	t.Run("normalized has unit length", func(t *testing.T) {
		n := a.Normalized()
		if math.Abs(n.Length()-1) > epsilon {
			t.Errorf("normalized length = %f, want 1", n.Length())
		}
	})

	t.Run("normalizing zero stays zero", func(t *testing.T) {
		if got := (Vec3{}).Normalized(); got != (Vec3{}) {
			t.Errorf("Normalized() of zero = %+v, want zero", got)
		}
	})
}

func TestLerp(t *testing.T) {
	a := Vec3{X: 0, Y: 0, Z: 0}
	b := Vec3{X: 10, Y: -4, Z: 2}

	mid := Lerp(a, b, 0.5)
	want := Vec3{X: 5, Y: -2, Z: 1}
	if mid != want {
		t.Errorf("Lerp(0.5) = %+v, want %+v", mid, want)
	}

	if Lerp(a, b, 0) != a {
		t.Error("Lerp(0) should return the start")
	}
	if Lerp(a, b, 1) != b {
		t.Error("Lerp(1) should return the end")
	}
}

func TestEaseOutCubic(t *testing.T) {
	t.Run("endpoints", func(t *testing.T) {
		if EaseOutCubic(0) != 0 {
			t.Errorf("EaseOutCubic(0) = %f, want 0", EaseOutCubic(0))
		}
		if EaseOutCubic(1) != 1 {
			t.Errorf("EaseOutCubic(1) = %f, want 1", EaseOutCubic(1))
		}
	})

	t.Run("clamps outside the unit interval", func(t *testing.T) {
		if EaseOutCubic(-1) != 0 {
			t.Error("negative input should clamp to 0")
		}
		if EaseOutCubic(2) != 1 {
			t.Error("input above 1 should clamp to 1")
		}
	})

	t.Run("monotonically increasing", func(t *testing.T) {
		prev := 0.0
		for i := 1; i <= 100; i++ {
			v := EaseOutCubic(float64(i) / 100)
			if v < prev {
				t.Fatalf("EaseOutCubic not monotonic at %d", i)
			}
			prev = v
		}
	})

	t.Run("front-loaded", func(t *testing.T) {
		// Ease-out covers more than half the distance by the midpoint.
		if EaseOutCubic(0.5) <= 0.5 {
			t.Errorf("EaseOutCubic(0.5) = %f, want > 0.5", EaseOutCubic(0.5))
		}
	})
}
