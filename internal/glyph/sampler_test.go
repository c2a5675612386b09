package glyph

import (
	"math"
	"math/rand/v2"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 13))
}

func newTestSampler(config Config) *Sampler {
	s := NewSampler(basicfont.Face7x13, config)
	s.SetRand(seededRand())
	return s
}

// opaquePixelCount counts the >50% coverage pixels of a rune the same way
// the sampler sees them.
func opaquePixelCount(t *testing.T, face font.Face, r rune) int {
	t.Helper()

	dr, mask, maskp, _, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		t.Fatalf("face has no glyph for %q", r)
	}

	count := 0
	for py := dr.Min.Y; py < dr.Max.Y; py++ {
		for px := dr.Min.X; px < dr.Max.X; px++ {
			_, _, _, a := mask.At(maskp.X+px-dr.Min.X, maskp.Y+py-dr.Min.Y).RGBA()
			if a > 0x7fff {
				count++
			}
		}
	}
	return count
}

func TestSampleEmptyText(t *testing.T) {
	s := newTestSampler(DefaultConfig())

	cloud := s.Sample("")
	if len(cloud) != 0 {
		t.Errorf("Sample(\"\") returned %d points, want 0", len(cloud))
	}
}

func TestSampleDensity(t *testing.T) {
	t.Run("full density keeps every opaque pixel", func(t *testing.T) {
		config := DefaultConfig()
		config.Density = 1.0
		s := newTestSampler(config)

		want := opaquePixelCount(t, basicfont.Face7x13, '8')
		cloud := s.Sample("8")
		if len(cloud) != want {
			t.Errorf("point count = %d, want %d opaque pixels", len(cloud), want)
		}
	})

	t.Run("partial density lands in a statistical band", func(t *testing.T) {
		config := DefaultConfig()
		config.Density = 0.3
		s := newTestSampler(config)

		// Many copies of the same glyph to get a stable sample size.
		text := "88888888888888888888"
		opaque := opaquePixelCount(t, basicfont.Face7x13, '8') * len(text)
		cloud := s.Sample(text)

		expected := float64(opaque) * config.Density
		if f := float64(len(cloud)); f < expected*0.7 || f > expected*1.3 {
			t.Errorf("point count = %d, want within 30%% of %.0f", len(cloud), expected)
		}
	})

	t.Run("zero density yields no points", func(t *testing.T) {
		config := DefaultConfig()
		config.Density = 0
		s := newTestSampler(config)

		if cloud := s.Sample("8"); len(cloud) != 0 {
			t.Errorf("point count = %d, want 0 at zero density", len(cloud))
		}
	})
}

func TestSampleColors(t *testing.T) {
	config := DefaultConfig()
	config.Density = 1.0
	s := newTestSampler(config)

	cloud := s.Sample("888")
	if len(cloud) == 0 {
		t.Fatal("expected points")
	}

	seen := map[Color]int{}
	for _, p := range cloud {
		seen[p.Color]++
	}

	for c := range seen {
		found := false
		for _, e := range config.Palette {
			if e.Color == c {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("point color %+v not in palette", c)
		}
	}

	// The 60% color should dominate the two 20% colors over ~hundreds of draws.
	dominant := seen[config.Palette[0].Color]
	for _, e := range config.Palette[1:] {
		if seen[e.Color] >= dominant {
			t.Errorf("accent color %+v drawn %d times, dominant only %d",
				e.Color, seen[e.Color], dominant)
		}
	}
}

func TestSampleLayout(t *testing.T) {
	config := DefaultConfig()
	config.Density = 1.0
	s := newTestSampler(config)

	t.Run("single character centers around x zero", func(t *testing.T) {
		cloud := s.Sample("8")
		var sum float64
		for _, p := range cloud {
			sum += p.X
		}
		mean := sum / float64(len(cloud))
		if math.Abs(mean) > config.Spacing/4 {
			t.Errorf("mean x = %f, want near 0", mean)
		}
	})

	t.Run("two characters straddle the center", func(t *testing.T) {
		cloud := s.Sample("88")
		left, right := 0, 0
		for _, p := range cloud {
			if p.X < 0 {
				left++
			} else {
				right++
			}
		}
		if left == 0 || right == 0 {
			t.Errorf("points split %d/%d across x=0, want both sides populated", left, right)
		}
	})

	t.Run("slots advance by spacing", func(t *testing.T) {
		one := s.Sample("8")
		three := s.Sample("888")

		maxAbs := func(cloud PointCloud) float64 {
			m := 0.0
			for _, p := range cloud {
				if a := math.Abs(p.X); a > m {
					m = a
				}
			}
			return m
		}

		if maxAbs(three) < maxAbs(one)+config.Spacing/2 {
			t.Error("three-character cloud should extend at least a slot beyond one character")
		}
	})

	t.Run("height and depth use the configured base", func(t *testing.T) {
		cloud := s.Sample("8")
		for _, p := range cloud {
			if math.Abs(p.Y-config.BaseHeight) > 10 {
				t.Fatalf("point y = %f, want near base height %f", p.Y, config.BaseHeight)
			}
			if p.Z != config.BaseDepth {
				t.Fatalf("point z = %f, want base depth %f", p.Z, config.BaseDepth)
			}
		}
	})
}

func TestJitter(t *testing.T) {
	config := DefaultConfig()
	config.Density = 1.0
	s := newTestSampler(config)

	original := s.Sample("8")
	snapshot := make(PointCloud, len(original))
	copy(snapshot, original)

	jittered := s.Jitter(original, 2.0)

	t.Run("does not mutate the input", func(t *testing.T) {
		for i := range original {
			if original[i] != snapshot[i] {
				t.Fatal("Jitter mutated its input cloud")
			}
		}
	})

	t.Run("stays within half the amount per axis", func(t *testing.T) {
		if len(jittered) != len(original) {
			t.Fatalf("jittered count = %d, want %d", len(jittered), len(original))
		}
		for i := range jittered {
			if math.Abs(jittered[i].X-original[i].X) > 1.0 ||
				math.Abs(jittered[i].Y-original[i].Y) > 1.0 ||
				math.Abs(jittered[i].Z-original[i].Z) > 1.0 {
				t.Fatal("jitter exceeded amount/2 on an axis")
			}
		}
	})

	t.Run("keeps colors", func(t *testing.T) {
		for i := range jittered {
			if jittered[i].Color != original[i].Color {
				t.Fatal("jitter changed a point color")
			}
		}
	})
}
