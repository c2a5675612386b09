// Package glyph converts text into weighted 3D point clouds by rasterizing
// each character and stochastically sampling its opaque pixels. The clouds
// are the convergence targets of the fireworks engine.
package glyph

import (
	"math/rand/v2"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Color is an RGB color with components in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Point is a single sampled point in world space. Immutable once sampled.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Color Color   `json:"color"`
}

// PointCloud is an unordered set of sampled points.
type PointCloud []Point

// PaletteEntry is one color of the sampling palette with its draw weight.
type PaletteEntry struct {
	Color  Color
	Weight float64
}

// Config holds the tunable parameters of the sampler.
type Config struct {
	// Density is the probability that an opaque pixel becomes a point.
	Density float64

	// Scale converts glyph pixel offsets to world units.
	Scale float64

	// Spacing is the horizontal world distance between character slots.
	Spacing float64

	// BaseHeight is the world y of a glyph center.
	BaseHeight float64

	// BaseDepth is the world z assigned to every point.
	BaseDepth float64

	// Palette is the weighted color palette points are drawn from.
	Palette []PaletteEntry
}

// DefaultConfig returns a Config with sensible default values. The palette
// is gold-heavy with red and white accents, drawn 60/20/20.
func DefaultConfig() Config {
	return Config{
		Density:    0.3,
		Scale:      0.12,
		Spacing:    14.0,
		BaseHeight: 18.0,
		BaseDepth:  -10.0,
		Palette: []PaletteEntry{
			{Color: Color{R: 1.0, G: 0.84, B: 0.25}, Weight: 0.6},
			{Color: Color{R: 1.0, G: 0.30, B: 0.25}, Weight: 0.2},
			{Color: Color{R: 1.0, G: 0.96, B: 0.88}, Weight: 0.2},
		},
	}
}

// Sampler rasterizes single glyphs through a font.Face and samples their
// opaque pixels into world-space points. The glyph size is the size the face
// was created with.
type Sampler struct {
	face   font.Face
	config Config
	rng    *rand.Rand
}

// NewSampler creates a sampler using the given face and configuration.
func NewSampler(face font.Face, config Config) *Sampler {
	return &Sampler{
		face:   face,
		config: config,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetRand replaces the sampler's random source. Tests inject a seeded source
// to make point counts reproducible.
func (s *Sampler) SetRand(rng *rand.Rand) {
	s.rng = rng
}

// Sample converts text into a point cloud. Characters are laid out left to
// right in fixed-width slots with the whole string centered around x=0.
// An empty string yields an empty cloud.
func (s *Sampler) Sample(text string) PointCloud {
	runes := []rune(text)
	if len(runes) == 0 {
		return PointCloud{}
	}

	var cloud PointCloud
	n := len(runes)
	for i, r := range runes {
		slotOffset := (float64(i) - float64(n-1)/2) * s.config.Spacing
		cloud = append(cloud, s.sampleRune(r, slotOffset)...)
	}
	return cloud
}

// sampleRune rasterizes one rune and samples its opaque pixels, placing the
// resulting points around the given horizontal slot offset.
func (s *Sampler) sampleRune(r rune, slotOffset float64) PointCloud {
	dot := fixed.Point26_6{}
	dr, mask, maskp, _, ok := s.face.Glyph(dot, r)
	if !ok || dr.Empty() {
		return nil
	}

	centerX := float64(dr.Min.X+dr.Max.X) / 2
	centerY := float64(dr.Min.Y+dr.Max.Y) / 2

	var points PointCloud
	for py := dr.Min.Y; py < dr.Max.Y; py++ {
		for px := dr.Min.X; px < dr.Max.X; px++ {
			_, _, _, a := mask.At(maskp.X+px-dr.Min.X, maskp.Y+py-dr.Min.Y).RGBA()
			if a <= 0x7fff { // require more than 50% coverage
				continue
			}
			if s.rng.Float64() >= s.config.Density {
				continue
			}

			points = append(points, Point{
				X: (float64(px)-centerX)*s.config.Scale + slotOffset,
				// Raster y grows downward; world y grows upward.
				Y:     (centerY-float64(py))*s.config.Scale + s.config.BaseHeight,
				Z:     s.config.BaseDepth,
				Color: s.pickColor(),
			})
		}
	}
	return points
}

// pickColor draws a palette color by cumulative weight.
func (s *Sampler) pickColor() Color {
	total := 0.0
	for _, e := range s.config.Palette {
		total += e.Weight
	}
	if total <= 0 {
		return Color{R: 1, G: 1, B: 1}
	}

	roll := s.rng.Float64() * total
	for _, e := range s.config.Palette {
		roll -= e.Weight
		if roll < 0 {
			return e.Color
		}
	}
	return s.config.Palette[len(s.config.Palette)-1].Color
}

// Jitter returns a copy of the cloud with each axis of every point perturbed
// by independent uniform noise in [-amount/2, +amount/2]. The input cloud is
// not mutated.
func (s *Sampler) Jitter(points PointCloud, amount float64) PointCloud {
	out := make(PointCloud, len(points))
	for i, p := range points {
		out[i] = Point{
			X:     p.X + (s.rng.Float64()-0.5)*amount,
			Y:     p.Y + (s.rng.Float64()-0.5)*amount,
			Z:     p.Z + (s.rng.Float64()-0.5)*amount,
			Color: p.Color,
		}
	}
	return out
}
