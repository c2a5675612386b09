// Package fireworks owns the pooled particle engine that flies launch
// particles toward sampled glyph targets, bursts them, and fades the embers.
package fireworks

import (
	"github.com/xinyuewang/hanabi/internal/glyph"
	"github.com/xinyuewang/hanabi/internal/vmath"
)

// Phase is a particle's lifecycle stage.
type Phase int

const (
	// PhaseInactive marks a pool slot that is not in use.
	PhaseInactive Phase = iota
	// PhaseLaunch rises from the launch origin toward the target point.
	PhaseLaunch
	// PhaseExplode is the short bright flash at the target.
	PhaseExplode
	// PhaseFade is the ballistic ember fading to transparent.
	PhaseFade
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseLaunch:
		return "launch"
	case PhaseExplode:
		return "explode"
	case PhaseFade:
		return "fade"
	default:
		return "inactive"
	}
}

// Particle is one reusable pool record. A particle is owned exclusively by
// its pool slot; it is never constructed or freed at runtime.
type Particle struct {
	Position vmath.Vec3
	Velocity vmath.Vec3
	Origin   vmath.Vec3 // launch start, fixed for the rise interpolation
	Target   vmath.Vec3
	Color    glyph.Color
	Life     float64 // elapsed seconds in the current phase
	MaxLife  float64 // duration of the current phase
	Phase    Phase
	Size     float64
	Alpha    float64

	slot int // pool slot index, set once at pool construction
}

// Active reports whether the particle currently occupies its pool slot.
func (p *Particle) Active() bool {
	return p.Phase != PhaseInactive
}

// enterPhase resets the particle's phase clock.
func (p *Particle) enterPhase(phase Phase, duration float64) {
	p.Phase = phase
	p.Life = 0
	p.MaxLife = duration
}

// lifeRatio returns the clamped progress through the current phase.
func (p *Particle) lifeRatio() float64 {
	if p.MaxLife <= 0 {
		return 1
	}
	return vmath.Clamp01(p.Life / p.MaxLife)
}
