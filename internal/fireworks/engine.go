package fireworks

import (
	"log"
	"math"
	"math/rand/v2"

	"github.com/xinyuewang/hanabi/internal/glyph"
	"github.com/xinyuewang/hanabi/internal/vmath"
)

// Config holds the tunable parameters of the fireworks engine.
type Config struct {
	// PoolCapacity is the fixed particle pool size.
	PoolCapacity int

	// LaunchHeight is the world y particles rise from.
	LaunchHeight float64

	// LaunchSpread is the horizontal spread of launch origins.
	LaunchSpread float64

	// DepthJitter perturbs the launch origin depth around the target depth.
	DepthJitter float64

	// LaunchSpeed scales the initial velocity toward the target.
	LaunchSpeed float64

	// RiseDuration is the seconds a launch particle takes to reach its target.
	RiseDuration float64

	// LaunchGravity is the downward sag applied during the rise.
	LaunchGravity float64

	// ExplodeDuration is the length of the bright flash at the target.
	ExplodeDuration float64

	// FadeDuration is the seconds an ember takes to fade out.
	FadeDuration float64

	// BurstCount is the number of secondary particles spawned per burst.
	BurstCount int

	// BurstSpeedMin and BurstSpeedMax bound the random ember speed.
	BurstSpeedMin float64
	BurstSpeedMax float64

	// Gravity is the downward acceleration applied to fading embers.
	Gravity float64

	// Drag is the per-second velocity damping of fading embers.
	Drag float64

	// LaunchSize, ExplodeSize and EmberSize are the render point sizes.
	LaunchSize  float64
	ExplodeSize float64
	EmberSize   float64

	// DepthDim controls how strongly far target depths dim a particle.
	DepthDim float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		PoolCapacity:    6000,
		LaunchHeight:    -8.0,
		LaunchSpread:    6.0,
		DepthJitter:     1.5,
		LaunchSpeed:     18.0,
		RiseDuration:    1.4,
		LaunchGravity:   2.5,
		ExplodeDuration: 0.18,
		FadeDuration:    1.6,
		BurstCount:      6,
		BurstSpeedMin:   0.8,
		BurstSpeedMax:   3.2,
		Gravity:         4.0,
		Drag:            0.6,
		LaunchSize:      0.8,
		ExplodeSize:     2.6,
		EmberSize:       0.45,
		DepthDim:        0.02,
	}
}

// View is the renderer-facing state of one active particle: plain numbers,
// no draw calls.
type View struct {
	Position vmath.Vec3  `json:"position"`
	Color    glyph.Color `json:"color"`
	Size     float64     `json:"size"`
	Alpha    float64     `json:"alpha"`
}

// Engine drives one fireworks run at a time over a fixed particle pool.
type Engine struct {
	config Config
	pool   *Pool
	rng    *rand.Rand
}

// NewEngine creates an engine with a preallocated pool.
func NewEngine(config Config) *Engine {
	return &Engine{
		config: config,
		pool:   NewPool(config.PoolCapacity),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetRand replaces the engine's random source for deterministic tests.
func (e *Engine) SetRand(rng *rand.Rand) {
	e.rng = rng
}

// IsRunning reports whether any particle is active. The engine is idle
// exactly when the active count reaches zero.
func (e *Engine) IsRunning() bool {
	return e.pool.ActiveCount() > 0
}

// ActiveCount returns the number of active particles.
func (e *Engine) ActiveCount() int {
	return e.pool.ActiveCount()
}

// PoolCapacity returns the fixed pool capacity.
func (e *Engine) PoolCapacity() int {
	return e.pool.Capacity()
}

// Launch starts a fireworks run toward the given target points, one launch
// particle per point. A run already in progress makes Launch a logged no-op.
// Pool exhaustion truncates the launch silently: the show is thinner, never
// an error.
func (e *Engine) Launch(targets glyph.PointCloud) bool {
	if e.IsRunning() {
		log.Printf("fireworks: launch ignored, run already in progress")
		return false
	}

	launched := 0
	for _, tp := range targets {
		pt := e.pool.Alloc()
		if pt == nil {
			break
		}
		e.initLaunch(pt, tp)
		launched++
	}

	log.Printf("fireworks: launched %d of %d targets", launched, len(targets))
	return launched > 0
}

// initLaunch places a fresh particle at a launch origin aimed at its target.
func (e *Engine) initLaunch(pt *Particle, tp glyph.Point) {
	target := vmath.Vec3{X: tp.X, Y: tp.Y, Z: tp.Z}
	origin := vmath.Vec3{
		X: (e.rng.Float64() - 0.5) * e.config.LaunchSpread,
		Y: e.config.LaunchHeight,
		Z: tp.Z + (e.rng.Float64()-0.5)*e.config.DepthJitter,
	}

	speed := e.config.LaunchSpeed * (0.9 + 0.2*e.rng.Float64())

	pt.Origin = origin
	pt.Position = origin
	pt.Target = target
	pt.Velocity = target.Sub(origin).Normalized().Scale(speed)
	pt.Color = tp.Color
	pt.Size = e.config.LaunchSize
	pt.Alpha = 1
	pt.enterPhase(PhaseLaunch, e.config.RiseDuration)
}

// Update advances every active particle by dt seconds, dispatching on phase.
func (e *Engine) Update(dt float64) {
	i := 0
	for i < e.pool.ActiveCount() {
		pt := e.pool.activeAt(i)
		pt.Life += dt

		switch pt.Phase {
		case PhaseLaunch:
			e.updateLaunch(pt)
		case PhaseExplode:
			e.updateExplode(pt)
		case PhaseFade:
			if e.updateFade(pt, dt) {
				// Slot reclaimed; the swapped-in index is revisited.
				e.pool.releaseAt(i)
				continue
			}
		}
		i++
	}
}

// updateLaunch eases the particle toward its target with a gravity sag, and
// bursts it on arrival.
func (e *Engine) updateLaunch(pt *Particle) {
	t := pt.lifeRatio()
	pt.Position = vmath.Lerp(pt.Origin, pt.Target, vmath.EaseOutCubic(t))
	pt.Position.Y -= 0.5 * e.config.LaunchGravity * pt.Life * pt.Life

	if t >= 1 {
		pt.Position = pt.Target
		pt.Size = e.config.ExplodeSize
		pt.enterPhase(PhaseExplode, e.config.ExplodeDuration)
		e.burst(pt)
	}
}

// updateExplode holds the bright flash in place until its duration elapses.
func (e *Engine) updateExplode(pt *Particle) {
	if pt.lifeRatio() >= 1 {
		pt.Size = e.config.EmberSize * 1.5
		pt.enterPhase(PhaseFade, e.config.FadeDuration)
	}
}

// updateFade integrates ember ballistics (symplectic Euler: velocity first,
// then position) and fades alpha linearly. Returns true when the particle
// has finished and its slot should be reclaimed.
func (e *Engine) updateFade(pt *Particle, dt float64) bool {
	pt.Velocity.Y -= e.config.Gravity * dt
	pt.Velocity = pt.Velocity.Scale(1 - e.config.Drag*dt)
	pt.Position = pt.Position.Add(pt.Velocity.Scale(dt))

	t := pt.lifeRatio()
	pt.Alpha = 1 - t

	return t >= 1
}

// burst spawns secondary embers at the primary's target. Embers skip the
// explode flash and fade directly, inheriting the primary's color. Pool
// exhaustion truncates the burst.
func (e *Engine) burst(primary *Particle) {
	for n := 0; n < e.config.BurstCount; n++ {
		ember := e.pool.Alloc()
		if ember == nil {
			return
		}

		speed := e.config.BurstSpeedMin +
			e.rng.Float64()*(e.config.BurstSpeedMax-e.config.BurstSpeedMin)

		ember.Origin = primary.Target
		ember.Position = primary.Target
		ember.Target = primary.Target
		ember.Velocity = e.sphereDirection().Scale(speed)
		ember.Color = primary.Color
		ember.Size = e.config.EmberSize
		ember.Alpha = 1
		ember.enterPhase(PhaseFade, e.config.FadeDuration)
	}
}

// sphereDirection samples a uniformly distributed unit direction via
// spherical coordinates.
func (e *Engine) sphereDirection() vmath.Vec3 {
	theta := 2 * math.Pi * e.rng.Float64()
	phi := math.Acos(2*e.rng.Float64() - 1)
	sinPhi := math.Sin(phi)
	return vmath.Vec3{
		X: sinPhi * math.Cos(theta),
		Y: sinPhi * math.Sin(theta),
		Z: math.Cos(phi),
	}
}

// depthDim scales opacity down with target depth so glyph points far from
// the camera read dimmer. Independent of the fade-phase alpha.
func (e *Engine) depthDim(z float64) float64 {
	return 1 / (1 + e.config.DepthDim*math.Abs(z))
}

// Reset forcibly deactivates all particles. Used for cleanup between
// rounds, not during normal completion.
func (e *Engine) Reset() {
	e.pool.ReleaseAll()
}

// Views appends the renderer-facing state of every active particle to dst
// and returns it. The effective alpha combines the phase alpha with the
// depth dimming of the particle's target.
func (e *Engine) Views(dst []View) []View {
	for i := 0; i < e.pool.ActiveCount(); i++ {
		pt := e.pool.activeAt(i)
		dst = append(dst, View{
			Position: pt.Position,
			Color:    pt.Color,
			Size:     pt.Size,
			Alpha:    pt.Alpha * e.depthDim(pt.Target.Z),
		})
	}
	return dst
}
