package fireworks

import (
	"math/rand/v2"
	"testing"

	"github.com/xinyuewang/hanabi/internal/glyph"
)

func testConfig() Config {
	config := DefaultConfig()
	config.PoolCapacity = 64
	config.RiseDuration = 0.5
	config.ExplodeDuration = 0.1
	config.FadeDuration = 0.5
	config.BurstCount = 3
	return config
}

func newTestEngine(config Config) *Engine {
	e := NewEngine(config)
	e.SetRand(rand.New(rand.NewPCG(3, 11)))
	return e
}

func targetCloud(n int) glyph.PointCloud {
	cloud := make(glyph.PointCloud, n)
	for i := range cloud {
		cloud[i] = glyph.Point{
			X:     float64(i) - float64(n)/2,
			Y:     20,
			Z:     -10,
			Color: glyph.Color{R: 1, G: 0.8, B: 0.2},
		}
	}
	return cloud
}

// runToIdle ticks the engine until it goes idle, failing if it never does.
func runToIdle(t *testing.T, e *Engine) int {
	t.Helper()

	const dt = 1.0 / 60.0
	for tick := 0; tick < 10000; tick++ {
		if !e.IsRunning() {
			return tick
		}
		e.Update(dt)
	}
	t.Fatal("engine never went idle")
	return 0
}

func TestEngineLaunch(t *testing.T) {
	t.Run("allocates one particle per target", func(t *testing.T) {
		e := newTestEngine(testConfig())

		if !e.Launch(targetCloud(10)) {
			t.Fatal("Launch() = false, want true")
		}
		if e.ActiveCount() != 10 {
			t.Errorf("ActiveCount() = %d, want 10", e.ActiveCount())
		}
		if !e.IsRunning() {
			t.Error("engine should be running after launch")
		}
	})

	t.Run("second launch while running is a no-op", func(t *testing.T) {
		e := newTestEngine(testConfig())

		e.Launch(targetCloud(5))
		if e.Launch(targetCloud(5)) {
			t.Error("Launch() during a run should report false")
		}
		if e.ActiveCount() != 5 {
			t.Errorf("ActiveCount() = %d, want 5 after ignored launch", e.ActiveCount())
		}
	})

	t.Run("oversized cloud is truncated at capacity", func(t *testing.T) {
		config := testConfig()
		config.PoolCapacity = 16
		e := newTestEngine(config)

		e.Launch(targetCloud(100))
		if e.ActiveCount() != 16 {
			t.Errorf("ActiveCount() = %d, want capacity 16", e.ActiveCount())
		}
	})

	t.Run("empty cloud launches nothing", func(t *testing.T) {
		e := newTestEngine(testConfig())

		if e.Launch(nil) {
			t.Error("Launch(nil) should report false")
		}
		if e.IsRunning() {
			t.Error("engine should stay idle")
		}
	})
}

func TestEnginePhases(t *testing.T) {
	t.Run("launch reaches target and bursts", func(t *testing.T) {
		config := testConfig()
		e := newTestEngine(config)

		e.Launch(targetCloud(1))

		// Step past the rise duration.
		steps := int(config.RiseDuration/0.05) + 1
		for i := 0; i < steps; i++ {
			e.Update(0.05)
		}

		// One primary in explode plus its burst embers.
		want := 1 + config.BurstCount
		if e.ActiveCount() != want {
			t.Errorf("ActiveCount() = %d, want %d after burst", e.ActiveCount(), want)
		}

		pt := e.pool.activeAt(0)
		if pt.Phase != PhaseExplode && pt.Phase != PhaseFade {
			t.Errorf("primary phase = %v, want explode or fade", pt.Phase)
		}
	})

	t.Run("burst truncates on pool exhaustion", func(t *testing.T) {
		config := testConfig()
		config.PoolCapacity = 2
		config.BurstCount = 50
		e := newTestEngine(config)

		e.Launch(targetCloud(2))
		for i := 0; i < 30; i++ {
			e.Update(0.05)
			if e.ActiveCount() > config.PoolCapacity {
				t.Fatalf("active %d exceeded capacity %d", e.ActiveCount(), config.PoolCapacity)
			}
		}
	})

	t.Run("run completes back to idle", func(t *testing.T) {
		e := newTestEngine(testConfig())

		e.Launch(targetCloud(8))
		runToIdle(t, e)

		if e.ActiveCount() != 0 {
			t.Errorf("ActiveCount() = %d, want 0 at idle", e.ActiveCount())
		}

		// A fresh launch works again after completion.
		if !e.Launch(targetCloud(4)) {
			t.Error("Launch() after idle should succeed")
		}
	})

	t.Run("capacity invariant holds across a full run", func(t *testing.T) {
		config := testConfig()
		config.PoolCapacity = 24
		e := newTestEngine(config)

		e.Launch(targetCloud(100))
		const dt = 1.0 / 60.0
		for tick := 0; tick < 10000 && e.IsRunning(); tick++ {
			e.Update(dt)
			if e.ActiveCount() > config.PoolCapacity {
				t.Fatalf("active %d exceeded capacity %d", e.ActiveCount(), config.PoolCapacity)
			}
		}
	})
}

func TestEngineFade(t *testing.T) {
	t.Run("ember alpha decreases monotonically", func(t *testing.T) {
		config := testConfig()
		config.BurstCount = 1
		e := newTestEngine(config)

		e.Launch(targetCloud(1))

		// Run until an ember is fading.
		var ember *Particle
		for i := 0; i < 200 && ember == nil; i++ {
			e.Update(0.02)
			for j := 0; j < e.pool.ActiveCount(); j++ {
				if pt := e.pool.activeAt(j); pt.Phase == PhaseFade {
					ember = pt
					break
				}
			}
		}
		if ember == nil {
			t.Fatal("no fading ember found")
		}

		prev := ember.Alpha
		for i := 0; i < 5 && ember.Active(); i++ {
			e.Update(0.02)
			if ember.Alpha > prev {
				t.Fatalf("alpha rose from %f to %f during fade", prev, ember.Alpha)
			}
			prev = ember.Alpha
		}
	})

	t.Run("embers fall under gravity", func(t *testing.T) {
		config := testConfig()
		config.BurstCount = 0
		config.FadeDuration = 2.0
		e := newTestEngine(config)

		e.Launch(targetCloud(1))

		// Carry the primary through rise and flash into fade.
		for i := 0; i < 100; i++ {
			e.Update(0.02)
			if e.pool.ActiveCount() > 0 && e.pool.activeAt(0).Phase == PhaseFade {
				break
			}
		}

		pt := e.pool.activeAt(0)
		if pt.Phase != PhaseFade {
			t.Fatal("primary never reached fade")
		}

		before := pt.Velocity.Y
		e.Update(0.1)
		if pt.Velocity.Y >= before {
			t.Errorf("velocity y went %f -> %f, want decreasing", before, pt.Velocity.Y)
		}
	})
}

func TestEngineDepthDim(t *testing.T) {
	e := newTestEngine(testConfig())

	near := e.depthDim(-2)
	far := e.depthDim(-40)
	if far >= near {
		t.Errorf("depthDim(-40) = %f, want dimmer than depthDim(-2) = %f", far, near)
	}
	if near > 1 || far <= 0 {
		t.Errorf("depth dim out of range: near %f, far %f", near, far)
	}
}

func TestEngineReset(t *testing.T) {
	e := newTestEngine(testConfig())

	e.Launch(targetCloud(10))
	e.Update(0.05)
	e.Reset()

	if e.IsRunning() {
		t.Error("engine should be idle after Reset")
	}
	if e.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0", e.ActiveCount())
	}
}

func TestEngineViews(t *testing.T) {
	e := newTestEngine(testConfig())

	e.Launch(targetCloud(6))
	e.Update(0.05)

	views := e.Views(nil)
	if len(views) != e.ActiveCount() {
		t.Fatalf("len(views) = %d, want %d", len(views), e.ActiveCount())
	}
	for _, v := range views {
		if v.Alpha < 0 || v.Alpha > 1 {
			t.Errorf("view alpha %f out of [0,1]", v.Alpha)
		}
		if v.Size <= 0 {
			t.Errorf("view size %f, want positive", v.Size)
		}
	}
}
