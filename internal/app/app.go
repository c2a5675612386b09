// Package app wires the whole experience together: the capture and detection
// pipeline feeding the gesture machine, and the fixed-rate simulation loop
// advancing the stage.
package app

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/xinyuewang/hanabi/internal/capture"
	"github.com/xinyuewang/hanabi/internal/detector"
	"github.com/xinyuewang/hanabi/internal/fireworks"
	"github.com/xinyuewang/hanabi/internal/gesture"
	"github.com/xinyuewang/hanabi/internal/glyph"
	"github.com/xinyuewang/hanabi/internal/scroll"
	"github.com/xinyuewang/hanabi/internal/stage"
	"github.com/xinyuewang/hanabi/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
	// SimulationFPS is the fixed rate of the stage tick.
	SimulationFPS = 60
)

// settingOpenFingerCount overrides the open-palm finger threshold.
const settingOpenFingerCount = "open_finger_count"

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	CameraID     int
	MotionThresh float64

	// FontPath points at a TTF/OTF file for glyph sampling. Empty falls back
	// to a builtin bitmap face.
	FontPath string
	FontSize float64

	Stage     stage.Config
	Gesture   gesture.Config
	Fireworks fireworks.Config
	Scroll    scroll.Config
	Glyph     glyph.Config
}

// DefaultConfig returns a Config with every sub-config at its defaults.
func DefaultConfig() Config {
	return Config{
		MotionThresh: 1.0,
		FontSize:     64,
		Stage:        stage.DefaultConfig(),
		Gesture:      gesture.DefaultConfig(),
		Fireworks:    fireworks.DefaultConfig(),
		Scroll:       scroll.DefaultConfig(),
		Glyph:        glyph.DefaultConfig(),
	}
}

// App is the main application: it owns the capture pipeline and the stage.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector

	machine *gesture.Machine
	stage   *stage.Stage
	scrolls *scroll.Manager

	mu            sync.RWMutex
	enabled       bool
	stopCh        chan struct{}
	lastTrigger   time.Time
	lastSelection int
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0
	}

	gestureConfig := config.Gesture
	if config.Store != nil {
		if v := config.Store.Settings().GetDefault(settingOpenFingerCount, ""); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 5 {
				gestureConfig.OpenFingerCount = n
				log.Printf("Open-palm threshold overridden to %d fingers", n)
			}
		}
	}

	sampler := glyph.NewSampler(loadFace(config), config.Glyph)
	machine := gesture.NewMachine(gestureConfig)
	engine := fireworks.NewEngine(config.Fireworks)
	scrolls := scroll.NewManager(config.Scroll, payloadSource(config.Store))

	a := &App{
		config:        config,
		camera:        capture.NewCamera(config.CameraID),
		motion:        capture.NewMotionDetector(config.MotionThresh),
		machine:       machine,
		scrolls:       scrolls,
		lastSelection: -1,
	}
	a.stage = stage.New(config.Stage, sampler, machine, engine, scrolls)
	machine.Subscribe(&appObserver{app: a})

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// loadFace loads the configured font face, falling back to a bitmap face.
func loadFace(config Config) font.Face {
	if config.FontPath == "" {
		return basicfont.Face7x13
	}

	data, err := os.ReadFile(config.FontPath)
	if err != nil {
		log.Printf("Failed to read font %s (%v), using builtin face", config.FontPath, err)
		return basicfont.Face7x13
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		log.Printf("Failed to parse font %s (%v), using builtin face", config.FontPath, err)
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size: config.FontSize,
		DPI:  72,
	})
	if err != nil {
		log.Printf("Failed to build font face (%v), using builtin face", err)
		return basicfont.Face7x13
	}
	return face
}

// payloadSource picks the fortune source: the database when available,
// otherwise a small builtin set.
func payloadSource(s *store.Store) scroll.PayloadSource {
	if s != nil {
		repo := s.Fortunes()
		if err := repo.SeedDefaults(); err != nil {
			log.Printf("Failed to seed fortunes: %v", err)
		}
		return store.NewFortuneSource(repo)
	}

	return scroll.NewStaticSource([]string{
		"Great fortune arrives on the east wind.",
		"A small kindness returns threefold.",
		"The patient hand catches the brightest spark.",
		"What you seek is closer than it appears.",
	})
}

// appObserver records gesture events for the tray and the trigger log.
type appObserver struct {
	app *App
}

func (o *appObserver) StateChanged(old, new gesture.State) {
	log.Printf("Hand state: %v -> %v", old, new)
}

func (o *appObserver) Triggered() {
	o.app.mu.Lock()
	o.app.lastTrigger = time.Now()
	o.app.mu.Unlock()

	if o.app.config.Store != nil {
		if err := o.app.config.Store.Fortunes().LogTrigger("", "gesture"); err != nil {
			log.Printf("Failed to log trigger: %v", err)
		}
	}
}

func (o *appObserver) SelectionChanged(index int) {
	o.app.mu.Lock()
	o.app.lastSelection = index
	o.app.mu.Unlock()
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the camera implementation to use. Tests inject a mock.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Stage returns the simulation stage.
func (a *App) Stage() *stage.Stage {
	return a.stage
}

// Machine returns the gesture machine.
func (a *App) Machine() *gesture.Machine {
	return a.machine
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// LastTrigger returns the time of the last accepted fireworks trigger.
func (a *App) LastTrigger() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastTrigger
}

// LastSelection returns the last emitted finger-count selection, -1 for none.
func (a *App) LastSelection() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastSelection
}

// Start opens the camera and begins the capture pipeline and the simulation
// loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)
	go a.runSimulation(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// runSimulation advances the stage at the fixed simulation rate.
func (a *App) runSimulation(stopCh <-chan struct{}) {
	const dt = 1.0 / float64(SimulationFPS)

	ticker := time.NewTicker(time.Second / SimulationFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.stage.Tick(dt)
		}
	}
}
