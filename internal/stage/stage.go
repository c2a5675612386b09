// Package stage owns the simulation core of the experience: it wires the
// gesture machine, the fireworks engine and the scroll manager together and
// advances them on a fixed tick. Input from any source is queued and drained
// at the top of the next tick, before any animation advances, so an input and
// its visual consequence never straddle a frame.
package stage

import (
	"log"
	"sync"

	"github.com/xinyuewang/hanabi/internal/detector"
	"github.com/xinyuewang/hanabi/internal/fireworks"
	"github.com/xinyuewang/hanabi/internal/gesture"
	"github.com/xinyuewang/hanabi/internal/glyph"
	"github.com/xinyuewang/hanabi/internal/scroll"
	"github.com/xinyuewang/hanabi/internal/vmath"
)

// Config holds the stage-level tunables.
type Config struct {
	// Text is the message the fireworks spell out.
	Text string

	// TextJitter is the positional noise applied to glyph targets.
	TextJitter float64

	// ScrollCount is the number of scrolls revealed after a fireworks run.
	ScrollCount int

	// RevealDelay is the pause between the fireworks going idle and the
	// scroll round appearing, in seconds.
	RevealDelay float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Text:        "福",
		TextJitter:  0.6,
		ScrollCount: 3,
		RevealDelay: 0.5,
	}
}

type eventKind int

const (
	evTrigger eventKind = iota
	evSelect
	evConfirm
	evPointer
	evReset
)

type inputEvent struct {
	kind        eventKind
	index       int // evSelect: scroll index
	click       bool
	origin, dir vmath.Vec3 // evPointer
}

// Stage is the application context: one instance owns every simulation
// component and all cross-component choreography.
type Stage struct {
	config  Config
	sampler *glyph.Sampler
	machine *gesture.Machine
	engine  *fireworks.Engine
	scrolls *scroll.Manager

	// mu guards the input queue and, across Tick and Snapshot, the engine
	// and scroll state read by the broadcast goroutine.
	mu    sync.Mutex
	queue []inputEvent

	revealPending bool
	revealTimer   float64
}

// New creates a stage over the given components and subscribes to the
// gesture machine's events.
func New(config Config, sampler *glyph.Sampler, machine *gesture.Machine,
	engine *fireworks.Engine, scrolls *scroll.Manager) *Stage {

	s := &Stage{
		config:  config,
		sampler: sampler,
		machine: machine,
		engine:  engine,
		scrolls: scrolls,
	}
	machine.Subscribe(&machineObserver{stage: s})
	return s
}

// machineObserver funnels gesture machine events into the stage queue.
type machineObserver struct {
	stage *Stage
}

func (o *machineObserver) StateChanged(old, new gesture.State) {}

func (o *machineObserver) Triggered() {
	o.stage.enqueue(inputEvent{kind: evTrigger})
}

func (o *machineObserver) SelectionChanged(index int) {
	// Finger counts 1..3 map to scroll slots 0..2.
	o.stage.enqueue(inputEvent{kind: evSelect, index: index - 1})
}

// PushFrame feeds one landmark frame through the gesture machine. Safe to
// call from the capture goroutine; resulting events are queued and resolved
// on the next Tick.
func (s *Stage) PushFrame(lm *detector.HandLandmarks) {
	s.machine.ProcessFrame(lm)
}

// QueueSelect queues a selection request, e.g. from a number key.
func (s *Stage) QueueSelect(index int) {
	s.enqueue(inputEvent{kind: evSelect, index: index})
}

// QueueConfirm queues a confirmation request, e.g. from the Enter key.
func (s *Stage) QueueConfirm() {
	s.enqueue(inputEvent{kind: evConfirm})
}

// QueueTrigger queues a fireworks trigger from a non-gesture source.
func (s *Stage) QueueTrigger() {
	s.enqueue(inputEvent{kind: evTrigger})
}

// QueuePointer queues a pointer ray. A non-click ray hovers whatever it
// hits; a click on the current tentative selection confirms it.
func (s *Stage) QueuePointer(origin, dir vmath.Vec3, click bool) {
	s.enqueue(inputEvent{kind: evPointer, origin: origin, dir: dir, click: click})
}

// QueueReset queues a full round reset.
func (s *Stage) QueueReset() {
	s.enqueue(inputEvent{kind: evReset})
}

func (s *Stage) enqueue(ev inputEvent) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
}

// Tick advances the stage by dt seconds: queued input first, then the
// fireworks engine and the scroll round, then any deferred reveal.
func (s *Stage) Tick(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.queue
	s.queue = nil

	for _, ev := range events {
		s.apply(ev)
	}

	s.engine.Update(dt)
	s.scrolls.Update(dt)

	s.stepReveal(dt)
}

// apply resolves one queued input event against the current state.
func (s *Stage) apply(ev inputEvent) {
	switch ev.kind {
	case evTrigger:
		s.applyTrigger()

	case evSelect:
		s.scrolls.SelectScroll(ev.index)

	case evConfirm:
		s.scrolls.ConfirmSelection()

	case evPointer:
		hit := s.scrolls.HitTest(ev.origin, ev.dir)
		if hit >= 0 {
			s.scrolls.SelectScroll(hit)
			if ev.click && s.scrolls.SelectedIndex() == hit {
				s.scrolls.ConfirmSelection()
			}
		}

	case evReset:
		s.engine.Reset()
		s.scrolls.HideAll()
		s.revealPending = false
	}
}

// applyTrigger routes a fist-to-open trigger. While a tentative selection is
// up it acts as the confirmation gesture; otherwise it clears the stage and
// launches a fresh fireworks run.
func (s *Stage) applyTrigger() {
	if s.scrolls.State() == scroll.ManagerSelecting {
		s.scrolls.ConfirmSelection()
		return
	}

	if s.scrolls.HasItems() {
		s.scrolls.HideAll()
	}

	targets := s.sampler.Sample(s.config.Text)
	if s.config.TextJitter > 0 {
		targets = s.sampler.Jitter(targets, s.config.TextJitter)
	}
	if s.engine.Launch(targets) {
		s.revealPending = true
		s.revealTimer = 0
	}
}

// stepReveal runs the one-shot deferred scroll reveal once the fireworks
// have gone idle. A reset in the meantime no-ops it.
func (s *Stage) stepReveal(dt float64) {
	if !s.revealPending || s.engine.IsRunning() {
		return
	}

	s.revealTimer += dt
	if s.revealTimer < s.config.RevealDelay {
		return
	}

	s.revealPending = false
	if s.scrolls.HasItems() {
		return
	}
	if err := s.scrolls.Initialize(s.config.ScrollCount); err != nil {
		log.Printf("stage: scroll reveal failed: %v", err)
	}
}

// Snapshot is the renderer-facing state of one tick: plain numeric particle
// views and item visual states, no draw calls.
type Snapshot struct {
	GestureState     string            `json:"gestureState"`
	FireworksRunning bool              `json:"fireworksRunning"`
	Particles        []fireworks.View  `json:"particles"`
	RoundState       string            `json:"roundState"`
	SelectedIndex    int               `json:"selectedIndex"`
	Scrolls          []scroll.ItemView `json:"scrolls"`
}

// Snapshot captures the current renderable state. Safe to call from the
// broadcast goroutine while the simulation loop ticks.
func (s *Stage) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		GestureState:     s.machine.State().String(),
		FireworksRunning: s.engine.IsRunning(),
		Particles:        s.engine.Views(nil),
		RoundState:       s.scrolls.State().String(),
		SelectedIndex:    s.scrolls.SelectedIndex(),
		Scrolls:          s.scrolls.Views(),
	}
}
