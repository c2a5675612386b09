// Package gesture turns noisy per-frame hand landmarks into discrete events:
// a fist-to-open launch trigger and a debounced 1-3 finger selection signal.
package gesture

import (
	"sync"
	"time"

	"github.com/xinyuewang/hanabi/internal/detector"
)

// State classifies the hand pose seen in a single frame.
type State int

const (
	// StateUnknown means no hand was detected in the frame.
	StateUnknown State = iota
	// StateFist means a hand was detected with fewer extended fingers than
	// the open-palm threshold.
	StateFist
	// StateOpen means a hand was detected with at least the open-palm
	// threshold of extended fingers.
	StateOpen
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateFist:
		return "fist"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config holds the tunable thresholds of the gesture machine.
type Config struct {
	// OpenFingerCount is the minimum number of extended fingers that
	// classifies a hand as an open palm. Kept at 4 by default so the 1-3
	// finger selection signal never collides with the open-palm pose.
	OpenFingerCount int

	// ThumbExtendThreshold is the minimum horizontal displacement between
	// thumb tip and thumb IP joint for the thumb to count as extended.
	ThumbExtendThreshold float64

	// FingerExtendMargin is the minimum vertical margin by which a
	// fingertip must sit above its PIP joint to count as extended.
	FingerExtendMargin float64

	// TriggerCooldown is the minimum interval between two launch triggers.
	TriggerCooldown time.Duration

	// SelectionDebounce is the minimum dwell time before a changed finger
	// count is emitted as a new selection signal.
	SelectionDebounce time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		OpenFingerCount:      4,
		ThumbExtendThreshold: 0.05,
		FingerExtendMargin:   0.05,
		TriggerCooldown:      3 * time.Second,
		SelectionDebounce:    500 * time.Millisecond,
	}
}

// Observer receives push notifications from the gesture machine. All methods
// are called synchronously from ProcessFrame.
type Observer interface {
	// StateChanged is called whenever the classified hand state changes.
	StateChanged(old, new State)

	// Triggered is called when a fist-to-open transition fires a launch.
	Triggered()

	// SelectionChanged is called when the debounced selection signal
	// settles on a new value in 1..3.
	SelectionChanged(index int)
}

// Result describes the outcome of processing one landmark frame.
type Result struct {
	State       State
	FingerCount int // 0-5, or -1 when no hand was detected
	Triggered   bool
	Selection   int // newly emitted selection in 1..3, or 0 for none
}

// Machine is the per-frame gesture state machine. It is fed landmark frames
// by the capture pipeline at its own cadence and keeps only its own counters
// and event timestamps, so it is safe to drive from the capture goroutine
// while the animation tick reads events through the observer boundary.
type Machine struct {
	config Config
	now    func() time.Time

	mu        sync.Mutex
	observers []Observer

	state        State
	lastTrigger  time.Time
	lastEmitted  int // last emitted selection value, 0 when reset
	lastEmitTime time.Time
}

// NewMachine creates a gesture machine with the given configuration.
func NewMachine(config Config) *Machine {
	return &Machine{
		config: config,
		now:    time.Now,
		state:  StateUnknown,
	}
}

// SetClock replaces the machine's time source. Tests use this to make
// cooldown and debounce behavior deterministic.
func (m *Machine) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Subscribe registers an observer. Multiple observers may be registered;
// they are notified in registration order.
func (m *Machine) Subscribe(o Observer) {
	if o == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// State returns the current classified hand state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ProcessFrame classifies one landmark frame, advances the state machine and
// notifies observers. A nil frame means no hand was detected.
func (m *Machine) ProcessFrame(lm *detector.HandLandmarks) Result {
	m.mu.Lock()

	now := m.now()

	count := -1
	newState := StateUnknown
	if lm != nil {
		count = countExtended(lm, m.config)
		if count >= m.config.OpenFingerCount {
			newState = StateOpen
		} else {
			newState = StateFist
		}
	}

	oldState := m.state
	m.state = newState

	result := Result{State: newState, FingerCount: count}

	// A launch fires only on the exact fist-to-open edge, and only after
	// the cooldown window. Unknown-to-open never fires.
	if oldState == StateFist && newState == StateOpen &&
		now.Sub(m.lastTrigger) > m.config.TriggerCooldown {
		m.lastTrigger = now
		result.Triggered = true
	}

	// Selection signal: independent of the fist/open classification.
	if count >= 1 && count <= 3 {
		if count != m.lastEmitted && now.Sub(m.lastEmitTime) >= m.config.SelectionDebounce {
			m.lastEmitted = count
			m.lastEmitTime = now
			result.Selection = count
		}
	} else {
		// Invalid counts clear the tracked value without emitting, so the
		// next valid count registers as a change.
		m.lastEmitted = 0
	}

	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	// Notify outside the lock so observers may call back into the machine.
	for _, o := range observers {
		if oldState != newState {
			o.StateChanged(oldState, newState)
		}
		if result.Triggered {
			o.Triggered()
		}
		if result.Selection != 0 {
			o.SelectionChanged(result.Selection)
		}
	}

	return result
}
