package scroll

import (
	"fmt"
	"log"
	"math"

	"github.com/xinyuewang/hanabi/internal/vmath"
)

// ManagerState is the aggregate state of a selection round.
type ManagerState int

const (
	// ManagerIdle means no round is active or the round awaits a first hover.
	ManagerIdle ManagerState = iota
	// ManagerSelecting means a tentative selection exists.
	ManagerSelecting
	// ManagerUnrolling means a selection was confirmed and is animating.
	ManagerUnrolling
	// ManagerDisplayed means the chosen scroll is fully shown.
	ManagerDisplayed
)

// String returns the state name for logging.
func (s ManagerState) String() string {
	switch s {
	case ManagerSelecting:
		return "selecting"
	case ManagerUnrolling:
		return "unrolling"
	case ManagerDisplayed:
		return "displayed"
	default:
		return "idle"
	}
}

// Config holds the tunable parameters of a selection round.
type Config struct {
	// Count is the number of scrolls per round.
	Count int

	// Positions are the layout positions of the scrolls. Must cover Count.
	Positions []vmath.Vec3

	// HoverScale and HoverDuration shape the tentative-selection highlight.
	HoverScale    float64
	HoverDuration float64

	// PulseCount, PulseScale and PulseDuration shape the confirmation pulse.
	PulseCount    int
	PulseScale    float64
	PulseDuration float64

	// UnrollDuration is the vertical reveal time of the chosen scroll.
	UnrollDuration float64

	// ContentFadeDuration is the content fade-in after the unroll.
	ContentFadeDuration float64

	// FadeOutDuration and FadeOutSlide shape the exit of non-chosen scrolls.
	FadeOutDuration float64
	FadeOutSlide    float64

	// DisplayDuration is how long the chosen scroll stays fully shown.
	DisplayDuration float64

	// DisplayFadeDuration is the post-display fade to hidden.
	DisplayFadeDuration float64

	// RolledAlpha is the opacity of a rolled-up idle scroll.
	RolledAlpha float64

	// HitRadius is the picking sphere radius around each scroll.
	HitRadius float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Count: 3,
		Positions: []vmath.Vec3{
			{X: -6, Y: 10, Z: -6},
			{X: 0, Y: 10, Z: -6},
			{X: 6, Y: 10, Z: -6},
		},
		HoverScale:          1.15,
		HoverDuration:       0.25,
		PulseCount:          2,
		PulseScale:          1.3,
		PulseDuration:       0.5,
		UnrollDuration:      1.2,
		ContentFadeDuration: 0.4,
		FadeOutDuration:     0.8,
		FadeOutSlide:        4.0,
		DisplayDuration:     6.0,
		DisplayFadeDuration: 1.0,
		RolledAlpha:         0.9,
		HitRadius:           1.6,
	}
}

// ItemView is the renderer-facing state of one scroll.
type ItemView struct {
	Index        int        `json:"index"`
	Payload      string     `json:"payload"`
	Position     vmath.Vec3 `json:"position"`
	State        string     `json:"state"`
	Scale        float64    `json:"scale"`
	Alpha        float64    `json:"alpha"`
	Unroll       float64    `json:"unroll"`
	ContentAlpha float64    `json:"contentAlpha"`
}

// Manager arbitrates one selection round. Every input modality (gesture,
// pointer, keyboard) must mutate selection state through SelectScroll,
// ConfirmSelection and Reset; there is no other mutation path.
type Manager struct {
	config Config
	source PayloadSource

	items         []*Item
	state         ManagerState
	selectedIndex int // -1 when none
}

// NewManager creates a manager drawing payloads from the given source.
func NewManager(config Config, source PayloadSource) *Manager {
	return &Manager{
		config:        config,
		source:        source,
		state:         ManagerIdle,
		selectedIndex: -1,
	}
}

// State returns the aggregate round state.
func (m *Manager) State() ManagerState {
	return m.state
}

// SelectedIndex returns the tentative or confirmed selection, -1 for none.
func (m *Manager) SelectedIndex() int {
	return m.selectedIndex
}

// HasItems reports whether a round is currently populated.
func (m *Manager) HasItems() bool {
	return len(m.items) > 0
}

// Initialize starts a round of count scrolls with distinct payloads drawn
// without replacement from the payload source.
func (m *Manager) Initialize(count int) error {
	if count <= 0 {
		count = m.config.Count
	}
	if count > len(m.config.Positions) {
		return fmt.Errorf("no layout position for %d scrolls, have %d", count, len(m.config.Positions))
	}

	payloads, err := m.source.Draw(count)
	if err != nil {
		return fmt.Errorf("draw payloads: %w", err)
	}

	m.items = make([]*Item, count)
	for i := 0; i < count; i++ {
		m.items[i] = newItem(i, payloads[i], m.config.Positions[i], m.config)
	}
	m.state = ManagerIdle
	m.selectedIndex = -1

	log.Printf("scroll: round started with %d scrolls", count)
	return nil
}

// SelectScroll marks index as the tentative selection. It is the single
// arbitration point for every input source. Requests outside an active
// IDLE/SELECTING round or out of range are logged no-ops. Re-selecting the
// current index is idempotent.
func (m *Manager) SelectScroll(index int) {
	if m.state != ManagerIdle && m.state != ManagerSelecting {
		log.Printf("scroll: select %d ignored in state %v", index, m.state)
		return
	}
	if index < 0 || index >= len(m.items) {
		log.Printf("scroll: select %d out of range (%d scrolls)", index, len(m.items))
		return
	}

	for i, it := range m.items {
		if i == index {
			it.hover()
		} else {
			it.unhover()
		}
	}
	m.selectedIndex = index
	m.state = ManagerSelecting
}

// ConfirmSelection confirms the tentative selection: the chosen scroll
// pulses then unrolls, all others slide outward and fade. Confirming
// without a tentative selection, or while a confirmation is already
// playing, is a logged no-op.
func (m *Manager) ConfirmSelection() {
	if m.state != ManagerSelecting || m.selectedIndex < 0 {
		log.Printf("scroll: confirm ignored in state %v", m.state)
		return
	}

	chosen := m.items[m.selectedIndex]
	chosen.confirm()

	for _, it := range m.items {
		if it.Index == m.selectedIndex {
			continue
		}
		dir := vmath.Vec3{X: -1}
		if it.Position.X > chosen.Position.X {
			dir = vmath.Vec3{X: 1}
		}
		it.beginFadeOut(dir, m.config.FadeOutDuration)
	}

	m.state = ManagerUnrolling
	log.Printf("scroll: confirmed scroll %d", m.selectedIndex)
}

// HideAll abruptly hides every scroll and empties the round. Used when an
// external event, like a fresh fireworks launch, must reclaim the stage.
func (m *Manager) HideAll() {
	for _, it := range m.items {
		it.hide()
	}
	m.items = nil
	m.state = ManagerIdle
	m.selectedIndex = -1
}

// Reset hides everything and starts a fresh round with newly drawn payloads.
func (m *Manager) Reset() error {
	m.HideAll()
	return m.Initialize(m.config.Count)
}

// HitTest reports which selectable scroll the given picking ray intersects,
// or -1. Only scrolls still in IDLE or HOVERING are pickable; once a
// confirmation is playing there is nothing to hit.
func (m *Manager) HitTest(origin, dir vmath.Vec3) int {
	d := dir.Normalized()
	if d == (vmath.Vec3{}) {
		return -1
	}

	best := -1
	bestT := 0.0
	for _, it := range m.items {
		if it.State() != ItemIdle && it.State() != ItemHovering {
			continue
		}

		// Ray-sphere intersection around the scroll position.
		oc := origin.Sub(it.Position)
		b := oc.X*d.X + oc.Y*d.Y + oc.Z*d.Z
		c := oc.X*oc.X + oc.Y*oc.Y + oc.Z*oc.Z - m.config.HitRadius*m.config.HitRadius
		disc := b*b - c
		if disc < 0 {
			continue
		}

		t := -b - math.Sqrt(disc)
		if t < 0 {
			continue
		}
		if best == -1 || t < bestT {
			best = it.Index
			bestT = t
		}
	}
	return best
}

// Update advances every scroll and resolves aggregate-state transitions:
// UNROLLING becomes DISPLAYED when the chosen scroll is fully shown, and a
// finished display auto-cleans the round back to an empty idle state.
func (m *Manager) Update(dt float64) {
	for _, it := range m.items {
		it.Update(dt)
	}

	if m.state == ManagerUnrolling && m.selected() != nil &&
		m.selected().State() == ItemDisplayed {
		m.state = ManagerDisplayed
	}

	if m.state == ManagerDisplayed && m.selected() != nil &&
		m.selected().State() == ItemHidden {
		log.Printf("scroll: round complete")
		m.items = nil
		m.state = ManagerIdle
		m.selectedIndex = -1
	}
}

// selected returns the tentatively or confirmed selected item, if any.
func (m *Manager) selected() *Item {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.items) {
		return nil
	}
	return m.items[m.selectedIndex]
}

// Views returns the renderer-facing state of the round's scrolls.
func (m *Manager) Views() []ItemView {
	views := make([]ItemView, 0, len(m.items))
	for _, it := range m.items {
		views = append(views, ItemView{
			Index:        it.Index,
			Payload:      it.Payload,
			Position:     it.Position.Add(it.Offset),
			State:        it.State().String(),
			Scale:        it.Scale,
			Alpha:        it.Alpha,
			Unroll:       it.Unroll,
			ContentAlpha: it.ContentAlpha,
		})
	}
	return views
}

// Item returns the item at index, or nil. Exposed for tests and diagnostics.
func (m *Manager) Item(index int) *Item {
	if index < 0 || index >= len(m.items) {
		return nil
	}
	return m.items[index]
}
