// Package scroll owns the fortune-scroll selection round: N selectable items,
// each with its own micro state machine, arbitrated by a single Manager that
// all input modalities funnel into.
package scroll

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/xinyuewang/hanabi/internal/vmath"
)

// ItemState is the lifecycle state of one selectable scroll.
type ItemState int

const (
	// ItemIdle is a rolled-up scroll waiting for attention.
	ItemIdle ItemState = iota
	// ItemHovering is the tentative selection highlight.
	ItemHovering
	// ItemSelected plays the confirmation pulse.
	ItemSelected
	// ItemUnrolling reveals the scroll content vertically, then fades the
	// content in.
	ItemUnrolling
	// ItemDisplayed shows the content until the display timer elapses.
	ItemDisplayed
	// ItemFadingOut slides outward and fades; the path of non-chosen
	// scrolls and of the displayed scroll once its timer runs out.
	ItemFadingOut
	// ItemHidden is terminal; the slot is ready to be cleared.
	ItemHidden
)

// String returns the state name for logging.
func (s ItemState) String() string {
	switch s {
	case ItemIdle:
		return "idle"
	case ItemHovering:
		return "hovering"
	case ItemSelected:
		return "selected"
	case ItemUnrolling:
		return "unrolling"
	case ItemDisplayed:
		return "displayed"
	case ItemFadingOut:
		return "fading_out"
	default:
		return "hidden"
	}
}

// Item is one selectable scroll. All animation is advanced through
// Update(dt); the item never consults a wall clock.
type Item struct {
	Index    int
	Payload  string
	Position vmath.Vec3

	// Renderer-facing visual sub-state.
	Scale        float64
	Alpha        float64
	Unroll       float64 // 0 rolled up .. 1 fully revealed
	ContentAlpha float64
	Offset       vmath.Vec3

	state  ItemState
	config Config

	scaleTween   *gween.Tween
	alphaTween   *gween.Tween
	unrollTween  *gween.Tween
	contentTween *gween.Tween
	offsetTween  *gween.Tween // progress 0..1 along slideDir
	slideDir     vmath.Vec3

	pulsesLeft   int
	pulseRising  bool
	displayTimer float64
}

// newItem creates a rolled-up idle item at the given layout position.
func newItem(index int, payload string, position vmath.Vec3, config Config) *Item {
	return &Item{
		Index:    index,
		Payload:  payload,
		Position: position,
		Scale:    1,
		Alpha:    config.RolledAlpha,
		state:    ItemIdle,
		config:   config,
	}
}

// State returns the item's current lifecycle state.
func (it *Item) State() ItemState {
	return it.state
}

// hover highlights the item as the tentative selection.
func (it *Item) hover() {
	if it.state != ItemIdle && it.state != ItemHovering {
		return
	}
	if it.state == ItemHovering {
		return // idempotent
	}
	it.state = ItemHovering
	it.scaleTween = gween.New(float32(it.Scale), float32(it.config.HoverScale),
		float32(it.config.HoverDuration), ease.OutQuad)
}

// unhover returns a hovering item to idle.
func (it *Item) unhover() {
	if it.state != ItemHovering {
		return
	}
	it.state = ItemIdle
	it.scaleTween = gween.New(float32(it.Scale), 1,
		float32(it.config.HoverDuration), ease.OutQuad)
}

// confirm starts the confirmation pulse on the chosen item.
func (it *Item) confirm() {
	it.state = ItemSelected
	it.pulsesLeft = it.config.PulseCount
	it.pulseRising = true
	it.scaleTween = gween.New(float32(it.Scale), float32(it.config.PulseScale),
		float32(it.config.PulseDuration/2), ease.OutQuad)
}

// beginFadeOut slides the item along dir while fading to transparent.
// A zero dir fades in place (the post-display fade).
func (it *Item) beginFadeOut(dir vmath.Vec3, duration float64) {
	it.state = ItemFadingOut
	it.slideDir = dir
	it.alphaTween = gween.New(float32(it.Alpha), 0, float32(duration), ease.Linear)
	it.offsetTween = gween.New(0, 1, float32(duration), ease.OutQuad)
}

// hide forces the item to its terminal state immediately.
func (it *Item) hide() {
	it.state = ItemHidden
	it.Alpha = 0
	it.ContentAlpha = 0
	it.scaleTween = nil
	it.alphaTween = nil
	it.unrollTween = nil
	it.contentTween = nil
	it.offsetTween = nil
}

// Update advances the item's animation by dt seconds.
func (it *Item) Update(dt float64) {
	switch it.state {
	case ItemIdle, ItemHovering:
		it.stepScale(dt)

	case ItemSelected:
		it.stepPulse(dt)

	case ItemUnrolling:
		it.stepUnroll(dt)

	case ItemDisplayed:
		it.displayTimer -= dt
		if it.displayTimer <= 0 {
			it.beginFadeOut(vmath.Vec3{}, it.config.DisplayFadeDuration)
		}

	case ItemFadingOut:
		it.stepFadeOut(dt)
	}
}

// stepScale applies the hover scale tween, if any.
func (it *Item) stepScale(dt float64) {
	if it.scaleTween == nil {
		return
	}
	v, done := it.scaleTween.Update(float32(dt))
	it.Scale = float64(v)
	if done {
		it.scaleTween = nil
	}
}

// stepPulse plays the fixed-count confirmation pulse, then starts the unroll.
func (it *Item) stepPulse(dt float64) {
	if it.scaleTween == nil {
		return
	}
	v, done := it.scaleTween.Update(float32(dt))
	it.Scale = float64(v)
	if !done {
		return
	}

	half := float32(it.config.PulseDuration / 2)
	if it.pulseRising {
		it.pulseRising = false
		it.scaleTween = gween.New(float32(it.Scale), 1, half, ease.InQuad)
		return
	}

	it.pulsesLeft--
	if it.pulsesLeft > 0 {
		it.pulseRising = true
		it.scaleTween = gween.New(float32(it.Scale), float32(it.config.PulseScale), half, ease.OutQuad)
		return
	}

	// Pulse finished: unroll the scroll, then fade the content in.
	it.scaleTween = nil
	it.state = ItemUnrolling
	it.Alpha = 1
	it.unrollTween = gween.New(0, 1, float32(it.config.UnrollDuration), ease.OutCubic)
}

// stepUnroll advances the vertical reveal, then the content fade-in.
func (it *Item) stepUnroll(dt float64) {
	if it.unrollTween != nil {
		v, done := it.unrollTween.Update(float32(dt))
		it.Unroll = float64(v)
		if done {
			it.unrollTween = nil
			it.contentTween = gween.New(0, 1, float32(it.config.ContentFadeDuration), ease.Linear)
		}
		return
	}

	if it.contentTween != nil {
		v, done := it.contentTween.Update(float32(dt))
		it.ContentAlpha = float64(v)
		if done {
			it.contentTween = nil
			it.state = ItemDisplayed
			it.displayTimer = it.config.DisplayDuration
		}
	}
}

// stepFadeOut advances the outward slide and fade, ending hidden.
func (it *Item) stepFadeOut(dt float64) {
	done := true

	if it.alphaTween != nil {
		v, finished := it.alphaTween.Update(float32(dt))
		it.Alpha = float64(v)
		if !finished {
			done = false
		}
	}

	if it.offsetTween != nil {
		v, finished := it.offsetTween.Update(float32(dt))
		it.Offset = it.slideDir.Scale(float64(v) * it.config.FadeOutSlide)
		if !finished {
			done = false
		}
	}

	if done {
		it.hide()
	}
}
