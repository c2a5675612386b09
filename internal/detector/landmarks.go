// Package detector provides hand detection interfaces and the landmark frame
// model consumed by the gesture state machine.
package detector

import "errors"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrBadFrame is returned when a landmark set does not have exactly 21 points.
// Callers treat it as "no hand detected", never as a fatal condition.
var ErrBadFrame = errors.New("landmark frame must contain exactly 21 points")

// Point3D represents a single tracked joint position in normalized frame
// coordinates, with x and y in [0,1] and z relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of one detected hand for a
// single capture frame. Frames are ephemeral: they belong to the detection
// cycle that produced them and are never persisted.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FromPoints builds a HandLandmarks from a raw point slice, rejecting any
// slice that is not exactly 21 points long.
func FromPoints(points []Point3D) (*HandLandmarks, error) {
	if len(points) != NumLandmarks {
		return nil, ErrBadFrame
	}
	lm := &HandLandmarks{}
	copy(lm.Points[:], points)
	return lm, nil
}

// TipAbove reports whether the fingertip at tip sits above the joint at ref
// by more than margin. Image coordinates grow downward, so "above" means a
// smaller Y value.
func (h *HandLandmarks) TipAbove(tip, ref int, margin float64) bool {
	return h.Points[ref].Y-h.Points[tip].Y > margin
}

// TipSpread reports whether the fingertip at tip is displaced horizontally
// from the joint at ref by more than threshold, in either direction.
func (h *HandLandmarks) TipSpread(tip, ref int, threshold float64) bool {
	d := h.Points[tip].X - h.Points[ref].X
	if d < 0 {
		d = -d
	}
	return d > threshold
}
