package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Base geometry for preset poses. A right hand, palm facing the camera,
// wrist near the bottom of the frame. Image Y grows downward.
var fingerColumns = [4]float64{0.56, 0.50, 0.44, 0.38} // index, middle, ring, pinky

const (
	poseMCPRowY     = 0.62
	posePIPRowY     = 0.55
	poseDIPRowY     = 0.50
	poseCurledTipY  = 0.60 // tip tucked back below the PIP row
	poseExtendedTip = 0.34 // tip raised well above the PIP row
)

// fistPose returns a pose with all five fingers curled.
func fistPose() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	// Thumb tucked in close to its IP joint.
	lm.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.74, Z: 0.0}
	lm.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70, Z: 0.0}
	lm.Points[ThumbIP] = Point3D{X: 0.62, Y: 0.66, Z: 0.0}
	lm.Points[ThumbTip] = Point3D{X: 0.63, Y: 0.64, Z: 0.0}

	// Four fingers curled: tip below the PIP row.
	for f := 0; f < 4; f++ {
		x := fingerColumns[f]
		base := IndexMCP + f*4
		lm.Points[base] = Point3D{X: x, Y: poseMCPRowY, Z: 0.0}
		lm.Points[base+1] = Point3D{X: x, Y: posePIPRowY, Z: -0.02}
		lm.Points[base+2] = Point3D{X: x, Y: poseDIPRowY, Z: -0.04}
		lm.Points[base+3] = Point3D{X: x, Y: poseCurledTipY, Z: -0.03}
	}

	return lm
}

// extendFinger straightens one of the four non-thumb fingers (0=index .. 3=pinky).
func extendFinger(lm *HandLandmarks, f int) {
	x := fingerColumns[f]
	base := IndexMCP + f*4
	lm.Points[base+1] = Point3D{X: x, Y: posePIPRowY, Z: 0.0}
	lm.Points[base+2] = Point3D{X: x, Y: 0.44, Z: 0.0}
	lm.Points[base+3] = Point3D{X: x, Y: poseExtendedTip, Z: 0.0}
}

// extendThumb spreads the thumb outward from the palm.
func extendThumb(lm *HandLandmarks) {
	lm.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.65, Z: 0.0}
	lm.Points[ThumbTip] = Point3D{X: 0.74, Y: 0.62, Z: 0.0}
}

// FistLandmarks returns a preset HandLandmarks representing a closed fist.
func FistLandmarks() HandLandmarks {
	return fistPose()
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm
// with all five fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	lm := fistPose()
	extendThumb(&lm)
	for f := 0; f < 4; f++ {
		extendFinger(&lm, f)
	}
	return lm
}

// FingerCountLandmarks returns a preset HandLandmarks showing count extended
// fingers. Counts 1-4 raise index, middle, ring, pinky in order; 5 adds the
// thumb. Counts outside 0-5 are clamped.
func FingerCountLandmarks(count int) HandLandmarks {
	if count < 0 {
		count = 0
	}
	if count > 5 {
		count = 5
	}

	lm := fistPose()
	for f := 0; f < count && f < 4; f++ {
		extendFinger(&lm, f)
	}
	if count == 5 {
		extendThumb(&lm)
	}
	return lm
}
