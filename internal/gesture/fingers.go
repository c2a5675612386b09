package gesture

import "github.com/xinyuewang/hanabi/internal/detector"

// fingerJoints pairs each non-thumb fingertip with its PIP joint.
var fingerJoints = [4][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// countExtended counts the extended fingers in a landmark frame.
//
// The thumb is judged by horizontal displacement of its tip from the IP
// joint; the other four fingers by the tip sitting above the PIP joint.
// This is a deliberate approximation: frames near the 1-vs-2 finger boundary
// will flicker, and downstream debouncing is expected to absorb that rather
// than this function trying to be exact.
func countExtended(lm *detector.HandLandmarks, config Config) int {
	count := 0

	if lm.TipSpread(detector.ThumbTip, detector.ThumbIP, config.ThumbExtendThreshold) {
		count++
	}

	for _, fj := range fingerJoints {
		if lm.TipAbove(fj[0], fj[1], config.FingerExtendMargin) {
			count++
		}
	}

	return count
}

// CountExtended counts extended fingers using the given thresholds. Exposed
// for diagnostics and tests; ProcessFrame is the normal entry point.
func CountExtended(lm *detector.HandLandmarks, config Config) int {
	if lm == nil {
		return -1
	}
	return countExtended(lm, config)
}
