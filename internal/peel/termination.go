package peel

// BlendingStatus is the outcome of one back-blend pass.
type BlendingStatus struct {
	Done bool
	// SamplesPassed is nil when occlusion queries are disabled.
	SamplesPassed *uint32
	// Stalled is set when Done was forced because the sample count did not
	// strictly decrease.
	Stalled bool
}

// occlusionThreshold is ratio × width × height.
func occlusionThreshold(ratio float64, width, height int) float64 {
	return ratio * float64(width) * float64(height)
}

// evaluateBlend decides whether the peel loop stops after a blend pass that
// let `samples` samples through. previous is the count of the prior pass,
// nil on the first one.
//
// The loop stops when the count reaches the threshold, or when it fails to
// strictly decrease: previous <= samples, equality included.
func evaluateBlend(samples uint32, previous *uint32, threshold float64) BlendingStatus {
	status := BlendingStatus{SamplesPassed: &samples}
	if float64(samples) <= threshold {
		status.Done = true
		return status
	}
	if previous != nil && *previous <= samples {
		status.Done = true
		status.Stalled = true
	}
	return status
}

// currentSlot is the ping-pong slot written by peel number peelIndex.
// Initialization writes slot 0, so the first peel writes slot 1.
func currentSlot(peelIndex int) int {
	return (peelIndex + 1) % 2
}

func previousSlot(current int) int {
	return 1 - current
}
