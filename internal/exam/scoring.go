package exam

import "math"

// PassThreshold is the minimum percentage required to pass each stage.
// It is a protocol-level constant shared with the certificate layout and the
// result email, not a tunable.
const PassThreshold = 80

// XP awards. Informational only; they never gate exam progression.
const (
	// XPModuleCompleted is granted once per completed training module.
	XPModuleCompleted = 250
	// XPTheoryPassed is granted for passing the theory stage.
	XPTheoryPassed = 800
	// XPExamPassed is granted for passing the full exam.
	XPExamPassed = 1000
)

// Percentage computes round(100 * correct / total) with half-up rounding.
// A non-positive total yields 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Passed reports whether a stage percentage meets the pass threshold.
func Passed(percent int) bool {
	return percent >= PassThreshold
}

// OverallPassed is the exam verdict: both stages must pass independently.
func OverallPassed(theoryPercent, simulationPercent int) bool {
	return Passed(theoryPercent) && Passed(simulationPercent)
}
