package scheduler

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float32) float32

// Linear returns t unchanged.
func Linear(t float32) float32 {
	return t
}

// EaseInOut is the cubic Hermite curve with zero tangents at both ends (3t² - 2t³).
func EaseInOut(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
