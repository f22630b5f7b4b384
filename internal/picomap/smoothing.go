package picomap

import (
	"fmt"
	"strings"
)

// Smoothing selects the run-smoothing passes applied after scaling.
type Smoothing uint8

const (
	// SmoothForward promotes the later of two adjacent BlockBottom rows to
	// BlockFull. BlockTop runs are left untouched.
	SmoothForward Smoothing = iota
	// SmoothSymmetric additionally promotes the earlier of two adjacent
	// BlockTop rows to BlockFull, scanning backward.
	SmoothSymmetric
)

func (s Smoothing) String() string {
	switch s {
	case SmoothSymmetric:
		return "symmetric"
	default:
		return "forward"
	}
}

// ParseSmoothing converts a config value into a Smoothing.
func ParseSmoothing(s string) (Smoothing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward":
		return SmoothForward, nil
	case "symmetric":
		return SmoothSymmetric, nil
	default:
		return SmoothForward, fmt.Errorf("invalid smoothing %q (expected forward|symmetric)", s)
	}
}
