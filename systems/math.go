package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Bounds represents the viewport the simulations run in.
type Bounds struct {
	Width, Height float64
}

// Valid reports whether both dimensions are finite and positive.
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0 && !math.IsInf(b.Width, 0) && !math.IsInf(b.Height, 0)
}

// validStep reports whether dt can be integrated.
func validStep(dt float64) bool {
	return dt > 0 && !math.IsInf(dt, 0) // NaN fails dt > 0
}

// clamp clamps v between minVal and maxVal.
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// normalizeAngle wraps an angle to [-Pi, Pi].
func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// wrap returns v modulo size in [0, size).
func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	// -tiny + size can round up to size
	if v >= size {
		v = 0
	}
	return v
}

// unitFromAngle returns the unit vector at angle radians.
func unitFromAngle(angle float64) r2.Vec {
	s, c := math.Sincos(angle)
	return r2.Vec{X: c, Y: s}
}
