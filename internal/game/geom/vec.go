// Package geom holds the 2-D vector math used by the table simulation.
// The y axis grows downward, matching image coordinates.
package geom

import "math"

// Vec is a 2-D vector or point.
type Vec struct {
	X, Y float64
}

// V is shorthand for Vec{x, y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }

// Len2 is the squared length.
func (v Vec) Len2() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector in v's direction; the zero vector stays zero.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// Dist is the euclidean distance between two points.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// FromDegrees returns the unit vector at deg degrees, measured clockwise from
// the positive x axis on screen (so 90 points down).
func FromDegrees(deg float64) Vec {
	rad := NormalizeDegrees(deg) * math.Pi / 180
	return Vec{math.Cos(rad), math.Sin(rad)}
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
