// Package geom holds the small amount of 3D vector math the agent needs.
package geom

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in world space. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// Zero is the origin.
var Zero = Vec3{}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Len returns the Euclidean length.
func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Normalized returns a unit vector with the same direction.
// Vectors too short to normalize come back as Zero.
func (a Vec3) Normalized() Vec3 {
	l := a.Len()
	if l < 1e-9 {
		return Zero
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Flat drops the vertical component.
func (a Vec3) Flat() Vec3 { return Vec3{a.X, 0, a.Z} }

func (a Vec3) String() string { return fmt.Sprintf("(%.2f, %.2f, %.2f)", a.X, a.Y, a.Z) }

// Distance is the straight-line distance between a and b.
func Distance(a, b Vec3) float64 { return a.Sub(b).Len() }

// Direction returns the unit vector pointing from `from` to `to`.
func Direction(from, to Vec3) Vec3 { return to.Sub(from).Normalized() }
