package common

import (
	"github.com/chewxy/math32"
)

// Sphere is a bounding sphere in either local or world space.
type Sphere struct {
	Center [3]float32
	Radius float32
}

// AABB is an axis-aligned bounding box in either local or world space.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// EmptyAABB returns an inverted AABB suitable as the identity for Merge:
// merging any box into it yields that box unchanged.
//
// Returns:
//   - AABB: an AABB with Min at +inf and Max at -inf on every axis
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

// Merge grows the AABB to enclose another AABB.
//
// Parameters:
//   - other: the box to enclose
func (b *AABB) Merge(other AABB) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], other.Min[i])
		b.Max[i] = math32.Max(b.Max[i], other.Max[i])
	}
}

// Extend grows the AABB to enclose a single point.
//
// Parameters:
//   - p: the point to enclose
func (b *AABB) Extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// Center returns the midpoint of the AABB.
//
// Returns:
//   - [3]float32: the box center
func (b AABB) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) * 0.5,
		(b.Min[1] + b.Max[1]) * 0.5,
		(b.Min[2] + b.Max[2]) * 0.5,
	}
}

// Transform applies a 4x4 column-major matrix to the AABB and returns the
// axis-aligned box enclosing the transformed corners. Uses the
// center/extent formulation to avoid iterating all eight corners.
//
// Parameters:
//   - m: transform matrix (16 elements, column-major)
//
// Returns:
//   - AABB: the enclosing box of the transformed AABB
func (b AABB) Transform(m []float32) AABB {
	center := b.Center()
	extent := [3]float32{
		(b.Max[0] - b.Min[0]) * 0.5,
		(b.Max[1] - b.Min[1]) * 0.5,
		(b.Max[2] - b.Min[2]) * 0.5,
	}

	newCenter := TransformPoint(m, center)

	var newExtent [3]float32
	for row := 0; row < 3; row++ {
		newExtent[row] = math32.Abs(m[0+row])*extent[0] +
			math32.Abs(m[4+row])*extent[1] +
			math32.Abs(m[8+row])*extent[2]
	}

	return AABB{
		Min: [3]float32{newCenter[0] - newExtent[0], newCenter[1] - newExtent[1], newCenter[2] - newExtent[2]},
		Max: [3]float32{newCenter[0] + newExtent[0], newCenter[1] + newExtent[1], newCenter[2] + newExtent[2]},
	}
}

// BoundingSphere returns the sphere centered at the box midpoint that
// encloses all eight corners.
//
// Returns:
//   - Sphere: the enclosing sphere
func (b AABB) BoundingSphere() Sphere {
	center := b.Center()
	dx := b.Max[0] - center[0]
	dy := b.Max[1] - center[1]
	dz := b.Max[2] - center[2]
	return Sphere{
		Center: center,
		Radius: math32.Sqrt(dx*dx + dy*dy + dz*dz),
	}
}

// Transform applies a world matrix to the sphere: the center is transformed
// as a point and the radius scaled by the matrix's largest axis scale.
//
// Parameters:
//   - m: transform matrix (16 elements, column-major)
//
// Returns:
//   - Sphere: the transformed sphere
func (s Sphere) Transform(m []float32) Sphere {
	return Sphere{
		Center: TransformPoint(m, s.Center),
		Radius: s.Radius * MaxScale(m),
	}
}

// Merge returns the smallest sphere enclosing both s and other.
//
// Parameters:
//   - other: the sphere to enclose
//
// Returns:
//   - Sphere: the merged sphere
func (s Sphere) Merge(other Sphere) Sphere {
	if s.Radius == 0 {
		return other
	}
	if other.Radius == 0 {
		return s
	}

	dx := other.Center[0] - s.Center[0]
	dy := other.Center[1] - s.Center[1]
	dz := other.Center[2] - s.Center[2]
	dist := math32.Sqrt(dx*dx + dy*dy + dz*dz)

	// One sphere fully contains the other.
	if dist+other.Radius <= s.Radius {
		return s
	}
	if dist+s.Radius <= other.Radius {
		return other
	}

	newRadius := (dist + s.Radius + other.Radius) * 0.5
	t := (newRadius - s.Radius) / dist
	return Sphere{
		Center: [3]float32{
			s.Center[0] + dx*t,
			s.Center[1] + dy*t,
			s.Center[2] + dz*t,
		},
		Radius: newRadius,
	}
}
