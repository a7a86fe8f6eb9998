package common

import (
	"github.com/chewxy/math32"
)

// BoundingSphere is the bounding volume used by the scene graph. A negative radius marks
// an empty bound (no geometry below it) which merges as the identity element.
type BoundingSphere struct {
	Center [3]float32
	Radius float32
}

// EmptyBound returns a bound that contains nothing.
//
// Returns:
//   - BoundingSphere: an empty bound
func EmptyBound() BoundingSphere {
	return BoundingSphere{Radius: -1}
}

// Empty reports whether the bound contains nothing.
//
// Returns:
//   - bool: true for an empty bound
func (b BoundingSphere) Empty() bool {
	return b.Radius < 0
}

// Transformed returns the bound moved into the space described by m. The radius is scaled
// by the largest axis scale so the result still encloses the original volume.
//
// Parameters:
//   - m: a column-major affine matrix
//
// Returns:
//   - BoundingSphere: the transformed bound
func (b BoundingSphere) Transformed(m [16]float32) BoundingSphere {
	if b.Empty() {
		return b
	}
	return BoundingSphere{
		Center: TransformPoint(m[:], b.Center),
		Radius: b.Radius * MaxAxisScale(m[:]),
	}
}

// Merge returns the smallest sphere enclosing both b and other.
//
// Parameters:
//   - other: the bound to merge with
//
// Returns:
//   - BoundingSphere: the enclosing bound
func (b BoundingSphere) Merge(other BoundingSphere) BoundingSphere {
	if other.Empty() {
		return b
	}
	if b.Empty() {
		return other
	}

	dx := other.Center[0] - b.Center[0]
	dy := other.Center[1] - b.Center[1]
	dz := other.Center[2] - b.Center[2]
	dist := math32.Sqrt(dx*dx + dy*dy + dz*dz)

	if dist+other.Radius <= b.Radius {
		return b
	}
	if dist+b.Radius <= other.Radius {
		return other
	}

	radius := (dist + b.Radius + other.Radius) * 0.5
	t := (radius - b.Radius) / dist
	return BoundingSphere{
		Center: [3]float32{
			b.Center[0] + dx*t,
			b.Center[1] + dy*t,
			b.Center[2] + dz*t,
		},
		Radius: radius,
	}
}

// ComputeBound returns a sphere enclosing the given positions, centered on their
// axis-aligned box midpoint.
//
// Parameters:
//   - positions: vertex positions
//
// Returns:
//   - BoundingSphere: the enclosing bound, or an empty bound for no positions
func ComputeBound(positions [][3]float32) BoundingSphere {
	if len(positions) == 0 {
		return EmptyBound()
	}
	minP, maxP := positions[0], positions[0]
	for _, p := range positions[1:] {
		for i := range 3 {
			minP[i] = math32.Min(minP[i], p[i])
			maxP[i] = math32.Max(maxP[i], p[i])
		}
	}
	center := [3]float32{
		(minP[0] + maxP[0]) * 0.5,
		(minP[1] + maxP[1]) * 0.5,
		(minP[2] + maxP[2]) * 0.5,
	}
	var r2 float32
	for _, p := range positions {
		dx, dy, dz := p[0]-center[0], p[1]-center[1], p[2]-center[2]
		r2 = math32.Max(r2, dx*dx+dy*dy+dz*dz)
	}
	return BoundingSphere{Center: center, Radius: math32.Sqrt(r2)}
}
