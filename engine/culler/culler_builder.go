package culler

import "github.com/Carmen-Shannon/oxy-fx/engine/scene"

// CullerBuilderOption is a functional option for configuring a Culler.
type CullerBuilderOption func(*culler)

// WithCapacity preallocates room for n visible geometries.
//
// Parameters:
//   - n: the expected number of visible geometries
//
// Returns:
//   - CullerBuilderOption: option function to apply
func WithCapacity(n int) CullerBuilderOption {
	return func(c *culler) {
		if n > 0 {
			c.visible.geometries = make([]*scene.Geometry, 0, n)
		}
	}
}
