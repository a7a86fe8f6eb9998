// Package culler computes the set of geometries whose bounds intersect the camera frustum.
package culler

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
)

// VisibleSet is the flat, unordered list of geometries that survived culling.
type VisibleSet struct {
	geometries []*scene.Geometry
}

// Geometries returns the visible geometries. The slice is reused by the next cull pass.
func (v *VisibleSet) Geometries() []*scene.Geometry {
	return v.geometries
}

// Len returns the number of visible geometries.
func (v *VisibleSet) Len() int {
	return len(v.geometries)
}

// Insert appends a geometry.
func (v *VisibleSet) Insert(g *scene.Geometry) {
	v.geometries = append(v.geometries, g)
}

// Clear empties the set, keeping its storage.
func (v *VisibleSet) Clear() {
	clear(v.geometries)
	v.geometries = v.geometries[:0]
}

// Stats counts the work of the last cull pass.
type Stats struct {
	// Tested is the number of spatials whose bound was tested.
	Tested int
	// Rejected is the number of spatials found disjoint, each skipping its subtree.
	Rejected int
	// Visible is the number of geometries in the visible set.
	Visible int
}

// culler is the implementation of the Culler interface.
type culler struct {
	cam     camera.Camera
	frustum common.Frustum
	visible VisibleSet
	stats   Stats
}

// Culler defines the interface for frustum culling a scene graph.
// The frustum is taken from the camera once at the start of each pass.
type Culler interface {
	// Camera returns the camera the culler takes its frustum from.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// SetCamera replaces the camera used by later passes.
	//
	// Parameters:
	//   - cam: the new camera (must not be nil)
	SetCamera(cam camera.Camera)

	// ComputeVisibleSet clears the previous result and collects every geometry below root
	// whose world bound is not disjoint from the frustum. A disjoint spatial skips its whole
	// subtree; a NoCull spatial includes its whole subtree without testing.
	//
	// Parameters:
	//   - root: the subtree to cull, its world bounds already updated
	//
	// Returns:
	//   - *VisibleSet: the visible geometries, owned by the culler until the next pass
	ComputeVisibleSet(root scene.Spatial) *VisibleSet

	// Stats returns the counters of the last pass.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats
}

var _ Culler = &culler{}

// NewCuller creates a Culler over cam. NewCuller panics if cam is nil.
//
// Parameters:
//   - cam: the camera supplying the frustum
//   - options: functional options to configure the culler
//
// Returns:
//   - Culler: the new culler
func NewCuller(cam camera.Camera, options ...CullerBuilderOption) Culler {
	if cam == nil {
		panic("culler: NewCuller requires a non-nil Camera")
	}
	c := &culler{cam: cam}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *culler) Camera() camera.Camera {
	return c.cam
}

func (c *culler) SetCamera(cam camera.Camera) {
	if cam == nil {
		panic("culler: SetCamera requires a non-nil Camera")
	}
	c.cam = cam
}

func (c *culler) ComputeVisibleSet(root scene.Spatial) *VisibleSet {
	c.frustum = c.cam.Frustum()
	c.visible.Clear()
	c.stats = Stats{}

	if root != nil {
		c.cull(root, false)
	}
	c.stats.Visible = c.visible.Len()

	common.Logger().Debug("cull pass",
		"tested", c.stats.Tested,
		"rejected", c.stats.Rejected,
		"visible", c.stats.Visible,
	)
	return &c.visible
}

func (c *culler) Stats() Stats {
	return c.stats
}

// cull tests s unless force is set, then descends. force propagates NoCull to the subtree.
func (c *culler) cull(s scene.Spatial, force bool) {
	force = force || s.NoCull()
	if !force {
		c.stats.Tested++
		b := s.WorldBound()
		if c.frustum.TestSphere(b.Center, b.Radius) == common.Disjoint {
			c.stats.Rejected++
			return
		}
	}

	switch v := s.(type) {
	case *scene.Geometry:
		c.visible.Insert(v)
	case *scene.Node:
		for i := range v.ChildCount() {
			c.cull(v.Child(i), force)
		}
	}
}
