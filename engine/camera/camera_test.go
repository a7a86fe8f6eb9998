package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestCameraFrustumLooksDownNegativeZ(t *testing.T) {
	c := NewCamera(
		WithPosition(0, 0, 0),
		WithTarget(0, 0, -1),
		WithFov(math32.Pi/2),
		WithNear(0.1),
		WithFar(100),
	)
	f := c.Frustum()

	assert.Equal(t, common.Contains, f.TestSphere([3]float32{0, 0, -10}, 1))
	assert.Equal(t, common.Disjoint, f.TestSphere([3]float32{0, 0, 10}, 1))
	assert.Equal(t, common.Disjoint, f.TestSphere([3]float32{0, 0, -200}, 1))
	assert.Equal(t, common.Intersects, f.TestSphere([3]float32{0, 0, -100}, 1))
}

func TestCameraSettersRecomputeMatrices(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 5))
	before := c.ViewProjectionMatrix()

	c.SetPosition(3, 0, 5)
	assert.NotEqual(t, before, c.ViewProjectionMatrix())

	x, y, z := c.Position()
	assert.Equal(t, [3]float32{3, 0, 5}, [3]float32{x, y, z})

	c.SetAspect(2)
	assert.Equal(t, float32(2), c.Aspect())
	p := c.ProjectionMatrix()
	assert.InDelta(t, p[5]/2, p[0], 1e-6)
}
