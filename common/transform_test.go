package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestTransformFromQuaternionAboutY(t *testing.T) {
	h := math32.Sqrt(0.5)
	tr := TransformFromQuaternion([3]float32{1, 2, 3}, [4]float32{0, h, 0, h}, [3]float32{1, 1, 1})
	assert.InDeltaSlice(t, []float32{0, math32.Pi / 2, 0}, tr.Rotation[:], 1e-5)
	assert.Equal(t, [3]float32{1, 2, 3}, tr.Translation)

	m := tr.Matrix()
	p := TransformPoint(m[:], [3]float32{0, 0, 1})
	assert.InDeltaSlice(t, []float32{2, 2, 3}, p[:], 1e-5)
}

func TestTransformFromQuaternionMatchesRotationMatrix(t *testing.T) {
	// normalized (0.2, -0.4, 0.1, 0.9)
	q := [4]float32{0.2, -0.4, 0.1, 0.9}
	n := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	for i := range q {
		q[i] /= n
	}
	x, y, z, w := q[0], q[1], q[2], q[3]
	want := []float32{
		1 - 2*(y*y+z*z), 2 * (x*y + z*w), 2 * (x*z - y*w), 0,
		2 * (x*y - z*w), 1 - 2*(x*x+z*z), 2 * (y*z + x*w), 0,
		2 * (x*z + y*w), 2 * (y*z - x*w), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
	m := TransformFromQuaternion([3]float32{}, q, [3]float32{1, 1, 1}).Matrix()
	assert.InDeltaSlice(t, want, m[:], 1e-5)
}

func TestDecomposeMatrixRoundTrip(t *testing.T) {
	src := Transform{
		Translation: [3]float32{-4, 0.5, 9},
		Rotation:    [3]float32{0.3, -0.7, 1.1},
		Scale:       [3]float32{2, 3, 0.5},
	}
	got := DecomposeMatrix(src.Matrix())
	assert.InDeltaSlice(t, src.Translation[:], got.Translation[:], 1e-5)
	assert.InDeltaSlice(t, src.Rotation[:], got.Rotation[:], 1e-4)
	assert.InDeltaSlice(t, src.Scale[:], got.Scale[:], 1e-5)
}

func TestDecomposeMatrixGimbalLock(t *testing.T) {
	src := Transform{Rotation: [3]float32{math32.Pi / 2, 0.4, 0}, Scale: [3]float32{1, 1, 1}}
	want := src.Matrix()
	got := DecomposeMatrix(want).Matrix()
	assert.InDeltaSlice(t, want[:], got[:], 1e-4)
}
