package common

import "github.com/chewxy/math32"

// Transform is a decomposed local transform: translation, Euler rotation (radians,
// applied Y * X * Z as in BuildModelMatrix) and per-axis scale.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation holds the X, Y and Z rotation angles in radians.
	Rotation [3]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// IdentityTransform returns a Transform with no translation, no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{Scale: [3]float32{1, 1, 1}}
}

// Matrix builds the column-major model matrix for the transform.
//
// Returns:
//   - [16]float32: the model matrix
func (t Transform) Matrix() [16]float32 {
	var m [16]float32
	BuildModelMatrix(m[:],
		t.Translation[0], t.Translation[1], t.Translation[2],
		t.Rotation[0], t.Rotation[1], t.Rotation[2],
		t.Scale[0], t.Scale[1], t.Scale[2],
	)
	return m
}

// IdentityMatrix returns a 4x4 identity matrix.
//
// Returns:
//   - [16]float32: the identity matrix
func IdentityMatrix() [16]float32 {
	var m [16]float32
	Identity(m[:])
	return m
}

// TransformFromQuaternion builds a Transform whose Euler rotation matches the unit quaternion
// q, given as (x, y, z, w).
//
// Parameters:
//   - translation: the translation
//   - q: the rotation quaternion
//   - scale: the per-axis scale
//
// Returns:
//   - Transform: the equivalent decomposed transform
func TransformFromQuaternion(translation [3]float32, q [4]float32, scale [3]float32) Transform {
	x, y, z, w := q[0], q[1], q[2], q[3]
	r := [3][3]float32{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
	return Transform{Translation: translation, Rotation: eulerFromRotation(r), Scale: scale}
}

// DecomposeMatrix splits a column-major affine matrix into translation, Euler rotation and
// scale. Shear is discarded.
//
// Parameters:
//   - m: the matrix
//
// Returns:
//   - Transform: the decomposed transform
func DecomposeMatrix(m [16]float32) Transform {
	t := Transform{Translation: [3]float32{m[12], m[13], m[14]}}
	var r [3][3]float32
	for col := range 3 {
		s := math32.Sqrt(m[col*4]*m[col*4] + m[col*4+1]*m[col*4+1] + m[col*4+2]*m[col*4+2])
		t.Scale[col] = s
		if s < 1e-6 {
			s = 1
		}
		for row := range 3 {
			r[row][col] = m[col*4+row] / s
		}
	}
	t.Rotation = eulerFromRotation(r)
	return t
}

// eulerFromRotation extracts Y * X * Z Euler angles from a row-major rotation matrix.
func eulerFromRotation(r [3][3]float32) [3]float32 {
	sx := math32.Max(-1, math32.Min(1, -r[1][2]))
	rx := math32.Asin(sx)
	if math32.Abs(sx) < 0.9999999 {
		return [3]float32{rx, math32.Atan2(r[0][2], r[2][2]), math32.Atan2(r[1][0], r[1][1])}
	}
	// gimbal lock: roll folds into yaw
	return [3]float32{rx, math32.Atan2(-r[2][0], r[0][0]), 0}
}
