package bsn

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// localMatrix returns the affine matrix [a, b, c, d, tx, ty] for t.
//
//	Scale -> Rotate -> Translate(X, Y)
func localMatrix(t *Transform) [6]float64 {
	sin, cos := math.Sincos(t.Rotation)
	return [6]float64{
		cos * t.ScaleX, sin * t.ScaleX,
		-sin * t.ScaleY, cos * t.ScaleY,
		t.X, t.Y,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// bagTransform returns the Transform embedded in n's bag, or nil.
func bagTransform(n *Node) *Transform {
	if t, ok := n.bag.(transformer); ok {
		return t.transform()
	}
	return nil
}

// WorldTransform composes the transforms of n and its ancestors. Nodes
// whose bag has no Transform contribute the identity. The result is
// computed on every call since patches write bags directly.
func (n *Node) WorldTransform() [6]float64 {
	m := identityTransform
	for p := n; p != nil; p = p.Parent {
		if t := bagTransform(p); t != nil {
			m = multiplyAffine(localMatrix(t), m)
		}
	}
	return m
}

// WorldAlpha returns the product of Alpha over n and its ancestors.
func (n *Node) WorldAlpha() float64 {
	a := 1.0
	for p := n; p != nil; p = p.Parent {
		if t := bagTransform(p); t != nil {
			a *= t.Alpha
		}
	}
	return a
}

// WorldVisible reports whether n and all of its ancestors are visible.
func (n *Node) WorldVisible() bool {
	for p := n; p != nil; p = p.Parent {
		if t := bagTransform(p); t != nil && !t.Visible {
			return false
		}
	}
	return true
}

// LocalToWorld converts a point in n's local space to world space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.WorldTransform(), lx, ly)
}

// WorldToLocal converts a world-space point to n's local space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(n.WorldTransform()), wx, wy)
}
