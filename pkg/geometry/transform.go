package geometry

import (
	"github.com/chenBenjamin97/pose3d-live/pkg/pose"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

//ToWorld applies world = R^-1 * (camera - t) to every joint, in place. Confidences are not touched.
func (e *Extrinsics) ToWorld(poses []pose.Pose3D) {
	for _, p := range poses {
		apply(p.Joints, e.rInv, e.t.Mul(-1), false)
	}
}

//ForwardTransform maps world joints back to the camera frame: camera = R*world + t, in place
func (e *Extrinsics) ForwardTransform(poses []pose.Pose3D) {
	for _, p := range poses {
		apply(p.Joints, e.r, e.t, true)
	}
}

//apply computes m*(v+offset) when offsetAfter is false, m*v+offset otherwise.
//Joints are laid out as the columns of a 3xJ matrix.
func apply(joints []r3.Vector, m *mat.Dense, offset r3.Vector, offsetAfter bool) {
	if len(joints) == 0 {
		return
	}

	cols := mat.NewDense(3, len(joints), nil)
	for j, v := range joints {
		if !offsetAfter {
			v = v.Add(offset)
		}
		cols.Set(0, j, v.X)
		cols.Set(1, j, v.Y)
		cols.Set(2, j, v.Z)
	}

	var out mat.Dense
	out.Mul(m, cols)

	for j := range joints {
		v := r3.Vector{X: out.At(0, j), Y: out.At(1, j), Z: out.At(2, j)}
		if offsetAfter {
			v = v.Add(offset)
		}
		joints[j] = v
	}
}

//RemapAxes turns camera convention (z forward, y down) into display convention: (x, y, z) -> (-z, x, -y)
func RemapAxes(poses []pose.Pose3D) {
	for _, p := range poses {
		for j, v := range p.Joints {
			p.Joints[j] = r3.Vector{X: -v.Z, Y: v.X, Z: -v.Y}
		}
	}
}

//Transform moves a camera space batch into display space. An empty batch is left as is.
func (e *Extrinsics) Transform(poses []pose.Pose3D) {
	if len(poses) == 0 {
		return
	}

	e.ToWorld(poses)
	RemapAxes(poses)
}
