//Package pose defines per-person joint arrays and the parser turning raw network output into them.
package pose

import (
	"github.com/chenBenjamin97/pose3d-live/pkg/inference"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

//Pose3D is one person's joints in 3D. Coordinates and confidences are kept in separate arrays of equal length
type Pose3D struct {
	Joints     []r3.Vector
	Confidence []float64
}

//Pose2D is one person's joints projected on the original frame, in pixels
type Pose2D struct {
	Joints     []r2.Point
	Confidence []float64
}

//NewPose3D allocates a pose of n joints
func NewPose3D(n int) Pose3D {
	return Pose3D{Joints: make([]r3.Vector, n), Confidence: make([]float64, n)}
}

//NewPose2D allocates a pose of n joints
func NewPose2D(n int) Pose2D {
	return Pose2D{Joints: make([]r2.Point, n), Confidence: make([]float64, n)}
}

//Found reports whether joint i was detected
func (p Pose2D) Found(i int) bool {
	return p.Confidence[i] > 0
}

//Flatten drops confidences and concatenates all persons' joints, person 0 first
func Flatten(poses []Pose3D) []r3.Vector {
	n := 0
	for _, p := range poses {
		n += len(p.Joints)
	}

	flat := make([]r3.Vector, 0, n)
	for _, p := range poses {
		flat = append(flat, p.Joints...)
	}

	return flat
}

//Parser extracts 3D poses (camera space, cm) and 2D poses (original frame pixels) from an inference result.
//Both returned slices always hold the same number of persons.
type Parser interface {
	Parse(res *inference.Result, scale float64, stride int, focalLength float64) ([]Pose3D, []Pose2D, error)
}
