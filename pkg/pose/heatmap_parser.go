package pose

import (
	"fmt"
	"log"

	"github.com/chenBenjamin97/pose3d-live/pkg/inference"
	"github.com/chenBenjamin97/pose3d-live/pkg/skeleton"
	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

//DefaultJointThreshold is the minimal heatmap peak for a joint to count as found
const DefaultJointThreshold = 0.1

//cocoKeypoints is the number of keypoint heatmaps; one more background channel follows them
const cocoKeypoints = 18

//cocoToPanoptic maps a heatmap channel to the panoptic joint it locates. Panoptic joint 2 (pelvis) has no heatmap.
var cocoToPanoptic = [cocoKeypoints]int{1, 0, 9, 10, 11, 3, 4, 5, 12, 13, 14, 6, 7, 8, 15, 16, 17, 18}

//HeatmapParser finds at most one person: the strongest peak of every keypoint heatmap.
//The root relative 3D pose is read from the location maps at the neck peak and then placed in
//the camera frame by solving for the translation that best projects it onto the 2D peaks.
type HeatmapParser struct {
	Threshold float64
	Verbose   bool
}

//NewHeatmapParser returns a parser using DefaultJointThreshold
func NewHeatmapParser() *HeatmapParser {
	return &HeatmapParser{Threshold: DefaultJointThreshold}
}

type peak struct {
	x, y int
	conf float64
}

//Parse implements Parser
func (p *HeatmapParser) Parse(res *inference.Result, scale float64, stride int, focalLength float64) ([]Pose3D, []Pose2D, error) {
	const j = utils.JointsPerPerson

	if res == nil {
		return nil, nil, fmt.Errorf("Parse: Nil inference result")
	}
	hm, ft := res.Heatmaps, res.Features
	if hm.Channels < cocoKeypoints || ft.Channels < 3*j {
		return nil, nil, fmt.Errorf("Parse: Expected %d heatmaps and %d location maps, got %d and %d", cocoKeypoints, 3*j, hm.Channels, ft.Channels)
	}
	if hm.Height != ft.Height || hm.Width != ft.Width {
		return nil, nil, fmt.Errorf("Parse: Heatmaps %dx%d do not match location maps %dx%d", hm.Width, hm.Height, ft.Width, ft.Height)
	}
	if scale <= 0 || stride <= 0 || focalLength <= 0 {
		return nil, nil, fmt.Errorf("Parse: Invalid scale %v, stride %d or focal length %v", scale, stride, focalLength)
	}

	peaks := make([]peak, j)
	for i := range peaks {
		peaks[i] = peak{conf: -1}
	}
	for c, joint := range cocoToPanoptic {
		peaks[joint] = argmax(hm, c)
	}

	root := peaks[skeleton.NeckJoint]
	if root.conf <= p.Threshold {
		return []Pose3D{}, []Pose2D{}, nil
	}

	toPixels := float64(stride) / scale
	cx := float64(hm.Width) * toPixels / 2
	cy := float64(hm.Height) * toPixels / 2

	pose2D := NewPose2D(j)
	pose3D := NewPose3D(j)
	valid := make([]int, 0, j)
	for i, pk := range peaks {
		pose3D.Joints[i] = r3.Vector{
			X: float64(ft.At(3*i, root.y, root.x)) * utils.AvgPersonHeight,
			Y: float64(ft.At(3*i+1, root.y, root.x)) * utils.AvgPersonHeight,
			Z: float64(ft.At(3*i+2, root.y, root.x)) * utils.AvgPersonHeight,
		}

		if pk.conf > p.Threshold {
			pose2D.Joints[i] = r2.Point{X: float64(pk.x) * toPixels, Y: float64(pk.y) * toPixels}
			pose2D.Confidence[i] = pk.conf
			pose3D.Confidence[i] = pk.conf
			valid = append(valid, i)
		} else {
			pose2D.Joints[i] = r2.Point{X: -1, Y: -1}
			pose2D.Confidence[i] = -1
			pose3D.Confidence[i] = -1
		}
	}

	if len(valid) < 2 {
		return []Pose3D{}, []Pose2D{}, nil
	}

	translation, err := solveTranslation(pose3D, pose2D, valid, focalLength, cx, cy)
	if err != nil {
		if p.Verbose {
			log.Printf("Parse: Skipping person, got '%v'", err)
		}
		return []Pose3D{}, []Pose2D{}, nil
	}

	for i := range pose3D.Joints {
		pose3D.Joints[i] = pose3D.Joints[i].Add(translation)
	}

	return []Pose3D{pose3D}, []Pose2D{pose2D}, nil
}

func argmax(t inference.Tensor, c int) peak {
	best := peak{conf: -1}
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			if v := float64(t.At(c, y, x)); v > best.conf {
				best = peak{x: x, y: y, conf: v}
			}
		}
	}

	return best
}

//solveTranslation finds T minimizing the pinhole reprojection error of (rel + T) against the detected 2D joints.
//For every joint: fx*tx - u*tz = u*Z - fx*X and fx*ty - v*tz = v*Z - fx*Y, with (u, v) relative to the principal point.
func solveTranslation(rel Pose3D, proj Pose2D, valid []int, fx, cx, cy float64) (r3.Vector, error) {
	a := mat.NewDense(2*len(valid), 3, nil)
	b := mat.NewVecDense(2*len(valid), nil)

	for row, i := range valid {
		u := proj.Joints[i].X - cx
		v := proj.Joints[i].Y - cy
		p := rel.Joints[i]

		a.SetRow(2*row, []float64{fx, 0, -u})
		b.SetVec(2*row, u*p.Z-fx*p.X)
		a.SetRow(2*row+1, []float64{0, fx, -v})
		b.SetVec(2*row+1, v*p.Z-fx*p.Y)
	}

	var t mat.VecDense
	if err := t.SolveVec(a, b); err != nil {
		return r3.Vector{}, fmt.Errorf("solveTranslation: Could not solve, got '%w'", err)
	}

	return r3.Vector{X: t.AtVec(0), Y: t.AtVec(1), Z: t.AtVec(2)}, nil
}
