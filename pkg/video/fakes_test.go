package video

import (
	"errors"

	"github.com/chenBenjamin97/pose3d-live/pkg/geometry"
	"github.com/chenBenjamin97/pose3d-live/pkg/inference"
	"github.com/chenBenjamin97/pose3d-live/pkg/pose"
	"github.com/chenBenjamin97/pose3d-live/pkg/skeleton"
	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"github.com/golang/geo/r3"
	"gocv.io/x/gocv"
)

type frameSize struct{ w, h int }

type fakeSource struct {
	sizes  []frameSize
	reads  int
	closed bool
}

func newFakeSource(n, w, h int) *fakeSource {
	s := &fakeSource{}
	for i := 0; i < n; i++ {
		s.sizes = append(s.sizes, frameSize{w, h})
	}
	return s
}

func (s *fakeSource) Read(dst *gocv.Mat) bool {
	if s.reads >= len(s.sizes) {
		return false
	}
	size := s.sizes[s.reads]
	s.reads++

	m := gocv.NewMatWithSize(size.h, size.w, gocv.MatTypeCV8UC3)
	defer m.Close()
	m.CopyTo(dst)
	return true
}

func (s *fakeSource) FPS() float64 { return 25 }

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeSink struct {
	writes int
	closed bool
	sizes  []frameSize
}

func (s *fakeSink) Write(frame gocv.Mat) error {
	s.writes++
	s.sizes = append(s.sizes, frameSize{frame.Cols(), frame.Rows()})
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

type fakeEngine struct {
	scaled []frameSize
	err    error
}

func (e *fakeEngine) Infer(img gocv.Mat) (*inference.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.scaled = append(e.scaled, frameSize{img.Cols(), img.Rows()})
	return &inference.Result{}, nil
}

//fakeParser returns persons[i] people on call i (1 person once the script runs out)
type fakeParser struct {
	persons  []int
	calls    int
	focals   []float64
	scales   []float64
	mismatch bool
}

func (p *fakeParser) Parse(res *inference.Result, scale float64, stride int, focal float64) ([]pose.Pose3D, []pose.Pose2D, error) {
	n := 1
	if p.calls < len(p.persons) {
		n = p.persons[p.calls]
	}
	p.calls++
	p.focals = append(p.focals, focal)
	p.scales = append(p.scales, scale)

	poses3D := make([]pose.Pose3D, 0, n)
	poses2D := make([]pose.Pose2D, 0, n)
	for k := 0; k < n; k++ {
		p3 := pose.NewPose3D(utils.JointsPerPerson)
		p2 := pose.NewPose2D(utils.JointsPerPerson)
		for j := range p3.Joints {
			p3.Joints[j] = r3.Vector{X: float64(j), Y: float64(k), Z: 300}
			p3.Confidence[j] = 0.9
			p2.Joints[j].X, p2.Joints[j].Y = float64(10*j), float64(10*k)
			p2.Confidence[j] = 0.9
		}
		poses3D = append(poses3D, p3)
		poses2D = append(poses2D, p2)
	}
	if p.mismatch {
		poses2D = poses2D[:0]
	}

	return poses3D, poses2D, nil
}

type plotCall struct {
	joints int
	edges  []skeleton.Edge
}

type fakeRenderer struct {
	plots []plotCall
	draws int
	fps   []float64
	keys  []int
}

func (r *fakeRenderer) Plot3D(canvas *gocv.Mat, joints []r3.Vector, edges []skeleton.Edge) {
	r.plots = append(r.plots, plotCall{joints: len(joints), edges: edges})
}

func (r *fakeRenderer) Draw2D(frame *gocv.Mat, poses []pose.Pose2D) { r.draws++ }

func (r *fakeRenderer) DrawFPS(frame *gocv.Mat, fps float64) { r.fps = append(r.fps, fps) }

func (r *fakeRenderer) HandleKey(key int) { r.keys = append(r.keys, key) }

type fakeDisplay struct {
	keys   []int
	polls  []int
	shows  int
	onPoll func(n int) //called with the 1 based poll count before a key is returned
}

func (d *fakeDisplay) Show(frame, canvas gocv.Mat) { d.shows++ }

func (d *fakeDisplay) PollKey(delayMs int) int {
	d.polls = append(d.polls, delayMs)
	if d.onPoll != nil {
		d.onPoll(len(d.polls))
	}
	if len(d.keys) == 0 {
		return utils.KeyNone
	}
	k := d.keys[0]
	d.keys = d.keys[1:]
	return k
}

func (d *fakeDisplay) Close() error { return nil }

var errInference = errors.New("device lost")

func identityExtrinsics() *geometry.Extrinsics {
	ext, err := geometry.NewExtrinsics([3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, [3]float64{})
	if err != nil {
		panic(err)
	}
	return ext
}
