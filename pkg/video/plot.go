package video

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/chenBenjamin97/pose3d-live/pkg/pose"
	"github.com/chenBenjamin97/pose3d-live/pkg/skeleton"
	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gocv.io/x/gocv"
)

var limbColor = color.RGBA{255, 255, 0, 0}
var jointColor = color.RGBA{0, 255, 255, 0}
var fpsColor = color.RGBA{255, 0, 0, 0}
var gridColor = color.RGBA{80, 80, 80, 0}
var skeletonColor = color.RGBA{255, 255, 255, 0}

//rotateStep is how far (radians) one key press turns the 3D view
const rotateStep = 0.1

//Plotter3D projects display space joints (z up, cm) on a canvas, looking from a yaw/pitch controlled direction
type Plotter3D struct {
	Yaw   float64
	Pitch float64
	Scale float64 //pixels per cm
	//GridHalfSize and GridStep define the ground grid, in cm
	GridHalfSize float64
	GridStep     float64
}

//NewPlotter3D returns a plotter showing roughly 6 meters across the shorter canvas side
func NewPlotter3D(canvasWidth, canvasHeight int) *Plotter3D {
	side := math.Min(float64(canvasWidth), float64(canvasHeight))
	return &Plotter3D{
		Yaw:          math.Pi / 4,
		Pitch:        -math.Pi / 6,
		Scale:        side / 600,
		GridHalfSize: 200,
		GridStep:     40,
	}
}

//Project maps a display space point to canvas pixels
func (p *Plotter3D) Project(v r3.Vector, width, height int) image.Point {
	cy, sy := math.Cos(p.Yaw), math.Sin(p.Yaw)
	cp, sp := math.Cos(p.Pitch), math.Sin(p.Pitch)

	x := cy*v.X - sy*v.Y
	y := sy*v.X + cy*v.Y
	z := sp*y + cp*v.Z

	return image.Pt(
		int(math.Round(float64(width)/2+p.Scale*x)),
		int(math.Round(float64(height)/2-p.Scale*z)),
	)
}

//Plot clears canvas, draws the ground grid and every edge between joints
func (p *Plotter3D) Plot(canvas *gocv.Mat, joints []r3.Vector, edges []skeleton.Edge) {
	canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))
	w, h := canvas.Cols(), canvas.Rows()

	for g := -p.GridHalfSize; g <= p.GridHalfSize; g += p.GridStep {
		gocv.Line(canvas, p.Project(r3.Vector{X: g, Y: -p.GridHalfSize}, w, h), p.Project(r3.Vector{X: g, Y: p.GridHalfSize}, w, h), gridColor, 1)
		gocv.Line(canvas, p.Project(r3.Vector{X: -p.GridHalfSize, Y: g}, w, h), p.Project(r3.Vector{X: p.GridHalfSize, Y: g}, w, h), gridColor, 1)
	}

	for _, e := range edges {
		if e[0] < 0 || e[1] < 0 || e[0] >= len(joints) || e[1] >= len(joints) {
			continue
		}
		gocv.Line(canvas, p.Project(joints[e[0]], w, h), p.Project(joints[e[1]], w, h), skeletonColor, 2)
	}
}

//Rotate turns the view, pitch is kept within straight down/up
func (p *Plotter3D) Rotate(dYaw, dPitch float64) {
	p.Yaw = math.Mod(p.Yaw+dYaw, 2*math.Pi)
	p.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, p.Pitch+dPitch))
}

//CVRenderer draws with OpenCV primitives
type CVRenderer struct {
	Plotter *Plotter3D
}

//NewCVRenderer returns a renderer for a canvas of the given size
func NewCVRenderer(canvasWidth, canvasHeight int) *CVRenderer {
	return &CVRenderer{Plotter: NewPlotter3D(canvasWidth, canvasHeight)}
}

func (r *CVRenderer) Plot3D(canvas *gocv.Mat, joints []r3.Vector, edges []skeleton.Edge) {
	r.Plotter.Plot(canvas, joints, edges)
}

//Draw2D plots every person's limbs between found joints and a dot on each found joint
func (r *CVRenderer) Draw2D(frame *gocv.Mat, poses []pose.Pose2D) {
	for _, p := range poses {
		for _, e := range skeleton.Template {
			if p.Found(e[0]) && p.Found(e[1]) {
				gocv.Line(frame, toPoint(p.Joints[e[0]]), toPoint(p.Joints[e[1]]), limbColor, 2)
			}
		}
		for i, j := range p.Joints {
			if p.Found(i) {
				gocv.Circle(frame, toPoint(j), 3, jointColor, -1)
			}
		}
	}
}

func (r *CVRenderer) DrawFPS(frame *gocv.Mat, fps float64) {
	gocv.PutText(frame, fmt.Sprintf("FPS: %.1f", fps), image.Pt(40, 80), gocv.FontHersheyComplex, 1, fpsColor, 1)
}

//HandleKey rotates the 3D view: a/d yaw, w/s pitch
func (r *CVRenderer) HandleKey(key int) {
	switch key {
	case utils.KeyA:
		r.Plotter.Rotate(-rotateStep, 0)
	case utils.KeyD:
		r.Plotter.Rotate(rotateStep, 0)
	case utils.KeyW:
		r.Plotter.Rotate(0, rotateStep)
	case utils.KeyS:
		r.Plotter.Rotate(0, -rotateStep)
	}
}

func toPoint(p r2.Point) image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}
