package video

import (
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/chenBenjamin97/pose3d-live/pkg/geometry"
	"github.com/chenBenjamin97/pose3d-live/pkg/inference"
	"github.com/chenBenjamin97/pose3d-live/pkg/pose"
	"github.com/chenBenjamin97/pose3d-live/pkg/skeleton"
	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"github.com/golang/geo/r3"
	"gocv.io/x/gocv"
)

//PipelineConfig holds the per session constants of the frame pipeline
type PipelineConfig struct {
	BaseHeight   int     //network input height
	Stride       int     //network output stride
	FocalLength  float64 //<= 0 estimates it from the first frame's width
	OutputLimit  int     //max frames written to the sink, <= 0 writes all
	CanvasWidth  int
	CanvasHeight int
	Verbose      bool
}

//DefaultPipelineConfig returns the reference model's settings
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BaseHeight:   utils.DefaultBaseHeight,
		Stride:       utils.Stride,
		FocalLength:  -1,
		OutputLimit:  utils.DefaultOutputLimit,
		CanvasWidth:  640,
		CanvasHeight: 480,
	}
}

//Pipeline processes one frame at a time: scale, infer, parse, move to world frame, render, record
type Pipeline struct {
	cfg        PipelineConfig
	engine     inference.Engine
	parser     pose.Parser
	renderer   Renderer
	extrinsics *geometry.Extrinsics
	sink       Sink

	canvas gocv.Mat
	scaled gocv.Mat
	focal  float64
	last   FrameResult
}

//NewPipeline wires the collaborators of a session. Close releases the canvas
func NewPipeline(cfg PipelineConfig, engine inference.Engine, parser pose.Parser, renderer Renderer, extrinsics *geometry.Extrinsics) (*Pipeline, error) {
	if engine == nil || parser == nil || renderer == nil || extrinsics == nil {
		return nil, errors.New("NewPipeline: Missing collaborator")
	}
	if cfg.BaseHeight <= 0 || cfg.Stride <= 0 {
		return nil, fmt.Errorf("NewPipeline: Invalid base height %d or stride %d", cfg.BaseHeight, cfg.Stride)
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("NewPipeline: Invalid canvas size %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}

	return &Pipeline{
		cfg:        cfg,
		engine:     engine,
		parser:     parser,
		renderer:   renderer,
		extrinsics: extrinsics,
		canvas:     gocv.NewMatWithSize(cfg.CanvasHeight, cfg.CanvasWidth, gocv.MatTypeCV8UC3),
		scaled:     gocv.NewMat(),
		focal:      cfg.FocalLength,
	}, nil
}

//SetSink enables recording. A nil sink disables it
func (p *Pipeline) SetSink(s Sink) {
	p.sink = s
}

//Canvas returns the persistent 3D canvas
func (p *Pipeline) Canvas() gocv.Mat {
	return p.canvas
}

//FocalLength returns the focal length in use, <= 0 until the first frame when it is estimated
func (p *Pipeline) FocalLength() float64 {
	return p.focal
}

//Process runs the whole pipeline on frame, annotating it in place. Any collaborator failure is fatal for the session
func (p *Pipeline) Process(frame *gocv.Mat, stats *SessionStats) (FrameResult, error) {
	if frame.Empty() {
		return FrameResult{}, errors.New("Process: Empty frame")
	}

	start := time.Now()

	scale := float64(p.cfg.BaseHeight) / float64(frame.Rows())
	gocv.Resize(*frame, &p.scaled, image.Point{}, scale, scale, gocv.InterpolationLinear)

	if p.focal <= 0 { //focal length is unknown, estimated once per session
		p.focal = utils.FocalLengthFactor * float64(frame.Cols())
		log.Printf("Process: Estimated focal length %.1f from frame width %d", p.focal, frame.Cols())
	}

	inferenceResult, err := p.engine.Infer(p.scaled)
	if err != nil {
		return FrameResult{}, fmt.Errorf("Process: Inference failed, got '%w'", err)
	}

	poses3D, poses2D, err := p.parser.Parse(inferenceResult, scale, p.cfg.Stride, p.focal)
	if err != nil {
		return FrameResult{}, fmt.Errorf("Process: Pose parsing failed, got '%w'", err)
	}
	if err := validatePoses(poses3D, poses2D); err != nil {
		return FrameResult{}, err
	}

	result := FrameResult{
		Poses3D: poses3D,
		Poses2D: poses2D,
		Joints:  []r3.Vector{},
		Edges:   []skeleton.Edge{},
	}
	if len(poses3D) > 0 {
		p.extrinsics.Transform(poses3D)
		result.Joints = pose.Flatten(poses3D)
		result.Edges = skeleton.Expand(skeleton.Template, utils.JointsPerPerson, len(poses3D))
	}

	p.renderer.Plot3D(&p.canvas, result.Joints, result.Edges)
	p.renderer.Draw2D(frame, poses2D)

	stats.record(time.Since(start))
	p.renderer.DrawFPS(frame, stats.Perf.FPS())

	stats.FramesProcessed++
	stats.LastPersons = len(poses3D)

	if p.sink != nil && (p.cfg.OutputLimit <= 0 || stats.FramesProcessed <= p.cfg.OutputLimit) {
		if err := p.sink.Write(*frame); err != nil {
			return result, fmt.Errorf("Process: Could not write frame %d, got '%w'", stats.FramesProcessed, err)
		}
		stats.FramesWritten++
		result.Written = true
	}

	if p.cfg.Verbose {
		log.Printf("Process: Frame %d, %d persons, %.1f FPS", stats.FramesProcessed, len(poses3D), stats.Perf.FPS())
	}

	p.last = result
	return result, nil
}

//Redraw plots the last processed frame's skeletons again, used after the 3D view changed while paused
func (p *Pipeline) Redraw() {
	p.renderer.Plot3D(&p.canvas, p.last.Joints, p.last.Edges)
}

//validatePoses makes sure every person has a full joint set in both batches, which keeps expanded edges in bounds
func validatePoses(poses3D []pose.Pose3D, poses2D []pose.Pose2D) error {
	if len(poses3D) != len(poses2D) {
		return fmt.Errorf("Process: Parser returned %d 3D poses but %d 2D poses", len(poses3D), len(poses2D))
	}

	for i := range poses3D {
		if len(poses3D[i].Joints) != utils.JointsPerPerson || len(poses3D[i].Confidence) != utils.JointsPerPerson {
			return fmt.Errorf("Process: 3D pose %d has %d joints, expected %d", i, len(poses3D[i].Joints), utils.JointsPerPerson)
		}
		if len(poses2D[i].Joints) != utils.JointsPerPerson || len(poses2D[i].Confidence) != utils.JointsPerPerson {
			return fmt.Errorf("Process: 2D pose %d has %d joints, expected %d", i, len(poses2D[i].Joints), utils.JointsPerPerson)
		}
	}

	return nil
}

//Close releases the canvas and scratch buffers
func (p *Pipeline) Close() error {
	p.scaled.Close()
	return p.canvas.Close()
}
