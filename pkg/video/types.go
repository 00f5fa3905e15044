package video

import (
	"github.com/chenBenjamin97/pose3d-live/pkg/pose"
	"github.com/chenBenjamin97/pose3d-live/pkg/skeleton"
	"github.com/golang/geo/r3"
	"gocv.io/x/gocv"
)

//State is a session lifecycle state
type State int

const (
	StateInit State = iota
	StateRunning
	StatePaused
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

//Source yields frames until it is exhausted
type Source interface {
	//Read fills dst with the next frame, returns false at end of stream
	Read(dst *gocv.Mat) bool
	FPS() float64
	Close() error
}

//Sink receives annotated frames
type Sink interface {
	Write(frame gocv.Mat) error
	Close() error
}

//SinkOpener opens the output once the first frame's dimensions are known
type SinkOpener func(fps float64, width, height int) (Sink, error)

//Display shows the annotated frame and the 3D canvas and reports pressed keys
type Display interface {
	Show(frame, canvas gocv.Mat)
	//PollKey waits up to delayMs for a key press, returns utils.KeyNone when nothing was pressed
	PollKey(delayMs int) int
	Close() error
}

//Renderer draws poses on the 3D canvas and the original frame, both in place
type Renderer interface {
	Plot3D(canvas *gocv.Mat, joints []r3.Vector, edges []skeleton.Edge)
	Draw2D(frame *gocv.Mat, poses []pose.Pose2D)
	DrawFPS(frame *gocv.Mat, fps float64)
}

//KeyHandler is implemented by renderers reacting to keys the session does not handle itself
type KeyHandler interface {
	HandleKey(key int)
}

//FrameResult is what one pipeline pass produced
type FrameResult struct {
	Poses3D []pose.Pose3D
	Poses2D []pose.Pose2D
	Joints  []r3.Vector
	Edges   []skeleton.Edge
	Written bool
}
