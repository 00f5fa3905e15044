package video

import (
	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"gocv.io/x/gocv"
)

//Window titles
const (
	FrameWindowName  = "3D Human Pose Estimation"
	CanvasWindowName = "Canvas 3D"
)

//WindowDisplay shows the annotated frame and the 3D canvas in two OpenCV windows
type WindowDisplay struct {
	frameWindow  *gocv.Window
	canvasWindow *gocv.Window
}

//NewWindowDisplay opens both windows
func NewWindowDisplay() *WindowDisplay {
	return &WindowDisplay{
		frameWindow:  gocv.NewWindow(FrameWindowName),
		canvasWindow: gocv.NewWindow(CanvasWindowName),
	}
}

func (d *WindowDisplay) Show(frame, canvas gocv.Mat) {
	d.canvasWindow.IMShow(canvas)
	d.frameWindow.IMShow(frame)
}

func (d *WindowDisplay) PollKey(delayMs int) int {
	key := d.frameWindow.WaitKey(delayMs)
	if key < 0 {
		return utils.KeyNone
	}

	return key & 0xFF
}

func (d *WindowDisplay) Close() error {
	if err := d.canvasWindow.Close(); err != nil {
		return err
	}

	return d.frameWindow.Close()
}
