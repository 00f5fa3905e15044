//Package inference runs the pose estimation network on a frame and hands back its raw output maps.
package inference

import (
	"fmt"

	"gocv.io/x/gocv"
)

//Output layer names of the 3D pose network
const (
	FeaturesLayer = "features"
	HeatmapsLayer = "heatmaps"
)

//Engine turns an image of any size into the network's raw output. Implementations must be deterministic per input.
type Engine interface {
	Infer(img gocv.Mat) (*Result, error)
}

//Tensor is a dense channels x height x width float map copied out of a network blob
type Tensor struct {
	Channels int
	Height   int
	Width    int
	Data     []float32
}

//NewTensor allocates a zeroed tensor
func NewTensor(channels, height, width int) Tensor {
	return Tensor{Channels: channels, Height: height, Width: width, Data: make([]float32, channels*height*width)}
}

//At returns the value at channel c, row y, column x
func (t Tensor) At(c, y, x int) float32 {
	return t.Data[(c*t.Height+y)*t.Width+x]
}

//Set stores v at channel c, row y, column x
func (t Tensor) Set(c, y, x int, v float32) {
	t.Data[(c*t.Height+y)*t.Width+x] = v
}

//Result is the opaque output of one inference call
type Result struct {
	Features Tensor //3*J location maps interleaved per panoptic joint: x, y, z of joint 0, then of joint 1, ...
	Heatmaps Tensor //18 COCO ordered keypoint heatmaps followed by a background map
}

//tensorFromBlob copies a 1xCxHxW float blob
func tensorFromBlob(blob gocv.Mat) (Tensor, error) {
	size := blob.Size()
	if len(size) != 4 {
		return Tensor{}, fmt.Errorf("tensorFromBlob: Expected 4 dims blob, got %v", size)
	}

	data, err := blob.DataPtrFloat32()
	if err != nil {
		return Tensor{}, fmt.Errorf("tensorFromBlob: Could not read blob data, got '%w'", err)
	}

	t := NewTensor(size[1], size[2], size[3])
	if len(data) < len(t.Data) {
		return Tensor{}, fmt.Errorf("tensorFromBlob: Blob holds %d values, expected %d", len(data), len(t.Data))
	}
	copy(t.Data, data)

	return t, nil
}
