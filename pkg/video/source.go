package video

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"gocv.io/x/gocv"
)

//captureSource reads from a video file or a camera
type captureSource struct {
	cap *gocv.VideoCapture
	fps float64
}

func (c *captureSource) Read(dst *gocv.Mat) bool {
	return c.cap.Read(dst)
}

func (c *captureSource) FPS() float64 {
	return c.fps
}

func (c *captureSource) Close() error {
	return c.cap.Close()
}

//imageSource reads a list of still images in order. Unreadable files are skipped
type imageSource struct {
	paths []string
	next  int
}

func (s *imageSource) Read(dst *gocv.Mat) bool {
	for s.next < len(s.paths) {
		path := s.paths[s.next]
		s.next++

		img := gocv.IMRead(path, gocv.IMReadColor)
		if img.Empty() {
			log.Printf("imageSource: Could not read '%s', skipping", path)
			img.Close()
			continue
		}

		img.CopyTo(dst)
		img.Close()
		return true
	}

	return false
}

func (s *imageSource) FPS() float64 {
	return utils.ImageSequenceFPS
}

func (s *imageSource) Close() error {
	return nil
}

//OpenSource opens input as a camera index, a folder of images, a single image or a video file, in that order
func OpenSource(input string) (Source, error) {
	if id, err := strconv.Atoi(input); err == nil {
		cap, err := gocv.VideoCaptureDevice(id)
		if err != nil {
			return nil, fmt.Errorf("OpenSource: Could not open camera %d, got '%w'", id, err)
		}
		cap.Set(gocv.VideoCaptureFrameWidth, 640)
		cap.Set(gocv.VideoCaptureFrameHeight, 480)

		fps := cap.Get(gocv.VideoCaptureFPS)
		if fps <= 0 {
			fps = utils.DefaultCaptureFPS
		}
		return &captureSource{cap: cap, fps: fps}, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("OpenSource: Could not open '%s', got '%w'", input, err)
	}

	if info.IsDir() {
		paths, err := utils.ListImages(input)
		if err != nil {
			return nil, fmt.Errorf("OpenSource: %w", err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("OpenSource: No images found in '%s'", input)
		}
		return &imageSource{paths: paths}, nil
	}

	if utils.IsImageFile(input) {
		return &imageSource{paths: []string{input}}, nil
	}

	cap, err := gocv.VideoCaptureFile(input)
	if err != nil {
		return nil, fmt.Errorf("OpenSource: Could not open video '%s', got '%w'", input, err)
	}

	fps := cap.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = utils.DefaultCaptureFPS
	}
	return &captureSource{cap: cap, fps: fps}, nil
}
