package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

//OutputCodec is the fourcc the output video is encoded with
const OutputCodec = "MJPG"

type videoSink struct {
	writer *gocv.VideoWriter
}

func (s *videoSink) Write(frame gocv.Mat) error {
	return s.writer.Write(frame)
}

func (s *videoSink) Close() error {
	return s.writer.Close()
}

//OpenVideoSink opens a color video writer at the source's frame rate and the original frame size
func OpenVideoSink(path string, fps float64, width, height int) (Sink, error) {
	writer, err := gocv.VideoWriterFile(path, OutputCodec, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("OpenVideoSink: Could not open '%s', got '%w'", path, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("OpenVideoSink: Could not open '%s'", path)
	}

	return &videoSink{writer: writer}, nil
}

//VideoSinkOpener returns a SinkOpener writing to path
func VideoSinkOpener(path string) SinkOpener {
	return func(fps float64, width, height int) (Sink, error) {
		return OpenVideoSink(path, fps, width, height)
	}
}
