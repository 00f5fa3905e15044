package video

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"gocv.io/x/gocv"
)

//ErrEmptySource is returned when the input does not yield even a first frame
var ErrEmptySource = errors.New("can't read an image from the input")

//SessionConfig controls the session loop
type SessionConfig struct {
	PausedPollMs   int    //key poll delay while paused
	TimingPlotPath string //written when the session ends, empty disables it
}

//DefaultSessionConfig returns the interactive defaults
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{PausedPollMs: 100}
}

//runningPollMs keeps the key poll non blocking while frames are flowing
const runningPollMs = 1

//Session owns the capture source and the output sink and drives the pipeline until the stream ends or the user cancels
type Session struct {
	ID string

	cfg      SessionConfig
	source   Source
	openSink SinkOpener
	sink     Sink
	pipeline *Pipeline
	display  Display
	monitor  *Monitor

	state State
	stats SessionStats
}

//NewSession builds a session around an opened source. A nil display runs headless
func NewSession(id string, cfg SessionConfig, source Source, pipeline *Pipeline, display Display) *Session {
	return &Session{
		ID:       id,
		cfg:      cfg,
		source:   source,
		pipeline: pipeline,
		display:  display,
		state:    StateInit,
	}
}

//SetSinkOpener enables recording, the opener is called once the first frame was read
func (s *Session) SetSinkOpener(o SinkOpener) {
	s.openSink = o
}

//SetMonitor publishes the session's state to m after every frame and state change
func (s *Session) SetMonitor(m *Monitor) {
	s.monitor = m
}

//State returns the current lifecycle state
func (s *Session) State() State {
	return s.state
}

//Stats returns a copy of the session statistics
func (s *Session) Stats() SessionStats {
	return s.stats
}

func (s *Session) setState(state State) {
	s.state = state
	s.publish()
}

func (s *Session) publish() {
	if s.monitor != nil {
		s.monitor.publish(s.state, &s.stats, s.pipeline.FocalLength())
	}
}

//Run executes the session. End of stream, ESC and ctx cancellation end it without error.
//Startup failures and pipeline failures are returned. Source and sink are always closed.
func (s *Session) Run(ctx context.Context) error {
	defer s.terminate()

	frame := gocv.NewMat()
	defer frame.Close()

	if !s.source.Read(&frame) || frame.Empty() {
		return fmt.Errorf("Run: %w", ErrEmptySource)
	}

	if s.openSink != nil {
		sink, err := s.openSink(s.source.FPS(), frame.Cols(), frame.Rows())
		if err != nil {
			return fmt.Errorf("Run: Can't open video writer, got '%w'", err)
		}
		s.sink = sink
		s.pipeline.SetSink(sink)
	}

	s.setState(StateRunning)
	log.Printf("Run: Session %s started", s.ID)

	pending := true
	for {
		if pending {
			if _, err := s.pipeline.Process(&frame, &s.stats); err != nil {
				return err
			}
			s.publish()
			s.show(frame)
			pending = false
		}

		step := false
		switch key := s.pollKey(); key {
		case utils.KeyNone:
		case utils.KeyEsc:
			log.Printf("Run: Session %s cancelled by user", s.ID)
			return nil
		case utils.KeyP:
			if s.state == StatePaused {
				s.setState(StateRunning)
			} else {
				s.setState(StatePaused)
			}
		case utils.KeySpace:
			step = s.state == StatePaused
		default:
			if h, ok := s.pipeline.renderer.(KeyHandler); ok {
				h.HandleKey(key)
				if s.state == StatePaused {
					s.pipeline.Redraw()
					s.show(frame)
				}
			}
		}

		select {
		case <-ctx.Done():
			log.Printf("Run: Session %s cancelled, got '%v'", s.ID, ctx.Err())
			return nil
		default:
		}

		if s.state == StateRunning || step {
			if !s.source.Read(&frame) || frame.Empty() {
				log.Printf("Run: Session %s reached end of stream after %d frames", s.ID, s.stats.FramesProcessed)
				return nil
			}
			pending = true
		}
	}
}

func (s *Session) show(frame gocv.Mat) {
	if s.display != nil {
		s.display.Show(frame, s.pipeline.Canvas())
	}
}

func (s *Session) pollKey() int {
	if s.display == nil {
		return utils.KeyNone
	}

	delay := runningPollMs
	if s.state == StatePaused {
		delay = s.cfg.PausedPollMs
	}

	return s.display.PollKey(delay)
}

//terminate releases the source and the sink and writes the timing plot if one was requested
func (s *Session) terminate() {
	if err := s.source.Close(); err != nil {
		log.Printf("Run: Error closing source, got '%v'", err)
	}

	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			log.Printf("Run: Error closing video writer, got '%v'", err)
		}
		s.pipeline.SetSink(nil)
	}

	if timings := s.stats.Timings(); s.cfg.TimingPlotPath != "" && len(timings) > 0 {
		if err := WriteTimingPlot(s.cfg.TimingPlotPath, timings); err != nil {
			log.Printf("Run: Error, got '%v'", err)
		}
	}

	s.setState(StateTerminated)
	log.Printf("Run: Session %s terminated, %d frames processed, %d written", s.ID, s.stats.FramesProcessed, s.stats.FramesWritten)
}
