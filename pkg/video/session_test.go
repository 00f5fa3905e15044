package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	source   *fakeSource
	parser   *fakeParser
	renderer *fakeRenderer
	display  *fakeDisplay
	session  *Session
}

func newSessionFixture(t *testing.T, frames int, cfg PipelineConfig, display *fakeDisplay) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		source:   newFakeSource(frames, 64, 48),
		parser:   &fakeParser{},
		renderer: &fakeRenderer{},
		display:  display,
	}
	p := newTestPipeline(t, cfg, &fakeEngine{}, f.parser, f.renderer)

	var d Display
	if display != nil {
		d = display
	}
	f.session = NewSession("test", DefaultSessionConfig(), f.source, p, d)
	return f
}

func TestSessionEndToEnd(t *testing.T) {
	f := newSessionFixture(t, 3, DefaultPipelineConfig(), nil)
	f.parser.persons = []int{1, 0, 1}

	require.NoError(t, f.session.Run(context.Background()))

	assert.Equal(t, 3, f.session.Stats().FramesProcessed)
	assert.Equal(t, StateTerminated, f.session.State())
	require.Len(t, f.renderer.plots, 3)
	assert.Len(t, f.renderer.plots[0].edges, 17)
	assert.Empty(t, f.renderer.plots[1].edges)
	assert.Equal(t, 0, f.renderer.plots[1].joints)
	assert.Len(t, f.renderer.plots[2].edges, 17)
	assert.True(t, f.source.closed)
}

func TestSessionOutputCap(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.OutputLimit = 2
	f := newSessionFixture(t, 5, cfg, nil)

	sink := &fakeSink{}
	var opened []float64
	f.session.SetSinkOpener(func(fps float64, width, height int) (Sink, error) {
		opened = append(opened, fps, float64(width), float64(height))
		return sink, nil
	})

	require.NoError(t, f.session.Run(context.Background()))

	assert.Equal(t, 5, f.session.Stats().FramesProcessed)
	assert.Equal(t, 2, sink.writes)
	assert.True(t, sink.closed)
	assert.Equal(t, []float64{25, 64, 48}, opened)
}

func TestSessionStartupFailures(t *testing.T) {
	t.Run("empty source", func(t *testing.T) {
		f := newSessionFixture(t, 0, DefaultPipelineConfig(), nil)
		err := f.session.Run(context.Background())
		assert.ErrorIs(t, err, ErrEmptySource)
		assert.True(t, f.source.closed)
		assert.Equal(t, 0, f.parser.calls)
	})

	t.Run("sink can not be opened", func(t *testing.T) {
		f := newSessionFixture(t, 3, DefaultPipelineConfig(), nil)
		sinkErr := errors.New("disk full")
		f.session.SetSinkOpener(func(float64, int, int) (Sink, error) { return nil, sinkErr })

		err := f.session.Run(context.Background())
		assert.ErrorIs(t, err, sinkErr)
		assert.True(t, f.source.closed)
		assert.Equal(t, 0, f.parser.calls)
	})
}

func TestSessionRuntimeFailure(t *testing.T) {
	source := newFakeSource(3, 64, 48)
	p := newTestPipeline(t, DefaultPipelineConfig(), &fakeEngine{err: errInference}, &fakeParser{}, &fakeRenderer{})
	s := NewSession("test", DefaultSessionConfig(), source, p, nil)

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, errInference)
	assert.Equal(t, StateTerminated, s.State())
	assert.True(t, source.closed)
}

func TestSessionEscape(t *testing.T) {
	display := &fakeDisplay{keys: []int{utils.KeyNone, utils.KeyEsc}}
	f := newSessionFixture(t, 5, DefaultPipelineConfig(), display)

	require.NoError(t, f.session.Run(context.Background()))
	assert.Equal(t, 2, f.session.Stats().FramesProcessed)
	assert.Equal(t, 2, display.shows)
	assert.Equal(t, 2, f.source.reads)
}

func TestSessionContextCancel(t *testing.T) {
	f := newSessionFixture(t, 5, DefaultPipelineConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.session.Run(ctx))
	assert.Equal(t, 1, f.session.Stats().FramesProcessed)
	assert.Equal(t, 1, f.source.reads)
}

func TestSessionContextCancelWhilePaused(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	display := &fakeDisplay{keys: []int{utils.KeyP}}
	display.onPoll = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	f := newSessionFixture(t, 5, DefaultPipelineConfig(), display)

	require.NoError(t, f.session.Run(ctx))

	//the paused loop only polls, so cancellation is seen without reading another frame
	assert.Equal(t, []int{1, 100}, display.polls)
	assert.Equal(t, 1, f.session.Stats().FramesProcessed)
	assert.Equal(t, 1, f.source.reads)
	assert.Equal(t, StateTerminated, f.session.State())
}

func TestSessionPauseAndStep(t *testing.T) {
	display := &fakeDisplay{keys: []int{utils.KeyP, utils.KeySpace, utils.KeyNone, utils.KeyA, utils.KeyP}}
	f := newSessionFixture(t, 4, DefaultPipelineConfig(), display)

	require.NoError(t, f.session.Run(context.Background()))

	//frame 1, pause, step to frame 2, idle, rotate, resume through frames 3 and 4
	assert.Equal(t, 4, f.session.Stats().FramesProcessed)
	assert.Equal(t, []int{utils.KeyA}, f.renderer.keys)
	assert.Len(t, f.renderer.plots, 5, "rotation while paused redraws the last frame")
	assert.Equal(t, 5, display.shows)
	assert.Equal(t, []int{1, 100, 100, 100, 100, 1, 1}, display.polls)
}

func TestSessionSpaceIgnoredWhileRunning(t *testing.T) {
	display := &fakeDisplay{keys: []int{utils.KeySpace, utils.KeySpace}}
	f := newSessionFixture(t, 3, DefaultPipelineConfig(), display)

	require.NoError(t, f.session.Run(context.Background()))
	assert.Equal(t, 3, f.session.Stats().FramesProcessed)
}

func TestSessionMonitor(t *testing.T) {
	f := newSessionFixture(t, 3, DefaultPipelineConfig(), nil)
	m := NewMonitor("abc")
	assert.Equal(t, "init", m.Snapshot().State)
	f.session.SetMonitor(m)

	require.NoError(t, f.session.Run(context.Background()))

	snap := m.Snapshot()
	assert.Equal(t, "abc", snap.SessionID)
	assert.Equal(t, "terminated", snap.State)
	assert.Equal(t, 3, snap.FramesProcessed)
	assert.Equal(t, 1, snap.Persons)
	assert.Equal(t, 0.8*64, snap.FocalLength)
}

func TestSessionWritesTimingPlot(t *testing.T) {
	f := newSessionFixture(t, 3, DefaultPipelineConfig(), nil)
	path := filepath.Join(t.TempDir(), "timing.png")
	f.session.cfg.TimingPlotPath = path

	require.NoError(t, f.session.Run(context.Background()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteTimingPlotNoSamples(t *testing.T) {
	assert.Error(t, WriteTimingPlot(filepath.Join(t.TempDir(), "x.png"), nil))
}
