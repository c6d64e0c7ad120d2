package frame

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/models"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

func newScheduler(t *testing.T, frameCfg config.Frame) (*Scheduler, *utils.ManualClock) {
	t.Helper()
	clock := utils.NewManualClock(t0)
	p := NewPipeline(testGraph(), testConfig(), nil)
	return NewScheduler(p, frameCfg, clock), clock
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s, _ := newScheduler(t, config.Default().Frame)

	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Running())
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())
}

func TestScheduler_LoopProducesFrames(t *testing.T) {
	cfg := config.Default().Frame
	cfg.FPS = 200
	s, _ := newScheduler(t, cfg)
	assert.Nil(t, s.LastFrame())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		f := s.LastFrame()
		return f != nil && f.Seq >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_ContextCancelStopsLoop(t *testing.T) {
	cfg := config.Default().Frame
	cfg.FPS = 200
	s, _ := newScheduler(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.Running() }, time.Second, 5*time.Millisecond)
	s.Stop()

	require.NoError(t, s.Start(context.Background()), "a stopped scheduler can start again")
	s.Stop()
}

func TestScheduler_CommandsApplyAtFrameBoundary(t *testing.T) {
	s, clock := newScheduler(t, config.Default().Frame)

	applied := false
	require.True(t, s.Enqueue(func(p *Pipeline) {
		p.Selection().SelectEmotion("joy")
		applied = true
	}))
	assert.False(t, applied, "commands wait for the next frame")

	clock.Advance(16 * time.Millisecond)
	f := s.Step()
	assert.True(t, applied)
	assert.Equal(t, models.ModeEmotion, f.Selection.Mode)
	assert.Greater(t, f.Selection.Progress, 0.0)
	assert.Same(t, f, s.LastFrame())
}

func TestScheduler_EnqueueDropsWhenFull(t *testing.T) {
	cfg := config.Default().Frame
	cfg.InboxSize = 2
	s, _ := newScheduler(t, cfg)

	noop := func(*Pipeline) {}
	assert.True(t, s.Enqueue(noop))
	assert.True(t, s.Enqueue(noop))
	assert.False(t, s.Enqueue(noop))

	s.Step()
	assert.True(t, s.Enqueue(noop))
}

func TestScheduler_ResizeWhileRunning(t *testing.T) {
	cfg := config.Default().Frame
	cfg.FPS = 200
	s, clock := newScheduler(t, cfg)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.True(t, s.Enqueue(func(p *Pipeline) { p.Resize(500, 400) }))
	assert.Eventually(t, func() bool {
		clock.Advance(5 * time.Millisecond)
		f := s.LastFrame()
		return f != nil && f.Width == 500 && f.Height == 400
	}, 2*time.Second, 5*time.Millisecond)
}
