package entry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotion-constellation/constellation-core/internal/events"
	"github.com/emotion-constellation/constellation-core/pkg/config"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTimeline(needs, emotions int) (*Timeline, config.Entry) {
	cfg := config.Default().Entry
	tl := New(cfg, nil)
	tl.Init(t0, needs, emotions)
	return tl, cfg
}

func TestTimeline_ZeroAtStart(t *testing.T) {
	tl, _ := newTimeline(6, 9)

	check := func() {
		for i := 0; i < 6; i++ {
			assert.Zero(t, tl.NeedOpacity(i))
		}
		for i := 0; i < 9; i++ {
			assert.Zero(t, tl.EmotionOpacityAt(i))
			assert.Equal(t, 1.0, tl.EmotionDriftScaleAt(i))
		}
		assert.Zero(t, tl.ConnectionOpacity())
	}

	check()
	tl.Tick(t0)
	check()
	assert.True(t, tl.Active())
}

func TestTimeline_NeedStagger(t *testing.T) {
	tl, cfg := newTimeline(6, 0)

	for i := 0; i < 6; i++ {
		done := time.Duration(i)*cfg.NeedsStagger.Duration + cfg.NeedsFadeIn.Duration
		tl.Tick(t0.Add(done))
		assert.Equal(t, 1.0, tl.NeedOpacity(i), "need %d at %s", i, done)
		if i+1 < 6 {
			assert.Less(t, tl.NeedOpacity(i+1), 1.0, "need %d should still be fading", i+1)
		}
	}

	// strictly after a need's own start it is partially visible
	tl2, _ := newTimeline(6, 0)
	tl2.Tick(t0.Add(2*cfg.NeedsStagger.Duration + cfg.NeedsFadeIn.Duration/2))
	assert.Greater(t, tl2.NeedOpacity(0), tl2.NeedOpacity(2))
	assert.Greater(t, tl2.NeedOpacity(2), 0.0)
	assert.Less(t, tl2.NeedOpacity(2), 1.0)
	assert.Zero(t, tl2.NeedOpacity(5))
}

func TestTimeline_EmotionWaves(t *testing.T) {
	tl, cfg := newTimeline(0, 5) // waves of 3 and 2

	tl.Tick(t0.Add(cfg.EmotionDelay.Duration + cfg.EmotionWave1Duration.Duration/2))
	for i := 0; i < 3; i++ {
		assert.Greater(t, tl.EmotionOpacityAt(i), 0.0, "wave 1 emotion %d", i)
		assert.Less(t, tl.EmotionDriftScaleAt(i), 1.0)
	}
	if cfg.EmotionWave1Duration.Duration/2 <= cfg.EmotionWave2Delay.Duration {
		for i := 3; i < 5; i++ {
			assert.Zero(t, tl.EmotionOpacityAt(i), "wave 2 emotion %d", i)
			assert.Equal(t, 1.0, tl.EmotionDriftScaleAt(i))
		}
	}

	wave2Done := cfg.EmotionDelay.Duration + cfg.EmotionWave2Delay.Duration + cfg.EmotionWave2Duration.Duration
	tl.Tick(t0.Add(wave2Done))
	for i := 0; i < 5; i++ {
		assert.Equal(t, 1.0, tl.EmotionOpacityAt(i))
		assert.Zero(t, tl.EmotionDriftScaleAt(i))
	}
}

func TestTimeline_DriftIsInverseOfOpacity(t *testing.T) {
	tl, cfg := newTimeline(0, 2)
	tl.Tick(t0.Add(cfg.EmotionDelay.Duration + 300*time.Millisecond))
	assert.InDelta(t, 1, tl.EmotionOpacityAt(0)+tl.EmotionDriftScaleAt(0), 1e-12)
}

func TestTimeline_ConnectionFade(t *testing.T) {
	tl, cfg := newTimeline(1, 1)

	tl.Tick(t0.Add(cfg.ConnectionDelay.Duration))
	assert.Zero(t, tl.ConnectionOpacity())

	tl.Tick(t0.Add(cfg.ConnectionDelay.Duration + cfg.ConnectionFade.Duration/2))
	assert.Greater(t, tl.ConnectionOpacity(), 0.5, "ease-out is past half at the midpoint")
	assert.Less(t, tl.ConnectionOpacity(), 1.0)
}

func TestTimeline_CompleteIsPermanent(t *testing.T) {
	tl, cfg := newTimeline(3, 4)

	tl.Tick(t0.Add(cfg.TotalDuration() - time.Millisecond))
	assert.False(t, tl.Complete())

	tl.Tick(t0.Add(cfg.TotalDuration()))
	require.True(t, tl.Complete())
	assert.False(t, tl.Active())

	for n := 0; n < 3; n++ {
		for i := 0; i < 3; i++ {
			assert.Equal(t, 1.0, tl.NeedOpacity(i))
		}
		for i := 0; i < 4; i++ {
			assert.Equal(t, 1.0, tl.EmotionOpacityAt(i))
			assert.Zero(t, tl.EmotionDriftScaleAt(i))
		}
		assert.Equal(t, 1.0, tl.ConnectionOpacity())
	}

	// a clock that goes backwards never re-enters the active state
	tl.Tick(t0)
	assert.True(t, tl.Complete())
	assert.Equal(t, 1.0, tl.NeedOpacity(0))
}

func TestTimeline_OutOfRange(t *testing.T) {
	tl, _ := newTimeline(2, 2)
	tl.Tick(t0.Add(time.Second))

	assert.Zero(t, tl.NeedOpacity(-1))
	assert.Zero(t, tl.NeedOpacity(2))
	assert.Zero(t, tl.EmotionOpacityAt(7))
	assert.Zero(t, tl.EmotionDriftScaleAt(-3))
}

func TestTimeline_NotStarted(t *testing.T) {
	tl := New(config.Default().Entry, nil)
	tl.Tick(t0.Add(time.Hour))

	assert.False(t, tl.Started())
	assert.False(t, tl.Complete())
	assert.False(t, tl.NeedsTick())
	assert.Zero(t, tl.NeedOpacity(0))
	assert.Zero(t, tl.ConnectionOpacity())
}

func TestTimeline_InitIsOneShot(t *testing.T) {
	tl, cfg := newTimeline(2, 2)
	tl.Tick(t0.Add(cfg.TotalDuration()))
	require.True(t, tl.Complete())

	tl.Init(t0.Add(time.Hour), 5, 5)
	tl.Tick(t0.Add(time.Hour))
	assert.True(t, tl.Complete())
	assert.Equal(t, 1.0, tl.NeedOpacity(4), "completed timeline reports revealed values")
}

func TestTimeline_HintCues(t *testing.T) {
	cfg := config.Default().Entry
	bus := events.NewBus()
	var got []events.Name
	bus.Subscribe(func(e events.Event) {
		got = append(got, e.Name)
	}, Emits...)

	tl := New(cfg, bus)
	tl.Init(t0, 1, 1)

	tl.Tick(t0.Add(cfg.HintDelay.Duration - time.Millisecond))
	assert.Empty(t, got)

	tl.Tick(t0.Add(cfg.HintDelay.Duration))
	assert.Equal(t, []events.Name{events.EntryHintShown}, got)

	tl.Tick(t0.Add(cfg.TotalDuration() + time.Millisecond))
	require.True(t, tl.Complete())
	assert.True(t, tl.NeedsTick(), "dismissal is still pending")

	tl.Tick(t0.Add(cfg.HintDelay.Duration + cfg.HintDuration.Duration))
	assert.Equal(t, []events.Name{events.EntryHintShown, events.EntryHintDismissed}, got)
	assert.False(t, tl.NeedsTick())

	tl.Tick(t0.Add(time.Hour))
	assert.Len(t, got, 2, "hint fires once")
}

func TestTimeline_HintsFireTogetherAfterStall(t *testing.T) {
	cfg := config.Default().Entry
	bus := events.NewBus()
	var got []events.Name
	bus.Subscribe(func(e events.Event) { got = append(got, e.Name) }, Emits...)

	tl := New(cfg, bus)
	tl.Init(t0, 0, 0)
	tl.Tick(t0.Add(time.Minute))

	assert.Equal(t, []events.Name{events.EntryHintShown, events.EntryHintDismissed}, got)
}

func TestTimeline_HintDisabled(t *testing.T) {
	cfg := config.Default().Entry
	cfg.HintEnabled = false
	tl := New(cfg, nil)
	tl.Init(t0, 1, 1)
	tl.Tick(t0.Add(cfg.TotalDuration()))

	assert.False(t, tl.NeedsTick())
}
