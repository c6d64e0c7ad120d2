// Package entry is the one-shot reveal played when the constellation first
// appears: needs fade in one by one, emotions drift in over two waves, then
// the connection threads fade in.
package entry

import (
	"log/slog"
	"math"
	"time"

	"github.com/emotion-constellation/constellation-core/internal/events"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

// Emits lists the events the timeline publishes
var Emits = []events.Name{events.EntryHintShown, events.EntryHintDismissed}

// Timeline is a function of the time elapsed since Init. It never restarts.
// Per-node values are indexed by dataset order, which is stable because
// nodes are never added or removed during a session.
type Timeline struct {
	cfg    config.Entry
	bus    *events.Bus
	logger *slog.Logger

	started  bool
	start    time.Time
	elapsed  time.Duration
	complete bool

	needs      []float64 // linear progress per need
	emotions   []float64 // linear progress per emotion
	connection float64

	cues *CueQueue
}

// New creates a timeline that has not started. bus may be nil.
func New(cfg config.Entry, bus *events.Bus) *Timeline {
	return &Timeline{
		cfg:    cfg,
		bus:    bus,
		logger: logger.Component("entry"),
		cues:   NewCueQueue(),
	}
}

// SetLogger sets the timeline's logger
func (t *Timeline) SetLogger(l *slog.Logger) {
	t.logger = l
}

// Init starts the reveal at start. Later calls are ignored.
func (t *Timeline) Init(start time.Time, needCount, emotionCount int) {
	if t.started {
		t.logger.Warn("entry timeline already started; ignoring init")
		return
	}
	t.started = true
	t.start = start
	t.needs = make([]float64, max(needCount, 0))
	t.emotions = make([]float64, max(emotionCount, 0))

	if t.cfg.HintEnabled {
		t.cues.Schedule(&Cue{Name: events.EntryHintShown, At: t.cfg.HintDelay.Duration})
		t.cues.Schedule(&Cue{
			Name:     events.EntryHintDismissed,
			At:       t.cfg.HintDelay.Duration + t.cfg.HintDuration.Duration,
			Priority: 1,
		})
	}

	t.logger.Debug("entry timeline started",
		"needs", needCount,
		"emotions", emotionCount,
		"total", t.cfg.TotalDuration())
}

// Tick recomputes every phase for now and fires due cues
func (t *Timeline) Tick(now time.Time) {
	if !t.started {
		return
	}
	t.elapsed = now.Sub(t.start)
	elapsedMs := utils.DurationToMs(t.elapsed)

	if !t.complete {
		for i := range t.needs {
			begin := float64(i) * utils.DurationToMs(t.cfg.NeedsStagger.Duration)
			t.needs[i] = phase(elapsedMs-begin, utils.DurationToMs(t.cfg.NeedsFadeIn.Duration))
		}

		half := int(math.Ceil(float64(len(t.emotions)) / 2))
		for i := range t.emotions {
			delay := t.cfg.EmotionDelay.Duration
			duration := t.cfg.EmotionWave1Duration.Duration
			if i >= half {
				delay += t.cfg.EmotionWave2Delay.Duration
				duration = t.cfg.EmotionWave2Duration.Duration
			}
			t.emotions[i] = phase(elapsedMs-utils.DurationToMs(delay), utils.DurationToMs(duration))
		}

		t.connection = phase(
			elapsedMs-utils.DurationToMs(t.cfg.ConnectionDelay.Duration),
			utils.DurationToMs(t.cfg.ConnectionFade.Duration))

		if t.elapsed >= t.cfg.TotalDuration() {
			t.complete = true
			t.logger.Debug("entry timeline complete", "elapsed", t.elapsed)
		}
	}

	for _, cue := range t.cues.Due(t.elapsed) {
		t.logger.Debug("entry cue", "cue", cue.Name, "elapsed", t.elapsed)
		if t.bus != nil {
			t.bus.Publish(cue.Name, events.HintPayload{Elapsed: t.elapsed})
		}
	}
}

// phase is the linear progress of a phase that has run for elapsed ms
func phase(elapsed, duration float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	if duration <= 0 {
		return 1
	}
	return math.Min(1, elapsed/duration)
}

// NeedOpacity returns the reveal opacity of need i
func (t *Timeline) NeedOpacity(i int) float64 {
	if t.complete {
		return 1
	}
	if i < 0 || i >= len(t.needs) {
		return 0
	}
	return utils.EaseCubicOut(t.needs[i])
}

// EmotionOpacityAt returns the reveal opacity of emotion i
func (t *Timeline) EmotionOpacityAt(i int) float64 {
	if t.complete {
		return 1
	}
	if i < 0 || i >= len(t.emotions) {
		return 0
	}
	return utils.EaseCubicOut(t.emotions[i])
}

// EmotionDriftScaleAt runs from 1 (fully displaced) to 0 (settled)
func (t *Timeline) EmotionDriftScaleAt(i int) float64 {
	if t.complete {
		return 0
	}
	if i < 0 || i >= len(t.emotions) {
		return 0
	}
	return 1 - utils.EaseCubicOut(t.emotions[i])
}

// ConnectionOpacity returns the reveal opacity of every thread
func (t *Timeline) ConnectionOpacity() float64 {
	if t.complete {
		return 1
	}
	return utils.EaseCubicOut(t.connection)
}

// Started reports whether Init has been called
func (t *Timeline) Started() bool { return t.started }

// Complete reports whether the reveal has finished. It never reverts.
func (t *Timeline) Complete() bool { return t.complete }

// Active reports whether per-node reveal values still differ from revealed
func (t *Timeline) Active() bool { return t.started && !t.complete }

// NeedsTick reports whether the pipeline should keep ticking the timeline
func (t *Timeline) NeedsTick() bool {
	return t.started && (!t.complete || !t.cues.IsEmpty())
}

// Elapsed returns the elapsed time at the last tick
func (t *Timeline) Elapsed() time.Duration { return t.elapsed }
