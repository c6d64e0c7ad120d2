package frame

import (
	"log/slog"
	"math"
	"time"

	"github.com/emotion-constellation/constellation-core/internal/entry"
	"github.com/emotion-constellation/constellation-core/internal/events"
	"github.com/emotion-constellation/constellation-core/internal/metrics"
	"github.com/emotion-constellation/constellation-core/internal/selection"
	"github.com/emotion-constellation/constellation-core/internal/simulation"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/models"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

// Emits lists the events the pipeline publishes itself
var Emits = []events.Name{events.LayoutResized}

// Pipeline owns the three subsystems and computes one Frame per call. It is
// not safe for concurrent use; the Scheduler serializes access.
type Pipeline struct {
	graph *models.Constellation
	cfg   *config.Config
	bus   *events.Bus

	sim   *simulation.Simulation
	sel   *selection.Machine
	entry *entry.Timeline

	renderers []Renderer
	aux       []AuxConsumer
	metrics   *metrics.Collector
	logger    *slog.Logger

	seq   uint64
	start time.Time
	last  time.Time
}

// NewPipeline builds the simulation, selection machine and entry timeline
// for graph. graph must already be indexed.
func NewPipeline(graph *models.Constellation, cfg *config.Config, bus *events.Bus) *Pipeline {
	if bus == nil {
		bus = events.NewBus()
	}
	return &Pipeline{
		graph:  graph,
		cfg:    cfg,
		bus:    bus,
		sim:    simulation.New(graph, cfg),
		sel:    selection.New(graph, cfg.Interaction, bus),
		entry:  entry.New(cfg.Entry, bus),
		logger: logger.Component("frame"),
	}
}

// SetLogger sets the logger of the pipeline and its subsystems
func (p *Pipeline) SetLogger(l *slog.Logger) {
	p.logger = l
	p.sim.SetLogger(l)
	p.sel.SetLogger(l)
	p.entry.SetLogger(l)
}

// SetMetrics attaches a metrics collector and counts selection changes
func (p *Pipeline) SetMetrics(m *metrics.Collector) {
	p.metrics = m
	p.bus.Subscribe(func(e events.Event) {
		if sp, ok := e.Selection(); ok {
			m.SelectionChanged(string(sp.Mode))
		}
	}, events.SelectionChanged)
}

// AddRenderer registers a renderer, called every frame in registration order
func (p *Pipeline) AddRenderer(r Renderer) {
	p.renderers = append(p.renderers, r)
}

// AddAux registers an auxiliary consumer
func (p *Pipeline) AddAux(a AuxConsumer) {
	p.aux = append(p.aux, a)
}

// Begin captures the start timestamp and starts the entry timeline
func (p *Pipeline) Begin(now time.Time) {
	if p.start.IsZero() {
		p.start = now
	}
	p.entry.Init(now, len(p.graph.Needs), len(p.graph.Emotions))
}

// Frame runs one frame at now.
func (p *Pipeline) Frame(now time.Time) *Frame {
	began := time.Now()

	dt := p.cfg.Physics.TickInterval.Duration
	if !p.last.IsZero() {
		dt = now.Sub(p.last)
		if dt < 0 {
			dt = 0
		}
	}
	p.last = now

	// 1-3: advance the subsystems
	p.sim.Tick()
	p.sel.Tick(dt)
	if p.entry.NeedsTick() {
		p.entry.Tick(now)
	}
	entryActive := p.entry.Active()

	f := &Frame{
		Seq:         p.seq,
		At:          now,
		Elapsed:     now.Sub(p.start),
		DT:          dt,
		Alpha:       p.sim.Alpha(),
		EntryActive: entryActive,
		Selection:   p.sel.State(),
	}
	f.Width, f.Height = p.sim.Size()

	// 4-6: combine
	f.Needs = p.needVisuals(entryActive)
	f.Emotions = p.emotionVisuals(entryActive)
	f.Connections = p.connectionVisuals(entryActive)

	// 7: render
	for _, r := range p.renderers {
		if err := r.Render(f); err != nil {
			p.logger.Warn("renderer failed", "renderer", r.Name(), "seq", f.Seq, "error", err)
			p.metrics.RendererError(r.Name())
		}
	}

	// 8: auxiliary consumers at a reduced cadence
	if len(p.aux) > 0 && p.seq%uint64(max(p.cfg.Frame.AuxEvery, 1)) == 0 {
		for _, a := range p.aux {
			a.UpdateAux(f)
		}
		p.metrics.AuxUpdated()
	}

	p.seq++
	p.metrics.ObserveFrame(time.Since(began), f.Alpha, f.Selection.Eased)
	return f
}

func (p *Pipeline) needVisuals(entryActive bool) []NeedVisual {
	anchors := p.sim.Anchors()
	out := make([]NeedVisual, len(p.graph.Needs))
	for i, n := range p.graph.Needs {
		opacity := 1.0
		if entryActive {
			opacity = p.entry.NeedOpacity(i)
		}
		out[i] = NeedVisual{
			ID:        n.ID,
			Index:     i,
			X:         anchors[i].X,
			Y:         anchors[i].Y,
			Color:     n.Color,
			Intensity: p.sel.NeedIntensity(n.ID) * opacity,
			Opacity:   opacity,
			Selected:  p.sel.IsNeedSelected(n.ID),
			Dimmed:    p.sel.IsNeedDimmed(n.ID),
		}
	}
	return out
}

func (p *Pipeline) emotionVisuals(entryActive bool) []EmotionVisual {
	bodies := p.sim.Bodies()
	cx, cy := p.sim.Center()
	out := make([]EmotionVisual, len(p.graph.Emotions))
	for i, e := range p.graph.Emotions {
		v := p.sel.EmotionVisual(e.ID)
		opacity, drift := 1.0, 0.0
		if entryActive {
			opacity = p.entry.EmotionOpacityAt(i)
			drift = p.entry.EmotionDriftScaleAt(i)
		}

		x, y := bodies[i].X, bodies[i].Y
		if drift > 0 {
			// drift in from outside: displace away from the center
			dx, dy := x-cx, y-cy
			if d := math.Hypot(dx, dy); d > 0 {
				x += dx / d * drift * p.cfg.Entry.DriftDistance
				y += dy / d * drift * p.cfg.Entry.DriftDistance
			}
		}

		out[i] = EmotionVisual{
			ID:          e.ID,
			Index:       i,
			X:           x,
			Y:           y,
			Color:       e.DisplayColor.Scale(v.Brightness * opacity),
			Size:        e.DisplaySize * v.SizeScale * (1 - drift*p.cfg.Entry.DriftShrink),
			Opacity:     opacity,
			Drift:       drift,
			Bridge:      e.IsBridge(),
			Highlighted: p.sel.IsEmotionHighlighted(e.ID),
			Dimmed:      p.sel.IsEmotionDimmed(e.ID),
		}
	}
	return out
}

func (p *Pipeline) connectionVisuals(entryActive bool) []ConnectionVisual {
	reveal := 1.0
	if entryActive {
		reveal = p.entry.ConnectionOpacity()
	}
	conns := p.sim.Connections()
	out := make([]ConnectionVisual, len(conns))
	for i, c := range conns {
		out[i] = ConnectionVisual{
			EmotionID: c.EmotionID,
			NeedID:    c.NeedID,
			StartX:    c.StartX,
			StartY:    c.StartY,
			EndX:      c.EndX,
			EndY:      c.EndY,
			Color:     c.Color,
			Opacity:   utils.Clamp01(p.sel.ConnectionOpacity(c.EmotionID, c.NeedID, c.Opacity) * reveal),
		}
	}
	return out
}

// Resize applies a canvas resize and announces it
func (p *Pipeline) Resize(width, height float64) {
	p.sim.Resize(width, height)
	w, h := p.sim.Size()
	p.bus.Publish(events.LayoutResized, events.ResizePayload{Width: w, Height: h})
}

// Graph returns the constellation
func (p *Pipeline) Graph() *models.Constellation { return p.graph }

// Bus returns the event bus
func (p *Pipeline) Bus() *events.Bus { return p.bus }

// Simulation returns the simulation
func (p *Pipeline) Simulation() *simulation.Simulation { return p.sim }

// Selection returns the selection machine
func (p *Pipeline) Selection() *selection.Machine { return p.sel }

// Entry returns the entry timeline
func (p *Pipeline) Entry() *entry.Timeline { return p.entry }

// Seq returns the sequence number of the next frame
func (p *Pipeline) Seq() uint64 { return p.seq }
