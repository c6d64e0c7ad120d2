package input

import (
	"log/slog"

	"github.com/emotion-constellation/constellation-core/internal/events"
	"github.com/emotion-constellation/constellation-core/internal/frame"
	"github.com/emotion-constellation/constellation-core/internal/selection"
	"github.com/emotion-constellation/constellation-core/internal/simulation"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/models"
)

// Consumes lists the events the router subscribes to
var Consumes = []events.Name{
	events.InputEmotionClick,
	events.InputNeedClick,
	events.InputDeselect,
	events.InputTap,
	events.InputHover,
	events.InputHoverEnd,
	events.SelectionChanged,
}

// Router maps input events onto the selection machine and keeps the
// ambient rotation paused while something is selected. Its handlers run on
// the goroutine that publishes, so input events must be published from the
// frame goroutine (see PublishCommand).
type Router struct {
	sel    *selection.Machine
	sim    *simulation.Simulation
	bus    *events.Bus
	cfg    config.Interaction
	logger *slog.Logger

	subs []string
}

// NewRouter creates a detached router for the pipeline's subsystems
func NewRouter(p *frame.Pipeline, cfg config.Interaction) *Router {
	return &Router{
		sel:    p.Selection(),
		sim:    p.Simulation(),
		bus:    p.Bus(),
		cfg:    cfg,
		logger: logger.Component("input"),
	}
}

// SetLogger sets the router's logger
func (r *Router) SetLogger(l *slog.Logger) {
	r.logger = l
}

// Attach subscribes the router to the bus. Attaching twice is a no-op.
func (r *Router) Attach() {
	if len(r.subs) > 0 {
		return
	}
	r.subs = []string{
		r.bus.Subscribe(r.onNodeClick, events.InputEmotionClick, events.InputNeedClick),
		r.bus.Subscribe(func(events.Event) { r.sel.Deselect() }, events.InputDeselect),
		r.bus.Subscribe(r.onTap, events.InputTap),
		r.bus.Subscribe(r.onHover, events.InputHover),
		r.bus.Subscribe(func(events.Event) { r.sel.ClearHover() }, events.InputHoverEnd),
		r.bus.Subscribe(r.onSelectionChanged, events.SelectionChanged),
	}
}

// Detach removes every subscription
func (r *Router) Detach() {
	for _, id := range r.subs {
		r.bus.Unsubscribe(id)
	}
	r.subs = nil
}

// HitTest finds the node under a point at the current simulation positions
func (r *Router) HitTest(x, y float64) Hit {
	return FindHit(x, y, r.sim.Bodies(), r.sim.Anchors(), r.cfg)
}

func (r *Router) onNodeClick(e events.Event) {
	node, ok := e.Node()
	if !ok {
		r.logger.Warn("click without node payload", "event", e.Name)
		return
	}
	if e.Name == events.InputEmotionClick {
		r.sel.SelectEmotion(node.ID)
	} else {
		r.sel.SelectNeed(node.ID)
	}
}

func (r *Router) onTap(e events.Event) {
	pt, ok := e.Point()
	if !ok {
		return
	}
	hit := r.HitTest(pt.X, pt.Y)
	switch hit.Kind {
	case models.NodeKindEmotion:
		r.sel.SelectEmotion(hit.ID)
	case models.NodeKindNeed:
		r.sel.SelectNeed(hit.ID)
	default:
		if r.sel.Mode() != models.ModeIdle {
			r.sel.Deselect()
		}
	}
}

// onHover tracks emotions only; needs have no hover visual
func (r *Router) onHover(e events.Event) {
	pt, ok := e.Point()
	if !ok {
		return
	}
	if hit := r.HitTest(pt.X, pt.Y); hit.Kind == models.NodeKindEmotion {
		r.sel.SetHover(hit.ID)
		return
	}
	r.sel.ClearHover()
}

func (r *Router) onSelectionChanged(e events.Event) {
	sp, ok := e.Selection()
	if !ok {
		return
	}
	if sp.Mode == models.ModeIdle {
		r.sim.ResumeRotation()
	} else {
		r.sim.PauseRotation()
	}
}

// PublishCommand returns a frame command that publishes an input event, so
// the router's handlers run on the frame goroutine.
func PublishCommand(name events.Name, payload any) frame.Command {
	return func(p *frame.Pipeline) {
		p.Bus().Publish(name, payload)
	}
}
