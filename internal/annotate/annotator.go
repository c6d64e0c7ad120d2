// Package annotate lays out the text overlay of the constellation: need and
// emotion labels, their selection classes, and the floating inquiries shown
// along the threads of a selected emotion.
package annotate

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/emotion-constellation/constellation-core/internal/frame"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/models"
)

// Label classes mirror the selection booleans of the frame
const (
	ClassSelected    = "selected"
	ClassHighlighted = "highlighted"
	ClassDimmed      = "dimmed"
)

// Label is the placed text of one node
type Label struct {
	ID      string  `json:"id"`
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Opacity float64 `json:"opacity"`
	Class   string  `json:"class,omitempty"`
}

// Inquiry is a reflective question floating beside a thread
type Inquiry struct {
	EmotionID string     `json:"emotionId"`
	NeedID    string     `json:"needId"`
	Text      string     `json:"text"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Color     models.RGB `json:"color"`
	Leader    bool       `json:"leader,omitempty"` // draw a line back to the emotion
}

// Description is the floating text of a selected need
type Description struct {
	NeedID string     `json:"needId"`
	Text   string     `json:"text"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Color  models.RGB `json:"color"`
}

// Annotations is the overlay of one frame
type Annotations struct {
	Seq         uint64       `json:"seq"`
	Needs       []Label      `json:"needs"`
	Emotions    []Label      `json:"emotions"`
	Inquiries   []Inquiry    `json:"inquiries,omitempty"`
	Description *Description `json:"description,omitempty"`
}

// Sink receives every computed overlay
type Sink func(a *Annotations)

// Annotator is a frame.AuxConsumer. It reads node text from the graph, so
// it must run on the frame goroutine like every other graph reader.
type Annotator struct {
	graph  *models.Constellation
	logger *slog.Logger

	mu    sync.RWMutex
	sinks []Sink

	latest atomic.Pointer[Annotations]
}

var _ frame.AuxConsumer = (*Annotator)(nil)

// NewAnnotator creates an annotator for graph
func NewAnnotator(graph *models.Constellation) *Annotator {
	return &Annotator{graph: graph, logger: logger.Component("annotate")}
}

// SetLogger sets the annotator's logger
func (a *Annotator) SetLogger(l *slog.Logger) {
	a.logger = l
}

// AddSink registers a receiver for computed overlays
func (a *Annotator) AddSink(s Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinks = append(a.sinks, s)
}

// Latest returns the last computed overlay, nil before the first
func (a *Annotator) Latest() *Annotations {
	return a.latest.Load()
}

// UpdateAux computes the overlay for f and hands it to the sinks
func (a *Annotator) UpdateAux(f *frame.Frame) {
	out := a.Compute(f)
	a.latest.Store(out)

	a.mu.RLock()
	sinks := a.sinks
	a.mu.RUnlock()
	for _, s := range sinks {
		s(out)
	}
}

// Compute lays out the overlay of f
func (a *Annotator) Compute(f *frame.Frame) *Annotations {
	out := &Annotations{
		Seq:      f.Seq,
		Needs:    make([]Label, 0, len(f.Needs)),
		Emotions: make([]Label, 0, len(f.Emotions)),
	}

	needPos := make([][2]float64, 0, len(f.Needs))
	for _, nv := range f.Needs {
		n, ok := a.graph.Need(nv.ID)
		if !ok {
			continue
		}
		class := ""
		switch {
		case nv.Selected:
			class = ClassSelected
		case nv.Dimmed:
			class = ClassDimmed
		}
		out.Needs = append(out.Needs, Label{
			ID: nv.ID, Text: n.Label, X: nv.X, Y: nv.Y, Opacity: nv.Opacity, Class: class,
		})
		needPos = append(needPos, [2]float64{nv.X, nv.Y})
	}

	for _, ev := range f.Emotions {
		e, ok := a.graph.Emotion(ev.ID)
		if !ok {
			continue
		}
		class := ""
		switch {
		case ev.Highlighted:
			class = ClassHighlighted
		case ev.Dimmed:
			class = ClassDimmed
		}
		x, y := pushLabel(ev.X, ev.Y, needPos)
		out.Emotions = append(out.Emotions, Label{
			ID: ev.ID, Text: e.Label, X: x, Y: y, Opacity: ev.Opacity, Class: class,
		})
	}

	obstacles := labelObstacles(out)
	switch f.Selection.Mode {
	case models.ModeEmotion:
		out.Inquiries = a.inquiries(f, obstacles)
	case models.ModeNeed:
		out.Description = a.description(f, obstacles)
	}
	return out
}

// labelObstacles are the boxes of every label that is not dimmed
func labelObstacles(a *Annotations) []Rect {
	var rects []Rect
	for _, l := range a.Needs {
		if l.Class == ClassDimmed || l.Text == "" {
			continue
		}
		hw, hh := textExtents(l.Text, 0)
		rects = append(rects, centeredBox(l.X, l.Y, hw, hh))
	}
	for _, l := range a.Emotions {
		if l.Class == ClassDimmed || l.Text == "" {
			continue
		}
		hw, hh := textExtents(l.Text, 0)
		rects = append(rects, centeredBox(l.X, l.Y-labelTextOffset, hw, hh))
	}
	return rects
}

func (a *Annotator) inquiries(f *frame.Frame, obstacles []Rect) []Inquiry {
	emotion, ok := a.graph.Emotion(f.Selection.SelectedID)
	if !ok {
		return nil
	}
	ev, ok := f.Emotion(emotion.ID)
	if !ok {
		return nil
	}

	type pending struct {
		link models.Link
		need frame.NeedVisual
	}
	var items []pending
	for _, l := range a.graph.ResolvedLinks(emotion) {
		if l.Inquiry == "" {
			continue
		}
		if nv, ok := f.Need(l.NeedID); ok {
			items = append(items, pending{link: l, need: nv})
		}
	}

	out := make([]Inquiry, 0, len(items))
	placed := make([]Rect, 0, len(items))
	for i, it := range items {
		x, y := inquiryPosition(ev.X, ev.Y, it.need.X, it.need.Y, i, len(items))
		x, y = clampToViewport(x, y, f.Width, f.Height)

		hw, hh := textExtents(it.link.Inquiry, inquiryPad)
		all := append(append([]Rect{}, obstacles...), placed...)
		x, y, moved := resolveOverlap(x, y, hw, hh, ev.X, ev.Y, it.need.X, it.need.Y, i, all, f.Width, f.Height)
		placed = append(placed, centeredBox(x, y, hw, hh))

		color := it.need.Color
		if n, ok := a.graph.Need(it.link.NeedID); ok {
			color = n.ThreadColor()
		}
		out = append(out, Inquiry{
			EmotionID: emotion.ID,
			NeedID:    it.link.NeedID,
			Text:      it.link.Inquiry,
			X:         x,
			Y:         y,
			Color:     color,
			Leader:    len(items) > 1 || moved,
		})
	}
	return out
}

// description sits below the need label, or above it when the space below
// is taken or runs into the HUD.
func (a *Annotator) description(f *frame.Frame, obstacles []Rect) *Description {
	need, ok := a.graph.Need(f.Selection.SelectedID)
	if !ok || need.Description == "" {
		return nil
	}
	nv, ok := f.Need(need.ID)
	if !ok {
		return nil
	}

	hw, hh := textExtents(need.Description, descriptionPad)
	maxY := f.Height - viewportBottomPad
	free := func(y float64) bool {
		return !overlapsAny(centeredBox(nv.X, y, hw, hh), obstacles)
	}

	y, placed := nv.Y+descriptionGap, false
	for attempt := 0; attempt < 3 && y+hh <= maxY; attempt++ {
		if free(y) {
			placed = true
			break
		}
		y += descriptionStep
	}
	if !placed {
		y = nv.Y - descriptionGap
		for attempt := 0; attempt < 3 && y-hh >= viewportPad; attempt++ {
			if free(y) {
				placed = true
				break
			}
			y -= descriptionStep
		}
	}
	if !placed {
		y = nv.Y + descriptionGap
	}

	x, y := clampToViewport(nv.X, y, f.Width, f.Height)
	return &Description{NeedID: need.ID, Text: need.Description, X: x, Y: y, Color: need.ThreadColor()}
}
