// Package frame drives the simulation, selection and entry subsystems in a
// fixed order each frame and combines their outputs into a Frame for the
// renderer and the auxiliary consumers.
package frame

import (
	"time"

	"github.com/emotion-constellation/constellation-core/internal/selection"
	"github.com/emotion-constellation/constellation-core/pkg/models"
)

// NeedVisual is the derived state of one need for one frame
type NeedVisual struct {
	ID        string     `json:"id"`
	Index     int        `json:"index"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Color     models.RGB `json:"color"`
	Intensity float64    `json:"intensity"`
	Opacity   float64    `json:"opacity"` // entry reveal
	Selected  bool       `json:"selected,omitempty"`
	Dimmed    bool       `json:"dimmed,omitempty"`
}

// EmotionVisual is the derived state of one emotion for one frame
type EmotionVisual struct {
	ID          string     `json:"id"`
	Index       int        `json:"index"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Color       models.RGB `json:"color"`
	Size        float64    `json:"size"`
	Opacity     float64    `json:"opacity"`
	Drift       float64    `json:"drift"`
	Bridge      bool       `json:"bridge,omitempty"`
	Highlighted bool       `json:"highlighted,omitempty"`
	Dimmed      bool       `json:"dimmed,omitempty"`
}

// ConnectionVisual is one thread with its final opacity
type ConnectionVisual struct {
	EmotionID string     `json:"emotionId"`
	NeedID    string     `json:"needId"`
	StartX    float64    `json:"startX"`
	StartY    float64    `json:"startY"`
	EndX      float64    `json:"endX"`
	EndY      float64    `json:"endY"`
	Color     models.RGB `json:"color"`
	Opacity   float64    `json:"opacity"`
}

// Frame is a fresh, immutable snapshot of every derived visual. Base nodes
// are never written; consumers must not modify a Frame either.
type Frame struct {
	Seq         uint64             `json:"seq"`
	At          time.Time          `json:"at"`
	Elapsed     time.Duration      `json:"elapsed"`
	DT          time.Duration      `json:"dt"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	Alpha       float64            `json:"alpha"`
	EntryActive bool               `json:"entryActive"`
	Selection   selection.State    `json:"selection"`
	Needs       []NeedVisual       `json:"needs"`
	Emotions    []EmotionVisual    `json:"emotions"`
	Connections []ConnectionVisual `json:"connections"`
}

// Need returns the visual of a need by ID
func (f *Frame) Need(id string) (NeedVisual, bool) {
	for _, n := range f.Needs {
		if n.ID == id {
			return n, true
		}
	}
	return NeedVisual{}, false
}

// Emotion returns the visual of an emotion by ID
func (f *Frame) Emotion(id string) (EmotionVisual, bool) {
	for _, e := range f.Emotions {
		if e.ID == id {
			return e, true
		}
	}
	return EmotionVisual{}, false
}

// Renderer draws frames. Render is called on the frame goroutine and must
// not block; an error is logged and counted, never fatal to the loop.
type Renderer interface {
	Name() string
	Render(f *Frame) error
}

// AuxConsumer is updated at a reduced cadence (labels, annotations, UI
// anchors following the selection).
type AuxConsumer interface {
	UpdateAux(f *Frame)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(f *Frame) error

// Name implements Renderer
func (RendererFunc) Name() string { return "func" }

// Render implements Renderer
func (fn RendererFunc) Render(f *Frame) error { return fn(f) }

// AuxFunc adapts a function to AuxConsumer
type AuxFunc func(f *Frame)

// UpdateAux implements AuxConsumer
func (fn AuxFunc) UpdateAux(f *Frame) { fn(f) }
