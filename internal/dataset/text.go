package dataset

import (
	"github.com/emotion-constellation/constellation-core/internal/events"
	"github.com/emotion-constellation/constellation-core/internal/frame"
	"github.com/emotion-constellation/constellation-core/pkg/models"
)

// ApplyText copies labels, descriptions and inquiries from src into dst by
// ID. Nodes are never added, removed or reordered, so positions, indices and
// the simulation are untouched. It returns the number of nodes whose text
// changed.
func ApplyText(dst, src *models.Constellation) int {
	updated := 0

	for _, n := range dst.Needs {
		from, ok := src.Need(n.ID)
		if !ok {
			continue
		}
		if n.Label != from.Label || n.Description != from.Description {
			n.Label = from.Label
			n.Description = from.Description
			updated++
		}
	}

	for _, e := range dst.Emotions {
		from, ok := src.Emotion(e.ID)
		if !ok {
			continue
		}
		changed := e.Label != from.Label
		e.Label = from.Label
		for i := range e.Links {
			for _, fl := range from.Links {
				if fl.NeedID == e.Links[i].NeedID && fl.Inquiry != e.Links[i].Inquiry {
					e.Links[i].Inquiry = fl.Inquiry
					changed = true
				}
			}
		}
		if changed {
			updated++
		}
	}

	if src.Meta.Locale != "" {
		dst.Meta.Locale = src.Meta.Locale
	}
	if src.Meta.Title != "" {
		dst.Meta.Title = src.Meta.Title
	}
	return updated
}

// SwapCommand returns a frame command that applies ds's text to the running
// graph and announces the locale change.
func SwapCommand(ds *Dataset) frame.Command {
	return func(p *frame.Pipeline) {
		updated := ApplyText(p.Graph(), ds.Graph)
		p.Bus().Publish(events.LocaleChanged, events.LocalePayload{
			Locale:  ds.Locale,
			Updated: updated,
		})
	}
}
