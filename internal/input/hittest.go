// Package input turns pointer and UI events from the bus into selection
// state machine operations.
package input

import (
	"math"

	"github.com/emotion-constellation/constellation-core/internal/simulation"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/models"
)

// Hit is the node under a point. Kind is empty when nothing was hit.
type Hit struct {
	Kind     models.NodeKind
	ID       string
	Distance float64
}

// Found reports whether a node was hit
func (h Hit) Found() bool { return h.Kind != "" }

// FindHit returns the nearest emotion within the emotion hit radius, or
// failing that the nearest need within the need hit radius. Emotions are
// drawn on top, so they win even when a need is closer.
func FindHit(x, y float64, bodies []simulation.Body, anchors []simulation.Anchor, cfg config.Interaction) Hit {
	best := Hit{Distance: cfg.HitRadiusEmotion}
	for _, b := range bodies {
		if d := math.Hypot(x-b.X, y-b.Y); d < best.Distance {
			best = Hit{Kind: models.NodeKindEmotion, ID: b.ID, Distance: d}
		}
	}
	if best.Found() {
		return best
	}

	best = Hit{Distance: cfg.HitRadiusNeed}
	for _, a := range anchors {
		if d := math.Hypot(x-a.X, y-a.Y); d < best.Distance {
			best = Hit{Kind: models.NodeKindNeed, ID: a.ID, Distance: d}
		}
	}
	if best.Found() {
		return best
	}
	return Hit{}
}
