package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emotion-constellation/constellation-core/internal/simulation"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/models"
)

func TestFindHit(t *testing.T) {
	cfg := config.Default().Interaction
	bodies := []simulation.Body{
		{ID: "joy", X: 100, Y: 100},
		{ID: "fear", X: 120, Y: 100},
	}
	anchors := []simulation.Anchor{
		{ID: "safety", X: 105, Y: 100},
		{ID: "meaning", X: 400, Y: 400},
	}

	tests := []struct {
		name     string
		x, y     float64
		wantKind models.NodeKind
		wantID   string
	}{
		{"emotion wins over closer need", 104, 100, models.NodeKindEmotion, "joy"},
		{"nearest emotion", 113, 100, models.NodeKindEmotion, "fear"},
		{"need when no emotion in range", 400, 430, models.NodeKindNeed, "meaning"},
		{"nothing in range", 700, 700, "", ""},
		{"emotion radius is exclusive", 100, 100 + cfg.HitRadiusEmotion, models.NodeKindNeed, "safety"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := FindHit(tt.x, tt.y, bodies, anchors, cfg)
			assert.Equal(t, tt.wantKind, hit.Kind)
			assert.Equal(t, tt.wantID, hit.ID)
			assert.Equal(t, tt.wantKind != "", hit.Found())
		})
	}
}

func TestFindHit_Empty(t *testing.T) {
	hit := FindHit(0, 0, nil, nil, config.Default().Interaction)
	assert.False(t, hit.Found())
	assert.Equal(t, Hit{}, hit)
}
