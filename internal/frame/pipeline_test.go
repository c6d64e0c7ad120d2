package frame

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotion-constellation/constellation-core/internal/events"
	"github.com/emotion-constellation/constellation-core/internal/metrics"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/models"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testGraph() *models.Constellation {
	c := &models.Constellation{
		Needs: []*models.Need{
			{ID: "safety", Color: models.RGB{0.1, 0.23, 0.42}, ColorSecondary: models.RGB{0.2, 0.4, 0.8}},
			{ID: "belonging", Color: models.RGB{0.55, 0.41, 0.08}, ColorSecondary: models.RGB{0.83, 0.66, 0.2}},
			{ID: "meaning", Color: models.RGB{0.29, 0.1, 0.42}},
		},
		Emotions: []*models.Emotion{
			{ID: "joy", Links: []models.Link{{NeedID: "safety", Strength: 0.8}, {NeedID: "belonging", Strength: 0.3}}},
			{ID: "fear", Links: []models.Link{{NeedID: "safety", Strength: 1}}},
			{ID: "empty", Links: []models.Link{{NeedID: "meaning", Strength: 0.7}}},
			{ID: "lost", Links: []models.Link{{NeedID: "ghost", Strength: 1}}},
		},
	}
	c.Index()
	return c
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Seed = 7
	return cfg
}

type recordingRenderer struct {
	frames []*Frame
	err    error
}

func (r *recordingRenderer) Name() string { return "recording" }

func (r *recordingRenderer) Render(f *Frame) error {
	r.frames = append(r.frames, f)
	return r.err
}

func TestPipeline_EntryStart(t *testing.T) {
	p := NewPipeline(testGraph(), testConfig(), nil)
	p.Begin(t0)

	f := p.Frame(t0)

	assert.True(t, f.EntryActive)
	assert.Equal(t, time.Duration(0), f.Elapsed)
	for _, n := range f.Needs {
		assert.Zero(t, n.Opacity, n.ID)
		assert.Zero(t, n.Intensity, n.ID)
	}
	for _, e := range f.Emotions {
		assert.Zero(t, e.Opacity, e.ID)
		assert.Equal(t, models.RGB{}, e.Color, e.ID)
		assert.Equal(t, 1.0, e.Drift, e.ID)
	}
	for _, c := range f.Connections {
		assert.Zero(t, c.Opacity)
	}
}

func TestPipeline_EntryDriftDisplacesOutward(t *testing.T) {
	cfg := testConfig()
	p := NewPipeline(testGraph(), cfg, nil)
	p.Begin(t0)

	f := p.Frame(t0)
	bodies := p.Simulation().Bodies()
	cx, cy := p.Simulation().Center()

	for i, e := range f.Emotions {
		inner := utils.Hypot(cx, cy, bodies[i].X, bodies[i].Y)
		outer := utils.Hypot(cx, cy, e.X, e.Y)
		assert.InDelta(t, inner+cfg.Entry.DriftDistance, outer, 1e-6, e.ID)
		want := testGraph().Emotions[i].DisplaySize * (1 - cfg.Entry.DriftShrink)
		assert.InDelta(t, want, e.Size, 1e-9, e.ID)
	}
}

func TestPipeline_EntryCompleteRevealsEverything(t *testing.T) {
	cfg := testConfig()
	g := testGraph()
	p := NewPipeline(g, cfg, nil)
	p.Begin(t0)

	p.Frame(t0)
	f := p.Frame(t0.Add(cfg.Entry.TotalDuration()))

	assert.False(t, f.EntryActive)
	for _, n := range f.Needs {
		assert.Equal(t, 1.0, n.Opacity)
		assert.Equal(t, 1.0, n.Intensity)
	}
	bodies := p.Simulation().Bodies()
	for i, e := range f.Emotions {
		assert.Equal(t, 1.0, e.Opacity)
		assert.Zero(t, e.Drift)
		assert.Equal(t, g.Emotions[i].DisplayColor, e.Color)
		assert.Equal(t, g.Emotions[i].DisplaySize, e.Size)
		assert.Equal(t, bodies[i].X, e.X)
	}
	require.Len(t, f.Connections, 4)
	for _, c := range f.Connections {
		assert.NotEqual(t, "ghost", c.NeedID)
	}
	assert.InDelta(t, 0.25+0.8*0.25, f.Connections[0].Opacity, 1e-9)
}

func TestPipeline_NotBegunShowsRevealedValues(t *testing.T) {
	p := NewPipeline(testGraph(), testConfig(), nil)
	f := p.Frame(t0)

	assert.False(t, f.EntryActive)
	assert.Equal(t, 1.0, f.Needs[0].Opacity)
}

func TestPipeline_SelectionMultipliers(t *testing.T) {
	cfg := testConfig()
	g := testGraph()
	p := NewPipeline(g, cfg, nil)
	p.Begin(t0)
	now := t0.Add(cfg.Entry.TotalDuration())
	p.Frame(now)

	p.Selection().SelectEmotion("fear")
	for i := 0; i < 60; i++ {
		now = now.Add(16 * time.Millisecond)
		p.Frame(now)
	}
	f := p.Frame(now.Add(16 * time.Millisecond))

	require.Equal(t, 1.0, f.Selection.Eased)
	fear, ok := f.Emotion("fear")
	require.True(t, ok)
	assert.InDelta(t, g.Emotions[1].DisplaySize*cfg.Interaction.SelectedSizeScale, fear.Size, 1e-9)
	assert.True(t, fear.Highlighted)

	empty, _ := f.Emotion("empty")
	assert.True(t, empty.Dimmed)
	assert.InDelta(t, g.Emotions[2].DisplaySize*cfg.Interaction.DimmedSizeScale, empty.Size, 1e-9)

	safety, _ := f.Need("safety")
	assert.InDelta(t, cfg.Interaction.SelectedNeedIntensity, safety.Intensity, 1e-9)
	assert.True(t, safety.Selected)
	meaning, _ := f.Need("meaning")
	assert.True(t, meaning.Dimmed)

	for _, c := range f.Connections {
		if c.EmotionID == "fear" {
			assert.InDelta(t, cfg.Interaction.ActiveOpacity, c.Opacity, 1e-9)
		}
	}
}

func TestPipeline_RendererErrorsAreNotFatal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)
	p := NewPipeline(testGraph(), testConfig(), nil)
	p.SetMetrics(m)

	failing := &recordingRenderer{err: errors.New("gpu lost")}
	ok := &recordingRenderer{}
	p.AddRenderer(failing)
	p.AddRenderer(ok)

	for i := 0; i < 3; i++ {
		p.Frame(t0.Add(time.Duration(i) * 16 * time.Millisecond))
	}
	assert.Len(t, failing.frames, 3)
	assert.Len(t, ok.frames, 3)
	assert.Equal(t, uint64(3), p.Seq())
	assert.EqualValues(t, 3, m.FrameStats().Count)
}

func TestPipeline_AuxCadence(t *testing.T) {
	p := NewPipeline(testGraph(), testConfig(), nil)

	var seqs []uint64
	p.AddAux(AuxFunc(func(f *Frame) { seqs = append(seqs, f.Seq) }))
	for i := 0; i < 7; i++ {
		p.Frame(t0.Add(time.Duration(i) * 16 * time.Millisecond))
	}
	assert.Equal(t, []uint64{0, 2, 4, 6}, seqs)
}

func TestPipeline_DeltaTime(t *testing.T) {
	cfg := testConfig()
	p := NewPipeline(testGraph(), cfg, nil)

	f := p.Frame(t0)
	assert.Equal(t, cfg.Physics.TickInterval.Duration, f.DT, "first frame uses the nominal tick")

	f = p.Frame(t0.Add(40 * time.Millisecond))
	assert.Equal(t, 40*time.Millisecond, f.DT)

	f = p.Frame(t0)
	assert.Equal(t, time.Duration(0), f.DT, "clock going backwards never yields a negative delta")
}

func TestPipeline_Resize(t *testing.T) {
	bus := events.NewBus()
	var got []events.ResizePayload
	bus.Subscribe(func(e events.Event) {
		got = append(got, e.Payload.(events.ResizePayload))
	}, events.LayoutResized)

	p := NewPipeline(testGraph(), testConfig(), bus)
	p.Resize(640, 480)
	f := p.Frame(t0)

	assert.Equal(t, []events.ResizePayload{{Width: 640, Height: 480}}, got)
	assert.Equal(t, 640.0, f.Width)
	assert.Equal(t, 480.0, f.Height)
}

func TestPipeline_SelectionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPipeline(testGraph(), testConfig(), nil)
	p.SetMetrics(metrics.NewCollector(reg))

	p.Selection().SelectNeed("safety")
	p.Selection().SelectEmotion("joy")

	n, err := testutil.GatherAndCount(reg, "constellation_selection_changes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per mode")
}
