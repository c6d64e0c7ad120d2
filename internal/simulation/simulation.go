// Package simulation is the perpetual force-directed layout of the
// constellation. Needs are anchors on a slowly rotating ring; emotions are
// free bodies pulled toward their linked needs and kept in motion by a drift
// field whose strength never decays to zero.
package simulation

import (
	"log/slog"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/models"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

// Body is the integrated state of one emotion
type Body struct {
	ID     string
	X, Y   float64
	VX, VY float64

	seed  float64 // drift phase offset
	links []pull
}

// Anchor is the placed position of one need. Anchors are never integrated.
type Anchor struct {
	ID   string
	X, Y float64
}

type pull struct {
	need     int
	strength float64
}

// Connection is a renderable thread from an emotion to one of its needs
type Connection struct {
	EmotionID    string     `json:"emotionId"`
	NeedID       string     `json:"needId"`
	EmotionIndex int        `json:"-"`
	NeedIndex    int        `json:"-"`
	StartX       float64    `json:"startX"`
	StartY       float64    `json:"startY"`
	EndX         float64    `json:"endX"`
	EndY         float64    `json:"endY"`
	Color        models.RGB `json:"color"`
	Strength     float64    `json:"strength"`
	Opacity      float64    `json:"opacity"` // base opacity before selection and entry
}

// Simulation owns every position and velocity of the constellation. It is
// not safe for concurrent use; the frame goroutine is its only caller.
type Simulation struct {
	graph  *models.Constellation
	phys   config.Physics
	layout config.Layout

	width, height float64
	anchors       []Anchor
	bodies        []Body

	alpha      float64
	driftClock float64
	ticks      uint64

	rotation        float64
	rotationPaused  bool
	rotationResumed float64 // seconds since the last resume

	rng    *utils.RandSource
	noise  opensimplex.Noise
	logger *slog.Logger
}

// New places the constellation on a canvas of cfg.Canvas size and runs the
// warm-up ticks. graph must already be indexed.
func New(graph *models.Constellation, cfg *config.Config) *Simulation {
	rng := utils.NewRandSource(cfg.Seed)
	s := &Simulation{
		graph:  graph,
		phys:   cfg.Physics,
		layout: cfg.Layout,
		width:  cfg.Canvas.Width,
		height: cfg.Canvas.Height,
		alpha:  1,
		rng:    rng,
		noise:  opensimplex.NewNormalized(rng.Int63()),
		logger: logger.Component("simulation"),
		// rotation starts at full speed
		rotationResumed: cfg.Layout.RotationResume.Seconds(),
	}

	s.anchors = make([]Anchor, len(graph.Needs))
	for i, n := range graph.Needs {
		s.anchors[i].ID = n.ID
	}
	s.placeAnchors()
	s.placeBodies()

	for i := 0; i < s.phys.WarmupTicks; i++ {
		s.step()
	}

	s.logger.Debug("simulation warmed up",
		"needs", len(s.anchors),
		"emotions", len(s.bodies),
		"warmup_ticks", s.phys.WarmupTicks,
		"alpha", s.alpha)
	return s
}

// SetLogger sets the simulation's logger
func (s *Simulation) SetLogger(l *slog.Logger) {
	s.logger = l
}

// Tick advances one step: drift clock, ambient rotation, forces, integration.
func (s *Simulation) Tick() {
	dt := s.phys.TickInterval.Seconds()
	s.advanceRotation(dt)
	s.step()
}

func (s *Simulation) step() {
	s.driftClock += s.phys.TickInterval.Seconds()
	s.alpha += (s.phys.AlphaFloor - s.alpha) * s.phys.AlphaDecay

	s.applyCentering()
	for i := 0; i < s.phys.CollisionIterations; i++ {
		s.applyCollision()
	}
	s.applyCharge()
	s.applyGravity()
	s.applyDrift()
	s.applyPerturbation()

	damping := 1 - s.phys.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		b.VX *= damping
		b.VY *= damping
		b.X += b.VX
		b.Y += b.VY
	}
	s.ticks++
}

// Resize recomputes the anchor ring for a new canvas and re-energizes the
// layout so it settles again. Velocities are kept.
func (s *Simulation) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	s.placeAnchors()
	s.alpha = math.Max(s.alpha, s.phys.ResizeAlpha)

	s.logger.Debug("simulation resized", "width", width, "height", height, "alpha", s.alpha)
}

// PauseRotation freezes the anchor ring in place
func (s *Simulation) PauseRotation() {
	s.rotationPaused = true
}

// ResumeRotation restarts the anchor ring, easing back to full speed
func (s *Simulation) ResumeRotation() {
	if !s.rotationPaused {
		return
	}
	s.rotationPaused = false
	s.rotationResumed = 0
}

func (s *Simulation) advanceRotation(dt float64) {
	if s.rotationPaused || s.layout.RotationSpeed == 0 || len(s.anchors) == 0 {
		return
	}
	ramp := 1.0
	if resume := s.layout.RotationResume.Seconds(); resume > 0 {
		ramp = utils.Smoothstep(s.rotationResumed / resume)
	}
	s.rotationResumed += dt
	s.rotation += dt * s.layout.RotationSpeed * ramp
	s.placeAnchors()
}

// Connections lists a thread for every resolved link, emotion by emotion in
// link order. Links to missing needs are never included.
func (s *Simulation) Connections() []Connection {
	out := make([]Connection, 0, len(s.bodies)*2)
	for ei := range s.bodies {
		b := &s.bodies[ei]
		emotion := s.graph.Emotions[ei]
		for _, l := range emotion.Links {
			ni, ok := s.graph.NeedIndex(l.NeedID)
			if !ok {
				continue
			}
			need := s.graph.Needs[ni]
			a := s.anchors[ni]
			out = append(out, Connection{
				EmotionID:    b.ID,
				NeedID:       need.ID,
				EmotionIndex: ei,
				NeedIndex:    ni,
				StartX:       b.X,
				StartY:       b.Y,
				EndX:         a.X,
				EndY:         a.Y,
				Color:        need.ThreadColor(),
				Strength:     l.Strength,
				Opacity:      BaseConnectionOpacity(l.Strength),
			})
		}
	}
	return out
}

// BaseConnectionOpacity is the resting opacity of a thread of the given strength
func BaseConnectionOpacity(strength float64) float64 {
	return 0.25 + 0.25*utils.Clamp01(strength)
}

// DriftMagnitude is the current per-tick drift impulse
func (s *Simulation) DriftMagnitude() float64 {
	return s.phys.DriftStrength * math.Sqrt(s.alpha)
}

// PerturbationAmplitude is the current peak-to-peak random impulse per axis
func (s *Simulation) PerturbationAmplitude() float64 {
	return s.phys.Perturbation * math.Sqrt(s.alpha)
}

// Bodies returns the emotion states in dataset order. Callers must not
// modify the slice.
func (s *Simulation) Bodies() []Body { return s.bodies }

// Anchors returns the need positions in dataset order. Callers must not
// modify the slice.
func (s *Simulation) Anchors() []Anchor { return s.anchors }

// Alpha returns the current simulation energy
func (s *Simulation) Alpha() float64 { return s.alpha }

// DriftClock returns the simulation-owned drift time in seconds
func (s *Simulation) DriftClock() float64 { return s.driftClock }

// Ticks returns the number of steps taken, warm-up included
func (s *Simulation) Ticks() uint64 { return s.ticks }

// Rotation returns the accumulated ring rotation in radians
func (s *Simulation) Rotation() float64 { return s.rotation }

// RotationPaused reports whether ambient rotation is paused
func (s *Simulation) RotationPaused() bool { return s.rotationPaused }

// Size returns the canvas size
func (s *Simulation) Size() (width, height float64) { return s.width, s.height }

// Center returns the canvas center
func (s *Simulation) Center() (x, y float64) { return s.width / 2, s.height / 2 }
