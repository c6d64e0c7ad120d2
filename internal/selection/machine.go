// Package selection tracks which node is selected and derives the per-node
// visual multipliers of the selection transition.
package selection

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/emotion-constellation/constellation-core/internal/events"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/models"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

// Emits lists the events the machine publishes
var Emits = []events.Name{events.SelectionChanged}

const (
	// below this eased progress every multiplier is neutral
	neutralEpsilon = 0.001
	// hover applies only while the exit transition is nearly done
	hoverEpsilon = 0.01
)

type set map[string]struct{}

func (s set) has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// State is a read-only snapshot of the machine
type State struct {
	Mode       models.Mode `json:"mode"`
	SelectedID string      `json:"selectedId,omitempty"`
	Progress   float64     `json:"progress"`
	Eased      float64     `json:"eased"`
	HoveredID  string      `json:"hoveredId,omitempty"`
}

// Machine is the idle / emotion / need selection state machine. It is not
// safe for concurrent use; the frame goroutine is its only caller.
type Machine struct {
	graph  *models.Constellation
	cfg    config.Interaction
	bus    *events.Bus
	logger *slog.Logger

	mode       models.Mode
	selectedID string
	hoveredID  string
	raw        float64
	eased      float64

	// kept through the exit transition, cleared when eased reaches 0
	linkedNeeds    set
	linkedEmotions set
	fellows        set
	prevMode       models.Mode
	prevID         string
}

// New creates an idle machine over graph. bus may be nil.
func New(graph *models.Constellation, cfg config.Interaction, bus *events.Bus) *Machine {
	return &Machine{
		graph:          graph,
		cfg:            cfg,
		bus:            bus,
		logger:         logger.Component("selection"),
		mode:           models.ModeIdle,
		prevMode:       models.ModeIdle,
		linkedNeeds:    set{},
		linkedEmotions: set{},
		fellows:        set{},
	}
}

// SetLogger sets the machine's logger
func (m *Machine) SetLogger(l *slog.Logger) {
	m.logger = l
}

// SelectEmotion selects an emotion, or deselects if it is already selected.
// Unknown IDs select nothing visible: every derived set is empty.
func (m *Machine) SelectEmotion(id string) {
	if m.mode == models.ModeEmotion && m.selectedID == id {
		m.Deselect()
		return
	}

	m.enter(models.ModeEmotion, id)

	emotion, _ := m.graph.Emotion(id)
	m.linkedNeeds = set{}
	if emotion != nil {
		for _, l := range m.graph.ResolvedLinks(emotion) {
			m.linkedNeeds[l.NeedID] = struct{}{}
		}
	}

	m.linkedEmotions = set{}
	if emotion != nil {
		m.linkedEmotions[id] = struct{}{}
		for _, other := range m.graph.Emotions {
			if m.sharesNeed(other) {
				m.linkedEmotions[other.ID] = struct{}{}
			}
		}
	}
	m.fellows = m.fellowMessengers(id)

	payload := &events.SelectionPayload{
		Mode:             models.ModeEmotion,
		ID:               id,
		Emotion:          emotion,
		LinkedNeeds:      m.linkedNeeds.sorted(),
		LinkedEmotions:   m.linkedEmotions.sorted(),
		FellowMessengers: m.fellows.sorted(),
	}
	if emotion != nil {
		for _, l := range m.graph.ResolvedLinks(emotion) {
			need, _ := m.graph.Need(l.NeedID)
			payload.NeedInquiries = append(payload.NeedInquiries, events.NeedInquiry{
				Need:     need,
				Inquiry:  l.Inquiry,
				Strength: l.Strength,
			})
		}
	}
	m.publish(payload)
}

// SelectNeed selects a need, or deselects if it is already selected
func (m *Machine) SelectNeed(id string) {
	if m.mode == models.ModeNeed && m.selectedID == id {
		m.Deselect()
		return
	}

	m.enter(models.ModeNeed, id)

	need, _ := m.graph.Need(id)
	m.linkedNeeds = set{}
	m.linkedEmotions = set{}
	m.fellows = set{}

	payload := &events.SelectionPayload{
		Mode: models.ModeNeed,
		ID:   id,
		Need: need,
	}
	if need != nil {
		m.linkedNeeds[id] = struct{}{}
		for _, e := range m.graph.Emotions {
			for _, l := range e.Links {
				if l.NeedID != id {
					continue
				}
				m.linkedEmotions[e.ID] = struct{}{}
				payload.EmotionInquiries = append(payload.EmotionInquiries, events.EmotionInquiry{
					Emotion:  e,
					Inquiry:  l.Inquiry,
					Strength: l.Strength,
				})
			}
		}
	}
	payload.LinkedNeeds = m.linkedNeeds.sorted()
	payload.LinkedEmotions = m.linkedEmotions.sorted()
	m.publish(payload)
}

// Deselect returns to idle. The derived sets stay until the exit
// transition reaches 0 so the visuals can ease away from them.
func (m *Machine) Deselect() {
	if m.mode == models.ModeIdle && m.raw == 0 {
		return
	}
	m.mode = models.ModeIdle
	m.selectedID = ""
	m.publish(&events.SelectionPayload{Mode: models.ModeIdle})
}

// enter switches mode. Progress is kept so a switch mid-transition
// re-targets the ramp instead of snapping.
func (m *Machine) enter(mode models.Mode, id string) {
	m.mode = mode
	m.selectedID = id
	m.prevMode = mode
	m.prevID = id
}

// sharesNeed reports whether e links any currently linked need
func (m *Machine) sharesNeed(e *models.Emotion) bool {
	for _, l := range e.Links {
		if m.linkedNeeds.has(l.NeedID) {
			return true
		}
	}
	return false
}

// fellowMessengers are the other emotions sharing at least one resolved
// need with id
func (m *Machine) fellowMessengers(id string) set {
	fellows := set{}
	emotion, ok := m.graph.Emotion(id)
	if !ok {
		return fellows
	}
	mine := set{}
	for _, l := range m.graph.ResolvedLinks(emotion) {
		mine[l.NeedID] = struct{}{}
	}
	for _, other := range m.graph.Emotions {
		if other.ID == id {
			continue
		}
		for _, l := range other.Links {
			if mine.has(l.NeedID) {
				fellows[other.ID] = struct{}{}
				break
			}
		}
	}
	return fellows
}

func (m *Machine) publish(p *events.SelectionPayload) {
	m.logger.Debug("selection changed",
		"mode", p.Mode,
		"id", p.ID,
		"linked_needs", len(p.LinkedNeeds),
		"linked_emotions", len(p.LinkedEmotions))
	if m.bus != nil {
		m.bus.Publish(events.SelectionChanged, p)
	}
}

// SetHover marks the node under the pointer
func (m *Machine) SetHover(id string) {
	m.hoveredID = id
}

// ClearHover forgets the hovered node
func (m *Machine) ClearHover() {
	m.hoveredID = ""
}

// Tick moves the raw progress toward its target by dt. The exit ramp is
// shorter than the entry ramp by the configured exit factor.
func (m *Machine) Tick(dt time.Duration) {
	duration := m.cfg.TransitionDuration.Seconds()
	step := utils.Seconds(dt)

	if m.mode != models.ModeIdle {
		if m.raw < 1 {
			m.raw = math.Min(1, m.raw+step/duration)
		}
	} else if m.raw > 0 {
		m.raw = math.Max(0, m.raw-step/(duration*m.cfg.ExitFactor))
		if m.raw == 0 {
			m.linkedNeeds = set{}
			m.linkedEmotions = set{}
			m.fellows = set{}
			m.prevMode = models.ModeIdle
			m.prevID = ""
		}
	}

	m.eased = utils.EaseCubicInOut(m.raw)
	// exactly 1 only while selected, exactly 0 only while idle
	if m.mode == models.ModeIdle && m.eased == 1 {
		m.eased = math.Nextafter(1, 0)
	}
	if m.mode != models.ModeIdle && m.eased == 0 {
		m.eased = math.SmallestNonzeroFloat64
	}
}

// activeSelection is the current selection, or the one being eased away from
func (m *Machine) activeSelection() (models.Mode, string) {
	if m.mode != models.ModeIdle {
		return m.mode, m.selectedID
	}
	return m.prevMode, m.prevID
}

// State returns a snapshot of the machine
func (m *Machine) State() State {
	return State{
		Mode:       m.mode,
		SelectedID: m.selectedID,
		Progress:   m.raw,
		Eased:      m.eased,
		HoveredID:  m.hoveredID,
	}
}

// Mode returns the current mode
func (m *Machine) Mode() models.Mode { return m.mode }

// SelectedID returns the selected node, empty while idle
func (m *Machine) SelectedID() string { return m.selectedID }

// Progress returns the linear transition progress
func (m *Machine) Progress() float64 { return m.raw }

// EasedProgress returns the eased transition progress used by every lerp
func (m *Machine) EasedProgress() float64 { return m.eased }

// LinkedNeeds returns the sorted linked need IDs
func (m *Machine) LinkedNeeds() []string { return m.linkedNeeds.sorted() }

// LinkedEmotions returns the sorted linked emotion IDs
func (m *Machine) LinkedEmotions() []string { return m.linkedEmotions.sorted() }

// FellowMessengers returns the sorted fellow messenger IDs
func (m *Machine) FellowMessengers() []string { return m.fellows.sorted() }
