package models

// NodeKind distinguishes the two node families of the constellation
type NodeKind string

const (
	NodeKindNeed    NodeKind = "need"
	NodeKindEmotion NodeKind = "emotion"
)

// Mode is the interaction mode of the selection state machine
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeEmotion Mode = "emotion"
	ModeNeed    Mode = "need"
)

// Display sizes in CSS pixels. Bridge emotions are drawn larger.
const (
	BridgeDisplaySize = 32.0
	SingleDisplaySize = 24.0
)

// FallbackColor is used for emotions that resolve no need at all
var FallbackColor = RGB{0.7, 0.7, 0.7}

// RGB is a linear color triple with components in [0, 1]
type RGB [3]float64

// Scale multiplies every component by f, clamping at 1
func (c RGB) Scale(f float64) RGB {
	out := RGB{}
	for i, v := range c {
		v *= f
		if v > 1 {
			v = 1
		}
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}

// IsZero reports whether the color was left unset
func (c RGB) IsZero() bool {
	return c == RGB{}
}

// Need is a fixed anchor representing a core motivational category.
// Position and intensity are owned by the simulation and the frame pipeline.
type Need struct {
	ID             string `json:"id" yaml:"id"`
	Label          string `json:"label" yaml:"label"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	Color          RGB    `json:"color" yaml:"color"`
	ColorSecondary RGB    `json:"colorSecondary,omitempty" yaml:"colorSecondary,omitempty"`
}

// ThreadColor returns the secondary color, falling back to the primary
func (n *Need) ThreadColor() RGB {
	if !n.ColorSecondary.IsZero() {
		return n.ColorSecondary
	}
	return n.Color
}

// Link is a weighted association between an emotion and a need
type Link struct {
	NeedID   string  `json:"needId" yaml:"needId"`
	Strength float64 `json:"strength" yaml:"strength"`
	Inquiry  string  `json:"inquiry,omitempty" yaml:"inquiry,omitempty"`
}

// Emotion is a free-floating node linked to one or more needs
type Emotion struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Links []Link `json:"links" yaml:"links"`

	// Derived at index time from the linked needs.
	DisplayColor RGB     `json:"-" yaml:"-"`
	DisplaySize  float64 `json:"-" yaml:"-"`
}

// IsBridge reports whether the emotion links more than one need
func (e *Emotion) IsBridge() bool {
	return len(e.Links) > 1
}

// HasNeed reports whether any link of the emotion references needID
func (e *Emotion) HasNeed(needID string) bool {
	for _, l := range e.Links {
		if l.NeedID == needID {
			return true
		}
	}
	return false
}

// Meta carries free-form dataset metadata
type Meta struct {
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Locale  string `json:"locale,omitempty" yaml:"locale,omitempty"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Constellation is the full node graph. Nodes are created once and never
// removed, so positional indices into Needs and Emotions are stable for the
// life of a session.
type Constellation struct {
	Needs    []*Need    `json:"needs" yaml:"needs"`
	Emotions []*Emotion `json:"emotions" yaml:"emotions"`
	Meta     Meta       `json:"meta,omitempty" yaml:"meta,omitempty"`

	needIndex    map[string]int
	emotionIndex map[string]int
}

// Index builds the ID lookups and derives each emotion's display color and
// size. It must be called once after the node slices are populated.
func (c *Constellation) Index() {
	c.needIndex = make(map[string]int, len(c.Needs))
	for i, n := range c.Needs {
		c.needIndex[n.ID] = i
	}
	c.emotionIndex = make(map[string]int, len(c.Emotions))
	for i, e := range c.Emotions {
		c.emotionIndex[e.ID] = i
		e.DisplayColor = c.blendColor(e)
		if e.IsBridge() {
			e.DisplaySize = BridgeDisplaySize
		} else {
			e.DisplaySize = SingleDisplaySize
		}
	}
}

// Need returns the need with the given ID
func (c *Constellation) Need(id string) (*Need, bool) {
	i, ok := c.needIndex[id]
	if !ok {
		return nil, false
	}
	return c.Needs[i], true
}

// Emotion returns the emotion with the given ID
func (c *Constellation) Emotion(id string) (*Emotion, bool) {
	i, ok := c.emotionIndex[id]
	if !ok {
		return nil, false
	}
	return c.Emotions[i], true
}

// NeedIndex returns the stable position of a need
func (c *Constellation) NeedIndex(id string) (int, bool) {
	i, ok := c.needIndex[id]
	return i, ok
}

// EmotionIndex returns the stable position of an emotion
func (c *Constellation) EmotionIndex(id string) (int, bool) {
	i, ok := c.emotionIndex[id]
	return i, ok
}

// ResolvedLinks returns the links of e whose need exists, in order
func (c *Constellation) ResolvedLinks(e *Emotion) []Link {
	out := make([]Link, 0, len(e.Links))
	for _, l := range e.Links {
		if _, ok := c.needIndex[l.NeedID]; ok {
			out = append(out, l)
		}
	}
	return out
}

// UnresolvedLinks lists "emotion -> need" pairs whose need is missing
func (c *Constellation) UnresolvedLinks() []string {
	var out []string
	for _, e := range c.Emotions {
		for _, l := range e.Links {
			if _, ok := c.needIndex[l.NeedID]; !ok {
				out = append(out, e.ID+" -> "+l.NeedID)
			}
		}
	}
	return out
}

// EmotionsLinkedTo returns every emotion with at least one link to needID
func (c *Constellation) EmotionsLinkedTo(needID string) []*Emotion {
	var out []*Emotion
	for _, e := range c.Emotions {
		if e.HasNeed(needID) {
			out = append(out, e)
		}
	}
	return out
}

// blendColor is the strength-weighted mean of the linked needs' thread colors
func (c *Constellation) blendColor(e *Emotion) RGB {
	var sum RGB
	total := 0.0
	for _, l := range e.Links {
		n, ok := c.Need(l.NeedID)
		if !ok {
			continue
		}
		col := n.ThreadColor()
		for i := range sum {
			sum[i] += col[i] * l.Strength
		}
		total += l.Strength
	}
	if total == 0 {
		return FallbackColor
	}
	for i := range sum {
		sum[i] /= total
	}
	return sum
}
