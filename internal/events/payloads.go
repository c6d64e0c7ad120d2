package events

import (
	"time"

	"github.com/emotion-constellation/constellation-core/pkg/models"
)

// NeedInquiry is one link of a selected emotion
type NeedInquiry struct {
	Need     *models.Need `json:"need"`
	Inquiry  string       `json:"inquiry"`
	Strength float64      `json:"strength"`
}

// EmotionInquiry is one emotion linked to a selected need
type EmotionInquiry struct {
	Emotion  *models.Emotion `json:"emotion"`
	Inquiry  string          `json:"inquiry"`
	Strength float64         `json:"strength"`
}

// SelectionPayload accompanies SelectionChanged. For ModeIdle only Mode is
// set. Set fields are sorted IDs.
type SelectionPayload struct {
	Mode             models.Mode      `json:"mode"`
	ID               string           `json:"id,omitempty"`
	Emotion          *models.Emotion  `json:"emotion,omitempty"`
	Need             *models.Need     `json:"need,omitempty"`
	LinkedNeeds      []string         `json:"linkedNeeds,omitempty"`
	LinkedEmotions   []string         `json:"linkedEmotions,omitempty"`
	FellowMessengers []string         `json:"fellowMessengers,omitempty"`
	NeedInquiries    []NeedInquiry    `json:"needInquiries,omitempty"`
	EmotionInquiries []EmotionInquiry `json:"emotionInquiries,omitempty"`
}

// NodePayload names a node, for the click events
type NodePayload struct {
	ID string `json:"id"`
}

// PointPayload is a pointer position in canvas CSS pixels
type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HintPayload accompanies the entry hint events
type HintPayload struct {
	Elapsed time.Duration `json:"elapsed"`
}

// LocalePayload accompanies LocaleChanged
type LocalePayload struct {
	Locale  string `json:"locale"`
	Updated int    `json:"updated"` // nodes whose text changed
}

// ResizePayload accompanies LayoutResized
type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Selection returns the payload of a SelectionChanged event
func (e Event) Selection() (*SelectionPayload, bool) {
	p, ok := e.Payload.(*SelectionPayload)
	return p, ok
}

// Node returns the payload of a click event
func (e Event) Node() (NodePayload, bool) {
	p, ok := e.Payload.(NodePayload)
	return p, ok
}

// Point returns the payload of a tap or hover event
func (e Event) Point() (PointPayload, bool) {
	p, ok := e.Payload.(PointPayload)
	return p, ok
}
