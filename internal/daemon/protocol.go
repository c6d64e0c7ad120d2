package daemon

import (
	"errors"
	"fmt"

	"github.com/emotion-constellation/constellation-core/internal/events"
	"github.com/emotion-constellation/constellation-core/internal/frame"
	"github.com/emotion-constellation/constellation-core/internal/input"
)

// Outbound message types
const (
	MsgHello       = "hello"
	MsgFrame       = "frame"
	MsgAnnotations = "annotations"
	MsgEvent       = "event"
	MsgError       = "error"
)

// Inbound command types
const (
	CmdSelectEmotion = "select_emotion"
	CmdSelectNeed    = "select_need"
	CmdDeselect      = "deselect"
	CmdTap           = "tap"
	CmdHover         = "hover"
	CmdHoverEnd      = "hover_end"
	CmdResize        = "resize"
	CmdLocale        = "locale"
)

var (
	// ErrUnknownCommand is returned for an unrecognized command type
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidCommand is returned when a command misses a required field
	ErrInvalidCommand = errors.New("invalid command")
	// ErrInboxFull is returned when the frame scheduler dropped a command
	ErrInboxFull = errors.New("frame inbox full")
	// ErrRateLimited is returned when a client sends commands too fast
	ErrRateLimited = errors.New("rate limited")
)

// Message is the envelope of everything sent to clients
type Message struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"` // event name for MsgEvent
	Data any    `json:"data,omitempty"`
}

// Command is a client request. Only the fields its type needs are read.
type Command struct {
	Type   string  `json:"type"`
	ID     string  `json:"id,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Locale string  `json:"locale,omitempty"`
}

// FrameCommand translates a client command into a frame command. Locale
// changes are not frame commands; they go through the dataset watcher.
func FrameCommand(c Command) (frame.Command, error) {
	switch c.Type {
	case CmdSelectEmotion, CmdSelectNeed:
		if c.ID == "" {
			return nil, fmt.Errorf("%w: %s requires id", ErrInvalidCommand, c.Type)
		}
		name := events.InputEmotionClick
		if c.Type == CmdSelectNeed {
			name = events.InputNeedClick
		}
		return input.PublishCommand(name, events.NodePayload{ID: c.ID}), nil
	case CmdDeselect:
		return input.PublishCommand(events.InputDeselect, nil), nil
	case CmdTap:
		return input.PublishCommand(events.InputTap, events.PointPayload{X: c.X, Y: c.Y}), nil
	case CmdHover:
		return input.PublishCommand(events.InputHover, events.PointPayload{X: c.X, Y: c.Y}), nil
	case CmdHoverEnd:
		return input.PublishCommand(events.InputHoverEnd, nil), nil
	case CmdResize:
		if c.Width <= 0 || c.Height <= 0 {
			return nil, fmt.Errorf("%w: resize requires positive width and height", ErrInvalidCommand)
		}
		w, h := c.Width, c.Height
		return func(p *frame.Pipeline) { p.Resize(w, h) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
}
