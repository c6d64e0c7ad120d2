package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var received []Name
	id := bus.Subscribe(func(e Event) {
		received = append(received, e.Name)
	})
	require.NotEmpty(t, id)
	assert.Equal(t, 1, bus.SubscriptionCount())

	bus.Publish(InputTap, PointPayload{X: 1, Y: 2})
	bus.Publish(LocaleChanged, LocalePayload{Locale: "de"})

	assert.Equal(t, []Name{InputTap, LocaleChanged}, received)
}

func TestBus_SubscribeByName(t *testing.T) {
	bus := NewBus()

	var clicks []string
	bus.Subscribe(func(e Event) {
		p, ok := e.Node()
		require.True(t, ok)
		clicks = append(clicks, p.ID)
	}, InputEmotionClick, InputNeedClick)

	bus.Publish(InputEmotionClick, NodePayload{ID: "joy"})
	bus.Publish(InputDeselect, nil)
	bus.Publish(InputNeedClick, NodePayload{ID: "safety"})

	assert.Equal(t, []string{"joy", "safety"}, clicks)
}

func TestBus_DeliveryOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Subscribe(func(Event) { order = append(order, i) })
	}
	bus.Publish(LayoutResized, ResizePayload{Width: 10, Height: 10})

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	id := bus.Subscribe(func(Event) { count++ })
	bus.Publish(InputHoverEnd, nil)

	assert.True(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id))
	bus.Publish(InputHoverEnd, nil)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.SubscriptionCount())
}

func TestBus_UnsubscribeInsideHandler(t *testing.T) {
	bus := NewBus()

	count := 0
	var id string
	id = bus.Subscribe(func(Event) {
		count++
		bus.Unsubscribe(id)
	})
	bus.Publish(EntryHintShown, nil)
	bus.Publish(EntryHintShown, nil)

	assert.Equal(t, 1, count)
}

func TestBus_PanicRecovery(t *testing.T) {
	bus := NewBus()

	delivered := false
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(Event) { delivered = true })

	assert.NotPanics(t, func() { bus.Publish(InputDeselect, nil) })
	assert.True(t, delivered, "handler after a panicking one should still run")
}

func TestBus_EventMetadata(t *testing.T) {
	bus := NewBus()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	bus.SetClock(func() time.Time { return at })

	e1 := bus.Publish(SelectionChanged, &SelectionPayload{Mode: "idle"})
	e2 := bus.Publish(SelectionChanged, &SelectionPayload{Mode: "idle"})

	assert.Equal(t, at, e1.At)
	assert.NotEqual(t, e1.ID, e2.ID)

	p, ok := e1.Selection()
	require.True(t, ok)
	assert.EqualValues(t, "idle", p.Mode)

	_, ok = e1.Point()
	assert.False(t, ok)
}
