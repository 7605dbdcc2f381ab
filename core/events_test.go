package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var got []string
	bus.On("t", func(p any) { got = append(got, "first:"+p.(string)) })
	bus.On("t", func(p any) { got = append(got, "second:"+p.(string)) })
	bus.On("other", func(p any) { got = append(got, "other") })

	bus.Emit("t", "a")
	bus.Emit("t", "b")

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, got)
}

func TestEventBusOff(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	sub := bus.On("t", func(any) { calls++ })
	assert.Equal(t, 1, bus.ListenerCount("t"))

	bus.Off(sub)
	bus.Off(sub)
	bus.Emit("t", nil)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, bus.ListenerCount("t"))
}

func TestEventBusHandlerMayReenter(t *testing.T) {
	bus := NewEventBus()
	var got []string
	bus.On("outer", func(any) {
		bus.On("inner", func(any) { got = append(got, "inner") })
		bus.Emit("inner", nil)
	})

	bus.Emit("outer", nil)
	assert.Equal(t, []string{"inner"}, got)
}
