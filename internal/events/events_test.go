package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()

	var got []string
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		got = append(got, "first:"+e.Type)
		return nil
	})
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		got = append(got, "second:"+e.Type)
		return nil
	})
	bus.Subscribe(EventBookingCancelled, func(e *Event) error {
		got = append(got, "cancelled")
		return nil
	})

	bus.Publish(&Event{Type: EventBookingCreated})

	assert.Equal(t, []string{"first:" + EventBookingCreated, "second:" + EventBookingCreated}, got)
}

func TestPublishStampsCreatedAt(t *testing.T) {
	bus := NewEventBus()
	var seen time.Time
	bus.Subscribe(EventBookingApproved, func(e *Event) error {
		seen = e.CreatedAt
		return nil
	})

	bus.Publish(&Event{Type: EventBookingApproved})
	assert.False(t, seen.IsZero())
}

func TestHandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewEventBus()

	delivered := false
	bus.Subscribe(EventBookingRejected, func(e *Event) error {
		return errors.New("consumer broke")
	})
	bus.Subscribe(EventBookingRejected, func(e *Event) error {
		delivered = true
		return nil
	})

	bus.Publish(&Event{Type: EventBookingRejected})
	assert.True(t, delivered)
}

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received BookingEventPayload
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		return json.Unmarshal(e.Payload, &received)
	})

	payload := BookingEventPayload{BookingID: 7, ItemID: 3, BookerID: 5, Status: "WAITING"}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))
	assert.Equal(t, payload, received)

	t.Run("UnserializablePayload", func(t *testing.T) {
		err := bus.PublishJSON(EventBookingCreated, func() {})
		assert.Error(t, err)
	})

	t.Run("NilBusIsSafe", func(t *testing.T) {
		var nilBus *EventBus
		assert.NoError(t, nilBus.PublishJSON(EventBookingCreated, payload))
	})
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NotPanics(t, func() {
		bus.Publish(&Event{Type: "nobody-listens"})
	})
}
