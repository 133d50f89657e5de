package keyboard

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionBroadcastDeliversToAllHandlers(t *testing.T) {
	sub := newSubscription(nil)
	var gotA, gotB KeyEvent
	sub.Subscribe(func(e KeyEvent) { gotA = e })
	sub.Subscribe(func(e KeyEvent) { gotB = e })

	event := KeyEvent{Name: "a"}
	sub.broadcast(event)

	assert.Equal(t, event, gotA)
	assert.Equal(t, event, gotB)
}

func TestSubscriptionUnsubscribeStopsDelivery(t *testing.T) {
	sub := newSubscription(nil)
	calls := 0
	id := sub.Subscribe(func(KeyEvent) { calls++ })

	sub.broadcast(KeyEvent{Name: "a"})
	sub.Unsubscribe(id)
	sub.broadcast(KeyEvent{Name: "b"})

	assert.Equal(t, 1, calls)
}

func TestSubscriptionUnsubscribeUnknownIDIsNoop(t *testing.T) {
	sub := newSubscription(nil)
	sub.Subscribe(func(KeyEvent) {})
	assert.NotPanics(t, func() { sub.Unsubscribe(uuid.New()) })
}

func TestSubscriptionHandlerPanicIsRecoveredAndOthersStillRun(t *testing.T) {
	sub := newSubscription(nil)
	secondRan := false
	sub.Subscribe(func(KeyEvent) { panic("boom") })
	sub.Subscribe(func(KeyEvent) { secondRan = true })

	require.NotPanics(t, func() { sub.broadcast(KeyEvent{Name: "a"}) })
	assert.True(t, secondRan, "a panicking handler must not stop fan-out to the rest")
}

func TestSubscriptionPanicReportedThroughDiagnostic(t *testing.T) {
	var reportedEvent string
	var reportedErr error
	sub := newSubscription(func(event string, detail map[string]any) {
		reportedEvent = event
		if err, ok := detail["error"].(error); ok {
			reportedErr = err
		}
	})
	sub.Subscribe(func(KeyEvent) { panic(errors.New("handler exploded")) })

	sub.broadcast(KeyEvent{Name: "a"})

	assert.Equal(t, "handler_panic", reportedEvent)
	require.Error(t, reportedErr)
	assert.Equal(t, "handler exploded", reportedErr.Error())
}

func TestSubscriptionNonErrorPanicWrapped(t *testing.T) {
	var reportedErr error
	sub := newSubscription(func(event string, detail map[string]any) {
		if err, ok := detail["error"].(error); ok {
			reportedErr = err
		}
	})
	sub.Subscribe(func(KeyEvent) { panic("not an error value") })

	sub.broadcast(KeyEvent{Name: "a"})

	require.Error(t, reportedErr)
	var pv panicValue
	require.ErrorAs(t, reportedErr, &pv)
	assert.Equal(t, "not an error value", pv.v)
}
