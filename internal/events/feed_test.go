package events_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/events"
)

func TestFeed_PublishSubscribe(t *testing.T) {
	feed := events.NewFeed()
	tenantID := uuid.New()

	ch, cancel := feed.Subscribe(tenantID)
	defer cancel()

	entityID := uuid.New()
	feed.Publish(events.Event{
		Entity:   "order",
		Action:   events.ActionCreated,
		EntityID: entityID,
		TenantID: tenantID,
	})

	select {
	case event := <-ch:
		assert.Equal(t, "order", event.Entity)
		assert.Equal(t, events.ActionCreated, event.Action)
		assert.Equal(t, entityID, event.EntityID)
		assert.False(t, event.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestFeed_TenantIsolation(t *testing.T) {
	feed := events.NewFeed()
	tenantA := uuid.New()
	tenantB := uuid.New()

	chA, cancelA := feed.Subscribe(tenantA)
	defer cancelA()
	chB, cancelB := feed.Subscribe(tenantB)
	defer cancelB()

	feed.Publish(events.Event{Entity: "sale", Action: events.ActionCreated, EntityID: uuid.New(), TenantID: tenantA})

	select {
	case <-chA:
	case <-time.After(time.Second):
		t.Fatal("tenant A did not receive its event")
	}

	select {
	case event := <-chB:
		t.Fatalf("tenant B received event for tenant A: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFeed_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	feed := events.NewFeed()
	tenantID := uuid.New()

	_, cancel := feed.Subscribe(tenantID)
	defer cancel()

	// Publish more than the subscriber buffer holds without draining.
	// This must not deadlock.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			feed.Publish(events.Event{Entity: "order", Action: events.ActionUpdated, EntityID: uuid.New(), TenantID: tenantID})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}

func TestFeed_CancelRemovesSubscription(t *testing.T) {
	feed := events.NewFeed()
	tenantID := uuid.New()

	ch, cancel := feed.Subscribe(tenantID)
	require.Equal(t, 1, feed.SubscriberCount(tenantID))

	cancel()
	assert.Equal(t, 0, feed.SubscriberCount(tenantID))

	// Channel is closed after cancel
	_, open := <-ch
	assert.False(t, open)
}

func TestFeed_MultipleSubscribersSameTenant(t *testing.T) {
	feed := events.NewFeed()
	tenantID := uuid.New()

	ch1, cancel1 := feed.Subscribe(tenantID)
	defer cancel1()
	ch2, cancel2 := feed.Subscribe(tenantID)
	defer cancel2()

	feed.Publish(events.Event{Entity: "customer", Action: events.ActionDeleted, EntityID: uuid.New(), TenantID: tenantID})

	for _, ch := range []<-chan events.Event{ch1, ch2} {
		select {
		case event := <-ch:
			assert.Equal(t, "customer", event.Entity)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}
