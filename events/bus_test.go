package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/events"
	"github.com/ferreirogomes/nftmarket/models"
)

func TestPublishFansOutInOrder(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	a, b := bus.Subscribe(4), bus.Subscribe(4)
	defer a.Close()
	defer b.Close()

	bus.Publish(models.Event{Seq: 1}, models.Event{Seq: 2})

	for _, sub := range []*events.Subscription{a, b} {
		require.Equal(t, uint64(1), (<-sub.C).Seq)
		require.Equal(t, uint64(2), (<-sub.C).Seq)
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	sub := bus.Subscribe(1)

	bus.Publish(models.Event{Seq: 1}, models.Event{Seq: 2})

	assert.Equal(t, uint64(1), (<-sub.C).Seq)
	select {
	case e := <-sub.C:
		t.Fatalf("evento inesperado %d", e.Seq)
	default:
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	sub := bus.Subscribe(1)
	sub.Close()
	_, ok := <-sub.C
	assert.False(t, ok)

	other := bus.Subscribe(1)
	bus.Close()
	_, ok = <-other.C
	assert.False(t, ok)

	late := bus.Subscribe(1)
	_, ok = <-late.C
	assert.False(t, ok)
	late.Close()
}
