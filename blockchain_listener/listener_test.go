package blockchain_listener_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/blockchain_listener"
	"github.com/ferreirogomes/nftmarket/events"
	"github.com/ferreirogomes/nftmarket/models"
)

func noDelay(int) time.Duration { return 0 }

func TestWebhookRetriesUntilAccepted(t *testing.T) {
	var calls atomic.Int32
	var got models.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	l := blockchain_listener.NewBlockchainListener(events.NewBus(zap.NewNop()), srv.URL, zap.NewNop()).
		WithRetry(5, noDelay)
	e := models.NewOfferedEvent(models.NewAddress(), models.Item{ID: 1, TokenID: 1, Price: 10})
	e.Seq = 7
	l.ProcessEvent(context.Background(), e)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.Args, got.Args)
}

func TestWebhookGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := blockchain_listener.NewBlockchainListener(events.NewBus(zap.NewNop()), srv.URL, zap.NewNop()).
		WithRetry(2, noDelay)
	l.ProcessEvent(context.Background(), models.Event{Name: models.EventBought})
	assert.Equal(t, int32(2), calls.Load())
}

func TestStartListeningDeliversPublishedEvents(t *testing.T) {
	received := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e models.Event
		if err := json.NewDecoder(r.Body).Decode(&e); err == nil {
			received <- e.Name
		}
	}))
	defer srv.Close()

	bus := events.NewBus(zap.NewNop())
	l := blockchain_listener.NewBlockchainListener(bus, srv.URL, zap.NewNop()).WithRetry(1, noDelay)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.StartListening(ctx) }()

	// o listener assina de forma assíncrona
	require.Eventually(t, func() bool {
		bus.Publish(models.Event{Name: models.EventTransfer})
		select {
		case name := <-received:
			return name == models.EventTransfer
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener não terminou")
	}
}
