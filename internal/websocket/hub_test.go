package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHubTest(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func registerClient(t *testing.T, hub *Hub, buffer int) *Client {
	t.Helper()
	client := &Client{Hub: hub, ID: "c", Send: make(chan []byte, buffer)}
	before := hub.ClientCount()
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == before+1 }, time.Second, 5*time.Millisecond)
	return client
}

func receive(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case data, ok := <-client.Send:
		require.True(t, ok, "send channel closed")
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestHub_BroadcastsToEveryClient(t *testing.T) {
	hub := setupHubTest(t)
	a := registerClient(t, hub, 4)
	b := registerClient(t, hub, 4)

	review := model.Review{ID: "r1", Nickname: "Ana", Rating: 4.5, Timestamp: 10}
	hub.ReviewCreated(review)

	for _, c := range []*Client{a, b} {
		event := receive(t, c)
		assert.Equal(t, EventReviewCreated, event.Type)
		require.NotNil(t, event.Review)
		assert.Equal(t, review, *event.Review)
	}

	hub.ReviewDeleted("r1")
	event := receive(t, a)
	assert.Equal(t, EventReviewDeleted, event.Type)
	assert.Equal(t, "r1", event.ID)
	assert.Nil(t, event.Review)
}

func TestHub_Unregister(t *testing.T) {
	hub := setupHubTest(t)
	client := registerClient(t, hub, 4)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-client.Send
	assert.False(t, ok)

	// A second unregister is harmless.
	hub.Unregister(client)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := setupHubTest(t)
	slow := registerClient(t, hub, 1)
	fast := registerClient(t, hub, 8)

	hub.ReviewDeleted("a")
	hub.ReviewDeleted("b")

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "a", receive(t, fast).ID)
	assert.Equal(t, "b", receive(t, fast).ID)

	<-slow.Send
	_, ok := <-slow.Send
	assert.False(t, ok)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	client := registerClient(t, hub, 1)
	hub.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, ok := <-client.Send
	assert.False(t, ok)

	// A client registered after stop is closed immediately and never tracked.
	late := &Client{Hub: hub, Send: make(chan []byte, 1)}
	hub.Register(late)
	_, ok = <-late.Send
	assert.False(t, ok)
	assert.Zero(t, hub.ClientCount())
	hub.Unregister(late)
}

func TestHub_RegisterRacingStop(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	clients := make([]*Client, 50)
	var wg sync.WaitGroup
	for i := range clients {
		clients[i] = &Client{Hub: hub, Send: make(chan []byte, 1)}
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			hub.Register(c)
		}(clients[i])
	}
	hub.Stop()
	wg.Wait()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	for _, c := range clients {
		select {
		case _, ok := <-c.Send:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("client send channel left open after stop")
		}
	}
	assert.Zero(t, hub.ClientCount())
}
