package hub_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amora/hub"
)

func startHub() *hub.Hub {
	h := hub.NewHub()
	go h.Run()
	return h
}

func newConnectedClient(t *testing.T, h *hub.Hub, userID string) *hub.Client {
	t.Helper()
	c := hub.NewClient(nil, h, userID)
	h.Register(c)
	require.Eventually(t, func() bool {
		return h.ClientCount() > 0
	}, time.Second, 5*time.Millisecond)
	return c
}

// receive pulls the next payload off a client's send channel or fails the test.
func receive(t *testing.T, c *hub.Client) []byte {
	t.Helper()
	select {
	case payload := <-c.Send():
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestJoinRoomTracksMembership(t *testing.T) {
	h := startHub()

	a := newConnectedClient(t, h, "alice")
	b := newConnectedClient(t, h, "bob")

	h.JoinRoom(a, "chat-1")
	h.JoinRoom(b, "chat-1")

	require.Eventually(t, func() bool {
		return h.RoomSize("chat-1") == 2
	}, time.Second, 5*time.Millisecond)
}

func TestClientCanJoinMultipleRooms(t *testing.T) {
	h := startHub()

	a := newConnectedClient(t, h, "alice")
	h.JoinRoom(a, "chat-1")
	h.JoinRoom(a, "chat-2")

	require.Eventually(t, func() bool {
		return h.RoomSize("chat-1") == 1 && h.RoomSize("chat-2") == 1
	}, time.Second, 5*time.Millisecond)
}

// The relay does not exclude the sender's own connections: every socket in
// the room gets the event.
func TestBroadcastReachesEveryRoomMemberIncludingSender(t *testing.T) {
	h := startHub()

	a := newConnectedClient(t, h, "alice")
	b := newConnectedClient(t, h, "bob")

	h.JoinRoom(a, "chat-1")
	h.JoinRoom(b, "chat-1")
	require.Eventually(t, func() bool {
		return h.RoomSize("chat-1") == 2
	}, time.Second, 5*time.Millisecond)

	h.BroadcastToRoom("chat-1", hub.EventReceiveMessage, map[string]string{
		"chatId":  "chat-1",
		"content": "hi",
	})

	for _, c := range []*hub.Client{a, b} {
		var evt hub.Event
		require.NoError(t, json.Unmarshal(receive(t, c), &evt))
		assert.Equal(t, hub.EventReceiveMessage, evt.Event)

		var data map[string]string
		require.NoError(t, json.Unmarshal(evt.Data, &data))
		assert.Equal(t, "hi", data["content"])
	}
}

func TestBroadcastDoesNotLeakAcrossRooms(t *testing.T) {
	h := startHub()

	a := newConnectedClient(t, h, "alice")
	b := newConnectedClient(t, h, "bob")

	h.JoinRoom(a, "chat-1")
	h.JoinRoom(b, "chat-2")
	require.Eventually(t, func() bool {
		return h.RoomSize("chat-1") == 1 && h.RoomSize("chat-2") == 1
	}, time.Second, 5*time.Millisecond)

	h.BroadcastToRoom("chat-1", hub.EventReceiveMessage, map[string]string{"content": "hi"})

	receive(t, a)

	select {
	case payload := <-b.Send():
		t.Fatalf("client outside the room received %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDisconnectLeavesAllRooms(t *testing.T) {
	h := startHub()

	a := newConnectedClient(t, h, "alice")
	h.JoinRoom(a, "chat-1")
	h.JoinRoom(a, "chat-2")
	require.Eventually(t, func() bool {
		return h.RoomSize("chat-1") == 1 && h.RoomSize("chat-2") == 1
	}, time.Second, 5*time.Millisecond)

	h.Unregister(a)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 0 &&
			h.RoomSize("chat-1") == 0 &&
			h.RoomSize("chat-2") == 0
	}, time.Second, 5*time.Millisecond)

	// The send channel is closed on removal.
	_, open := <-a.Send()
	assert.False(t, open)
}

func TestRegisteringAgainAfterDisconnectIsSafe(t *testing.T) {
	h := startHub()

	a := newConnectedClient(t, h, "alice")
	h.Unregister(a)
	require.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	b := newConnectedClient(t, h, "alice")
	h.JoinRoom(b, "chat-1")
	require.Eventually(t, func() bool {
		return h.RoomSize("chat-1") == 1
	}, time.Second, 5*time.Millisecond)
}

// Hammer the hub with concurrent connects, joins and disconnects to make
// sure membership mutation through the run loop never loses an update.
func TestConcurrentConnectDisconnect(t *testing.T) {
	h := startHub()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			c := hub.NewClient(nil, h, fmt.Sprintf("user-%d", n))
			h.Register(c)
			h.JoinRoom(c, "chat-1")
			h.Unregister(c)
		}(i)
	}

	wg.Wait()

	require.Eventually(t, func() bool {
		return h.ClientCount() == 0 && h.RoomSize("chat-1") == 0
	}, time.Second, 5*time.Millisecond)
}
