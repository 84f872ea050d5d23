package realtime

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConn() *Conn {
	return &Conn{send: make(chan Event, sendBuffer)}
}

func TestHubPublishReachesSubscribers(t *testing.T) {
	h := NewHub(testLogger)

	alice := testConn()
	bob := testConn()
	h.Subscribe(alice, UserChannel("u-alice"), OrgChannel("o1"))
	h.Subscribe(bob, UserChannel("u-bob"), OrgChannel("o1"))

	h.Publish(UserChannel("u-alice"), Event{Type: "reminder"})
	require.Len(t, alice.send, 1)
	assert.Empty(t, bob.send)

	h.Publish(OrgChannel("o1"), Event{Type: "reminder"})
	assert.Len(t, alice.send, 2)
	assert.Len(t, bob.send, 1)
}

func TestHubPublishWithoutSubscribersIsNoop(t *testing.T) {
	h := NewHub(testLogger)
	// Must not panic or error.
	h.Publish(UserChannel("nobody"), Event{Type: "reminder"})
	assert.Equal(t, 0, h.Subscribers(UserChannel("nobody")))
}

func TestHubRemoveDropsAllRegistrations(t *testing.T) {
	h := NewHub(testLogger)

	c := testConn()
	h.Subscribe(c, UserChannel("u1"), OrgChannel("o1"))
	assert.Equal(t, 1, h.Subscribers(UserChannel("u1")))
	assert.Equal(t, 1, h.Subscribers(OrgChannel("o1")))

	h.remove(c)
	assert.Equal(t, 0, h.Subscribers(UserChannel("u1")))
	assert.Equal(t, 0, h.Subscribers(OrgChannel("o1")))
	assert.Empty(t, c.subscribed)

	// Removing twice is harmless.
	h.remove(c)
}

func TestHubSlowConsumerMissesEvents(t *testing.T) {
	h := NewHub(testLogger)

	c := &Conn{send: make(chan Event, 1)}
	h.Subscribe(c, UserChannel("u1"))

	h.Publish(UserChannel("u1"), Event{Type: "reminder"})
	h.Publish(UserChannel("u1"), Event{Type: "reminder"})

	// Buffer holds one; the second publish is dropped, not blocked on.
	assert.Len(t, c.send, 1)
}

func TestChannelKeys(t *testing.T) {
	assert.Equal(t, "user:u1", UserChannel("u1"))
	assert.Equal(t, "org:o1", OrgChannel("o1"))
	assert.NotEqual(t, UserChannel("x"), OrgChannel("x"))
}
