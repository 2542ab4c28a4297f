package broadcast

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHub_PublishReachesTopicSubscribersOnly(t *testing.T) {
	// Given subscribers on two different topics
	hub := NewHub(testLogger())
	a := hub.Subscribe(Topic("AAAAAA"))
	b := hub.Subscribe(Topic("BBBBBB"))

	// When a payload is published to one topic
	hub.Publish(Topic("AAAAAA"), map[string]string{"hello": "world"})

	// Then only that topic's subscriber receives it, JSON-encoded
	require.JSONEq(t, `{"hello":"world"}`, string(<-a.C))
	select {
	case msg := <-b.C:
		t.Fatalf("unexpected message on other topic: %s", msg)
	default:
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(testLogger())
	sub := hub.Subscribe(Topic("AAAAAA"))
	require.Equal(t, 1, hub.SubscriberCount(Topic("AAAAAA")))

	hub.Unsubscribe(sub)

	_, open := <-sub.C
	require.False(t, open)
	require.Equal(t, 0, hub.SubscriberCount(Topic("AAAAAA")))

	// Unsubscribing twice must not panic on a double close
	hub.Unsubscribe(sub)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	// Given a subscriber that never drains its channel
	hub := NewHub(testLogger())
	sub := hub.Subscribe(Topic("AAAAAA"))

	// When far more messages are published than the buffer holds
	for i := 0; i < SubscriberBuffer*2; i++ {
		hub.Publish(Topic("AAAAAA"), i)
	}

	// Then the publisher never blocked and the buffer holds the earliest
	// messages with the rest dropped
	require.Len(t, sub.C, SubscriberBuffer)
	require.Equal(t, "0", string(<-sub.C))
}
