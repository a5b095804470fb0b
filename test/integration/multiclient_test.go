package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parlorchat/parlor/test/testhelpers"
)

// TestParticipantCountTracksJoins verifies every member converges on the
// correct participant count as clients join one by one.
func TestParticipantCountTracksJoins(t *testing.T) {
	relay := testhelpers.StartRelay(t, nil)

	const n = 4
	conns := make([]*websocket.Conn, 0, n)

	for i := 0; i < n; i++ {
		conn := testhelpers.Dial(t, relay.WSURL())
		testhelpers.Join(t, conn, "crowd", fmt.Sprintf("user-%d", i))

		// Everyone already present sees the new count.
		for _, prev := range conns {
			frame := testhelpers.ExpectFrame(t, prev, "participants")
			if frame["count"] != float64(i+1) {
				t.Errorf("After join %d: expected count %d, got %v", i, i+1, frame["count"])
			}
		}
		conns = append(conns, conn)
	}

	if got := relay.Hub.Registry().MemberCount("crowd"); got != n {
		t.Errorf("Expected %d members in registry, got %d", n, got)
	}
}

// TestCommitFanOutToManyClients verifies a single commit reaches every room
// member exactly once.
func TestCommitFanOutToManyClients(t *testing.T) {
	relay := testhelpers.StartRelay(t, nil)

	const n = 5
	conns := make([]*websocket.Conn, 0, n)
	for i := 0; i < n; i++ {
		conn := testhelpers.Dial(t, relay.WSURL())
		testhelpers.Join(t, conn, "fanout", fmt.Sprintf("user-%d", i))
		for _, prev := range conns {
			testhelpers.ExpectFrame(t, prev, "participants")
		}
		conns = append(conns, conn)
	}

	testhelpers.SendEvent(t, conns[0], map[string]any{"type": "commit", "text": "to everyone"})

	for i, conn := range conns {
		frame := testhelpers.ExpectFrame(t, conn, "message")
		msg := frame["message"].(map[string]any)
		if msg["from"] != "user-0" || msg["text"] != "to everyone" {
			t.Errorf("Client %d received unexpected message: %v", i, msg)
		}
		testhelpers.ExpectNoFrame(t, conn, 200*time.Millisecond)
	}
}

// TestPerSenderOrderingPreserved verifies messages from one sender arrive at
// a peer in the order they were sent.
func TestPerSenderOrderingPreserved(t *testing.T) {
	relay := testhelpers.StartRelay(t, nil)

	alice := testhelpers.Dial(t, relay.WSURL())
	bob := testhelpers.Dial(t, relay.WSURL())
	testhelpers.Join(t, alice, "ordered", "alice")
	testhelpers.Join(t, bob, "ordered", "bob")
	testhelpers.ExpectFrame(t, alice, "participants")

	const n = 10
	for i := 0; i < n; i++ {
		testhelpers.SendEvent(t, alice, map[string]any{"type": "commit", "text": fmt.Sprintf("msg-%d", i)})
	}

	for i := 0; i < n; i++ {
		frame := testhelpers.ExpectFrame(t, bob, "message")
		msg := frame["message"].(map[string]any)
		if want := fmt.Sprintf("msg-%d", i); msg["text"] != want {
			t.Fatalf("Out of order delivery: expected %q at position %d, got %v", want, i, msg["text"])
		}
	}
}
