package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habalhub/habal-hub/internal/domain/user"
	"github.com/habalhub/habal-hub/internal/service/session"
	"github.com/habalhub/habal-hub/pkg/logger"
	"github.com/habalhub/habal-hub/pkg/websocket"
)

func startHub(t *testing.T) *websocket.Hub {
	t.Helper()
	hub := websocket.NewHub(logger.Nop())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func registerClient(t *testing.T, hub *websocket.Hub, userID, role string, want int) *websocket.Client {
	t.Helper()
	c := websocket.NewClient(hub, nil, userID, role, logger.Nop())
	hub.Register(c)
	deadline := time.Now().Add(time.Second)
	for hub.ActiveConnections() < want {
		require.False(t, time.Now().After(deadline), "client never registered")
		time.Sleep(time.Millisecond)
	}
	return c
}

func receive(t *testing.T, c *websocket.Client) websocket.Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg websocket.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return websocket.Message{}
	}
}

func TestAuthChanged_ReachesUserAndAdmins(t *testing.T) {
	hub := startHub(t)
	n := NewNotifier(hub)

	riderID := uuid.New()
	rider := registerClient(t, hub, riderID.String(), "rider", 1)
	bystander := registerClient(t, hub, uuid.NewString(), "rider", 2)
	admin := registerClient(t, hub, uuid.NewString(), "admin", 3)

	n.AuthChanged(session.Event{
		Type: session.EventSignedIn,
		User: &user.User{ID: riderID, Role: user.RoleRider},
	})

	msg := receive(t, rider)
	assert.Equal(t, "signed_in", msg.Type)
	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, riderID.String(), data["user_id"])

	adminMsg := receive(t, admin)
	assert.Equal(t, "signed_in", adminMsg.Type)

	assert.Empty(t, bystander.Send)
}

func TestForwardAuth_DrainsUntilStreamCloses(t *testing.T) {
	hub := startHub(t)
	n := NewNotifier(hub)

	admin := registerClient(t, hub, uuid.NewString(), "admin", 1)

	events := make(chan session.Event, 1)
	done := make(chan struct{})
	go func() {
		n.ForwardAuth(events)
		close(done)
	}()

	events <- session.Event{
		Type: session.EventSignedOut,
		User: &user.User{ID: uuid.New(), Role: user.RoleDriver},
	}

	msg := receive(t, admin)
	assert.Equal(t, "signed_out", msg.Type)

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop on stream close")
	}
}
