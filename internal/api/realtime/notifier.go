package realtime

import (
	"github.com/habalhub/habal-hub/internal/domain/ride"
	"github.com/habalhub/habal-hub/internal/service/session"
	"github.com/habalhub/habal-hub/pkg/websocket"
)

// Notifier pushes ride lifecycle events over the websocket hub. Each
// event reaches the ride's rider and driver directly, any client
// subscribed to the ride, and the admin audience.
type Notifier struct {
	hub *websocket.Hub
}

func NewNotifier(hub *websocket.Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) RideUpdated(r *ride.Ride, event string) {
	data := map[string]interface{}{
		"ride_id":  r.ID.String(),
		"rider_id": r.RiderID.String(),
		"status":   string(r.Status),
		"fare":     r.Fare,
	}
	if r.DriverID != nil {
		data["driver_id"] = r.DriverID.String()
	}
	msg := websocket.Message{Type: event, Data: data}

	n.hub.SendToUser(r.RiderID.String(), msg)
	if r.DriverID != nil {
		n.hub.SendToUser(r.DriverID.String(), msg)
	} else if event == "ride_requested" {
		// Unassigned requests go to every driver so one can claim it.
		n.hub.BroadcastToRole("driver", msg)
	}

	n.hub.BroadcastToRide(r.ID.String(), msg)
	n.hub.BroadcastToRole("admin", msg)
}

// AuthChanged pushes an auth-state change to the affected user's own
// connections and the admin audience.
func (n *Notifier) AuthChanged(ev session.Event) {
	data := map[string]interface{}{}
	if ev.User != nil {
		data["user_id"] = ev.User.ID.String()
		data["role"] = string(ev.User.Role)
	}
	msg := websocket.Message{Type: string(ev.Type), Data: data}

	if ev.User != nil {
		n.hub.SendToUser(ev.User.ID.String(), msg)
	}
	n.hub.BroadcastToRole("admin", msg)
}

// ForwardAuth drains a session event stream into the hub. It returns
// when the stream closes.
func (n *Notifier) ForwardAuth(events <-chan session.Event) {
	for ev := range events {
		n.AuthChanged(ev)
	}
}
