package hub

import "encoding/json"

// Frame is the wire shape of every core-to-client realtime event.
type Frame struct {
	Event string `json:"event"`
	Body  any    `json:"body,omitempty"`
}

// Emitter implements the outbound-event port on top of the registry.
type Emitter struct {
	Hub *Hub
}

func (e *Emitter) Emit(name string, members []string, payload any) {
	out, err := json.Marshal(Frame{Event: name, Body: payload})
	if err != nil {
		return
	}
	e.Hub.Send(members, out)
}
