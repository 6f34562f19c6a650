// Package event defines the outbound realtime event names and the port the
// chat core uses to push them. The transport layer provides the
// implementation; the core only ever names concrete target principals.
package event

const (
	NewMessage      = "NEW_MESSAGE"
	NewMessageAlert = "NEW_MESSAGE_ALERT"
	NewAttachment   = "NEW_ATTACHMENT"
	Alert           = "ALERT"
	RefetchChats    = "REFETCH_CHATS"
)

// Emitter pushes an event to the live sessions of the given principals.
// Delivery is best-effort: offline principals are skipped silently and
// failures are never surfaced to the caller.
type Emitter interface {
	Emit(name string, members []string, payload any)
}

// Discard drops every event. Useful where no transport is attached.
type Discard struct{}

func (Discard) Emit(string, []string, any) {}
