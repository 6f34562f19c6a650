package model

// Principal is the read-only projection of a user owned by the profile
// subsystem. Only the fields the chat core needs are carried here.
type Principal struct {
	ID     string
	Name   string
	Avatar string
}

type ChatKind string

const (
	ChatDirect ChatKind = "direct"
	ChatGroup  ChatKind = "group"
)

const (
	// GroupMinMembers is the steady-state lower bound for a group chat,
	// creator included.
	GroupMinMembers = 3
	GroupMaxMembers = 100
)

type Chat struct {
	ID      string   `json:"id"`
	Kind    ChatKind `json:"kind"`
	Name    string   `json:"name,omitempty"`    // group only
	Creator string   `json:"creator,omitempty"` // group only, always a current member
	Members []string `json:"members"`
	// Version increments on every mutation so concurrent writers on the
	// same chat cannot silently lose an update.
	Version   int   `json:"version"`
	Deleting  bool  `json:"deleting,omitempty"`
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

func (c Chat) IsGroup() bool { return c.Kind == ChatGroup }

func (c Chat) HasMember(principalID string) bool {
	for _, m := range c.Members {
		if m == principalID {
			return true
		}
	}
	return false
}

type Attachment struct {
	ID  string `json:"publicId"`
	URL string `json:"url"`
}

// Message is immutable once created. CreatedAt (store clock, millis) is the
// sole ordering key within a chat.
type Message struct {
	ID          string       `json:"id"`
	ChatID      string       `json:"chatId"`
	Sender      string       `json:"sender"`
	Content     string       `json:"content,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   int64        `json:"createdAt"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

type FriendRequest struct {
	ID        string        `json:"id"`
	Sender    string        `json:"sender"`
	Receiver  string        `json:"receiver"`
	Status    RequestStatus `json:"status"`
	CreatedAt int64         `json:"createdAt"`
	UpdatedAt int64         `json:"updatedAt"`
}

type Notification struct {
	ID        string `json:"id"`
	Recipient string `json:"recipientId"`
	Sender    string `json:"senderId"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"`
}

// Notification type tags produced by the relationship workflow.
const (
	NotificationFriendRequest   = "friend_request"
	NotificationRequestAccepted = "request_accepted"
)
