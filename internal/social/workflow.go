// Package social manages the friend-request lifecycle and the notification
// log it produces.
package social

import (
	"fmt"
	"log/slog"

	"github.com/Dipeshkhadgi/hamrospace/internal/chat"
	"github.com/Dipeshkhadgi/hamrospace/internal/model"
	"github.com/Dipeshkhadgi/hamrospace/internal/store"
)

// Workflow drives relationship requests: pending -> accepted | rejected.
// Acceptance materializes a direct chat through the membership manager.
type Workflow struct {
	Store *store.Store
	Chats *chat.Manager
	Log   *slog.Logger
}

// SendRequest opens a pending request from sender to receiver and notifies
// the receiver. At most one pending request may exist per pair of
// principals, in either direction.
func (w *Workflow) SendRequest(sender, receiver string) (model.FriendRequest, error) {
	req, err := w.Store.CreateRequest(sender, receiver)
	if err != nil {
		return model.FriendRequest{}, err
	}

	if _, err := w.Store.AppendNotification(receiver, sender, model.NotificationFriendRequest,
		fmt.Sprintf("%s sent you a friend request", sender)); err != nil {
		w.Log.Warn("notification append failed", "requestId", req.ID, "err", err)
	}
	return req, nil
}

// Accept transitions a pending request to accepted, creates the direct chat
// and notifies the original sender. Accepting an already-resolved request
// fails and never creates a second chat.
func (w *Workflow) Accept(requestID, actor string) (model.FriendRequest, error) {
	req, err := w.Store.ResolveRequest(requestID, actor, true)
	if err != nil {
		return model.FriendRequest{}, err
	}

	if _, err := w.Chats.CreateDirect(req.Sender, req.Receiver); err != nil {
		return model.FriendRequest{}, err
	}
	if _, err := w.Store.AppendNotification(req.Sender, req.Receiver, model.NotificationRequestAccepted,
		fmt.Sprintf("%s accepted your friend request", req.Receiver)); err != nil {
		w.Log.Warn("notification append failed", "requestId", req.ID, "err", err)
	}
	return req, nil
}

// Reject transitions a pending request to rejected. No chat side effect.
func (w *Workflow) Reject(requestID, actor string) (model.FriendRequest, error) {
	return w.Store.ResolveRequest(requestID, actor, false)
}

// Notifications returns the recipient's append-only notification log,
// newest first.
func (w *Workflow) Notifications(recipient string) ([]model.Notification, error) {
	return w.Store.ListNotifications(recipient)
}
