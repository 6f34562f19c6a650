// Package chat holds the membership manager and the message pipeline: the
// two services that own chat entities and their realtime fan-out.
package chat

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/Dipeshkhadgi/hamrospace/internal/blob"
	"github.com/Dipeshkhadgi/hamrospace/internal/errs"
	"github.com/Dipeshkhadgi/hamrospace/internal/event"
	"github.com/Dipeshkhadgi/hamrospace/internal/model"
	"github.com/Dipeshkhadgi/hamrospace/internal/store"
)

// Manager owns chat entities and their membership invariants. Every
// membership mutation pushes events to the affected principals' live
// sessions so client chat lists stay current without polling.
type Manager struct {
	Store  *store.Store
	Events event.Emitter
	Blobs  blob.Store
	Log    *slog.Logger
}

type alertBody struct {
	ChatID  string   `json:"chatId,omitempty"`
	Message string   `json:"message"`
	Members []string `json:"members"`
}

type refetchBody struct {
	Members []string `json:"members"`
}

func (m *Manager) alert(chatID, message string, members []string) {
	m.Events.Emit(event.Alert, members, alertBody{ChatID: chatID, Message: message, Members: members})
}

func (m *Manager) refetch(members []string) {
	m.Events.Emit(event.RefetchChats, members, refetchBody{Members: members})
}

// CreateDirect materializes a two-member chat. Called by the relationship
// workflow on request acceptance.
func (m *Manager) CreateDirect(a, b string) (model.Chat, error) {
	chat, err := m.Store.CreateDirect(a, b)
	if err != nil {
		return model.Chat{}, err
	}
	m.refetch(chat.Members)
	return chat, nil
}

func (m *Manager) CreateGroup(creator, name string, members []string) (model.Chat, error) {
	chat, err := m.Store.CreateGroup(creator, name, members)
	if err != nil {
		return model.Chat{}, err
	}
	m.alert(chat.ID, fmt.Sprintf("Welcome to %s group", chat.Name), chat.Members)
	m.refetch(lo.Without(chat.Members, creator))
	return chat, nil
}

func (m *Manager) AddMembers(actor, chatID string, newMembers []string) (model.Chat, error) {
	chat, added, err := m.Store.AddMembers(actor, chatID, newMembers)
	if err != nil {
		return model.Chat{}, err
	}
	m.alert(chat.ID, fmt.Sprintf("%s has been added in the group", strings.Join(added, ", ")), chat.Members)
	m.refetch(chat.Members)
	return chat, nil
}

func (m *Manager) RemoveMember(actor, chatID, targetID string) (model.Chat, error) {
	chat, err := m.Store.RemoveMember(actor, chatID, targetID)
	if err != nil {
		return model.Chat{}, err
	}
	m.alert(chat.ID, fmt.Sprintf("%s has been removed from the group", targetID), chat.Members)
	// The removed member is part of the affected set too.
	m.refetch(append(append([]string{}, chat.Members...), targetID))
	return chat, nil
}

func (m *Manager) Leave(principalID, chatID string) (model.Chat, error) {
	chat, err := m.Store.Leave(principalID, chatID)
	if err != nil {
		return model.Chat{}, err
	}
	m.alert(chat.ID, fmt.Sprintf("%s has left the group", principalID), chat.Members)
	m.refetch(append(append([]string{}, chat.Members...), principalID))
	return chat, nil
}

func (m *Manager) Rename(actor, chatID, name string) (model.Chat, error) {
	chat, err := m.Store.Rename(actor, chatID, name)
	if err != nil {
		return model.Chat{}, err
	}
	m.refetch(chat.Members)
	return chat, nil
}

// Delete runs the chat deletion cascade: mark the chat as deleting, release
// attachment blobs, then purge messages and the chat record. The blob
// release is best-effort; a failure there is logged and the cascade
// continues, which can orphan blobs but never resurrects the chat.
func (m *Manager) Delete(actor, chatID string) error {
	chat, err := m.Store.MarkDeleting(actor, chatID)
	if err != nil {
		return err
	}

	ids, err := m.Store.AttachmentIDs(chatID)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		if err := m.Blobs.Delete(ids); err != nil {
			m.Log.Warn("attachment release failed", "chatId", chatID, "err", err)
		}
	}

	if err := m.Store.Purge(chatID); err != nil {
		return err
	}
	m.refetch(chat.Members)
	return nil
}

func (m *Manager) Details(principalID, chatID string) (model.Chat, error) {
	chat, err := m.Store.GetChat(chatID)
	if err != nil {
		return model.Chat{}, err
	}
	if !chat.HasMember(principalID) {
		return model.Chat{}, errs.ErrForbidden
	}
	return chat, nil
}

func (m *Manager) MyChats(principalID string) ([]model.Chat, error) {
	return m.Store.ListChatsFor(principalID)
}

func (m *Manager) MyGroups(principalID string) ([]model.Chat, error) {
	return m.Store.ListGroupsCreatedBy(principalID)
}
