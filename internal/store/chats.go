package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Dipeshkhadgi/hamrospace/internal/errs"
	"github.com/Dipeshkhadgi/hamrospace/internal/model"
)

func chatKey(chatID string) string { return chatPrefix + chatID }

func (s *Store) getChat(txn *badger.Txn, chatID string) (model.Chat, error) {
	var chat model.Chat
	if err := getJSON(txn, chatKey(chatID), &chat); err != nil {
		return model.Chat{}, err
	}
	if chat.Deleting {
		// A chat mid-cascade is gone as far as callers are concerned.
		return model.Chat{}, errs.ErrNotFound
	}
	return chat, nil
}

func (s *Store) putChat(txn *badger.Txn, chat model.Chat) error {
	return setJSON(txn, chatKey(chat.ID), chat)
}

// CreateDirect creates a two-member chat with no creator semantics. Nothing
// prevents a second direct chat for the same pair; callers that need
// exactly-one (the relationship workflow) guard at the request level.
func (s *Store) CreateDirect(a, b string) (model.Chat, error) {
	if a == "" || b == "" || a == b {
		return model.Chat{}, fmt.Errorf("%w: direct chat needs two distinct members", errs.ErrInvalidArgument)
	}

	now := s.now().UnixMilli()
	chat := model.Chat{
		ID:        uuid.NewString(),
		Kind:      model.ChatDirect,
		Members:   []string{a, b},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.update(func(txn *badger.Txn) error {
		return s.putChat(txn, chat)
	}); err != nil {
		return model.Chat{}, err
	}
	return chat, nil
}

// CreateGroup creates a group chat. The creator is implicitly a member;
// members must contribute at least two further principals.
func (s *Store) CreateGroup(creator, name string, members []string) (model.Chat, error) {
	if creator == "" || strings.TrimSpace(name) == "" {
		return model.Chat{}, fmt.Errorf("%w: creator and name are required", errs.ErrInvalidArgument)
	}

	all := lo.Uniq(append([]string{creator}, members...))
	if len(all) < model.GroupMinMembers {
		return model.Chat{}, fmt.Errorf("%w: group chat must have at least %d members", errs.ErrInvalidArgument, model.GroupMinMembers)
	}
	if len(all) > model.GroupMaxMembers {
		return model.Chat{}, fmt.Errorf("%w: group members limit reached", errs.ErrInvalidArgument)
	}

	now := s.now().UnixMilli()
	chat := model.Chat{
		ID:        uuid.NewString(),
		Kind:      model.ChatGroup,
		Name:      strings.TrimSpace(name),
		Creator:   creator,
		Members:   all,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.update(func(txn *badger.Txn) error {
		return s.putChat(txn, chat)
	}); err != nil {
		return model.Chat{}, err
	}
	return chat, nil
}

func (s *Store) GetChat(chatID string) (model.Chat, error) {
	var chat model.Chat
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		chat, err = s.getChat(txn, chatID)
		return err
	})
	return chat, err
}

// ListChatsFor returns every chat the principal is a member of, newest
// activity first.
func (s *Store) ListChatsFor(principalID string) ([]model.Chat, error) {
	chats, err := s.scanChats(func(c model.Chat) bool {
		return c.HasMember(principalID)
	})
	return chats, err
}

// ListGroupsCreatedBy returns the group chats the principal created.
func (s *Store) ListGroupsCreatedBy(principalID string) ([]model.Chat, error) {
	return s.scanChats(func(c model.Chat) bool {
		return c.IsGroup() && c.Creator == principalID
	})
}

func (s *Store) scanChats(keep func(model.Chat) bool) ([]model.Chat, error) {
	result := make([]model.Chat, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chatPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(chatPrefix)); it.ValidForPrefix([]byte(chatPrefix)); it.Next() {
			var chat model.Chat
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &chat)
			}); err != nil {
				return err
			}
			if !chat.Deleting && keep(chat) {
				result = append(result, chat)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt > result[j].UpdatedAt })
	return result, nil
}

// mutateGroup loads the chat, applies fn and persists the result with a
// version bump, all inside one transaction.
func (s *Store) mutateGroup(chatID string, fn func(*model.Chat) error) (model.Chat, error) {
	var chat model.Chat
	err := s.update(func(txn *badger.Txn) error {
		var err error
		chat, err = s.getChat(txn, chatID)
		if err != nil {
			return err
		}
		if err := fn(&chat); err != nil {
			return err
		}
		chat.Version++
		chat.UpdatedAt = s.now().UnixMilli()
		return s.putChat(txn, chat)
	})
	if err != nil {
		return model.Chat{}, err
	}
	return chat, nil
}

// AddMembers adds newMembers to a group chat. Creator-only; duplicates
// against current membership are dropped; the result may not exceed the
// group cap. Returns the updated chat and the ids actually added.
func (s *Store) AddMembers(actor, chatID string, newMembers []string) (model.Chat, []string, error) {
	var added []string
	chat, err := s.mutateGroup(chatID, func(chat *model.Chat) error {
		if !chat.IsGroup() {
			return fmt.Errorf("%w: not a group chat", errs.ErrInvalidArgument)
		}
		if chat.Creator != actor {
			return fmt.Errorf("%w: only the creator can add members", errs.ErrForbidden)
		}

		added = lo.Filter(lo.Uniq(newMembers), func(id string, _ int) bool {
			return id != "" && !chat.HasMember(id)
		})
		if len(added) == 0 {
			return fmt.Errorf("%w: no new members to add", errs.ErrInvalidArgument)
		}
		if len(chat.Members)+len(added) > model.GroupMaxMembers {
			return fmt.Errorf("%w: group members limit reached", errs.ErrInvalidArgument)
		}
		chat.Members = append(chat.Members, added...)
		return nil
	})
	if err != nil {
		return model.Chat{}, nil, err
	}
	return chat, added, nil
}

// RemoveMember removes targetID from a group chat. Creator-only; the group
// may not shrink below the minimum.
func (s *Store) RemoveMember(actor, chatID, targetID string) (model.Chat, error) {
	return s.mutateGroup(chatID, func(chat *model.Chat) error {
		if !chat.IsGroup() {
			return fmt.Errorf("%w: not a group chat", errs.ErrInvalidArgument)
		}
		if chat.Creator != actor {
			return fmt.Errorf("%w: only the creator can remove members", errs.ErrForbidden)
		}
		if !chat.HasMember(targetID) {
			return fmt.Errorf("%w: not a member of this group", errs.ErrInvalidArgument)
		}
		if len(chat.Members)-1 < model.GroupMinMembers {
			return fmt.Errorf("%w: group must have at least %d members", errs.ErrInvalidArgument, model.GroupMinMembers)
		}
		chat.Members = lo.Without(chat.Members, targetID)
		return nil
	})
}

// Leave removes the principal from a group chat it is a member of. When the
// creator leaves, the creator role passes deterministically to the first
// remaining member.
func (s *Store) Leave(principalID, chatID string) (model.Chat, error) {
	return s.mutateGroup(chatID, func(chat *model.Chat) error {
		if !chat.IsGroup() {
			return fmt.Errorf("%w: not a group chat", errs.ErrInvalidArgument)
		}
		if !chat.HasMember(principalID) {
			return fmt.Errorf("%w: not a member of this group", errs.ErrForbidden)
		}

		remaining := lo.Without(chat.Members, principalID)
		if len(remaining) < model.GroupMinMembers {
			return fmt.Errorf("%w: group must have at least %d members", errs.ErrInvalidArgument, model.GroupMinMembers)
		}
		if chat.Creator == principalID {
			chat.Creator = remaining[0]
		}
		chat.Members = remaining
		return nil
	})
}

// Rename sets a group chat's display name. Creator-only.
func (s *Store) Rename(actor, chatID, name string) (model.Chat, error) {
	return s.mutateGroup(chatID, func(chat *model.Chat) error {
		if !chat.IsGroup() {
			return fmt.Errorf("%w: not a group chat", errs.ErrInvalidArgument)
		}
		if chat.Creator != actor {
			return fmt.Errorf("%w: only the creator can rename the group", errs.ErrForbidden)
		}
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: name is required", errs.ErrInvalidArgument)
		}
		chat.Name = strings.TrimSpace(name)
		return nil
	})
}

// MarkDeleting is the first step of the delete cascade: it authorizes the
// delete and persists an in-progress marker so a crash mid-cascade cannot
// resurrect a half-deleted chat. Group chats are creator-only; direct chats
// may be deleted by either member.
func (s *Store) MarkDeleting(actor, chatID string) (model.Chat, error) {
	var chat model.Chat
	err := s.update(func(txn *badger.Txn) error {
		var err error
		chat, err = s.getChat(txn, chatID)
		if err != nil {
			return err
		}
		if chat.IsGroup() && chat.Creator != actor {
			return fmt.Errorf("%w: only the creator can delete the group", errs.ErrForbidden)
		}
		if !chat.IsGroup() && !chat.HasMember(actor) {
			return fmt.Errorf("%w: not a member of this chat", errs.ErrForbidden)
		}
		chat.Deleting = true
		chat.Version++
		chat.UpdatedAt = s.now().UnixMilli()
		return s.putChat(txn, chat)
	})
	if err != nil {
		return model.Chat{}, err
	}
	return chat, nil
}

// Purge removes every message of a marked chat and finally the chat record
// itself. Attachment blobs must have been released before calling this.
func (s *Store) Purge(chatID string) error {
	keys, err := s.messageKeys(chatID)
	if err != nil {
		return err
	}

	// Badger caps txn size; delete messages in modest batches.
	const batch = 256
	for len(keys) > 0 {
		n := min(batch, len(keys))
		chunk := keys[:n]
		keys = keys[n:]
		if err := s.update(func(txn *badger.Txn) error {
			for _, k := range chunk {
				if err := txn.Delete([]byte(k)); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}
	}

	return s.update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(chatKey(chatID)))
	})
}
