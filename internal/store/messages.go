package store

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/Dipeshkhadgi/hamrospace/internal/errs"
	"github.com/Dipeshkhadgi/hamrospace/internal/model"
)

// PageSize is the fixed message page size.
const PageSize = 20

func msgChatPrefix(chatID string) string { return msgPrefix + chatID + ":" }

// AppendMessage persists a message for chatID with the store clock as its
// creation time. The sender must be a current member of the chat.
func (s *Store) AppendMessage(chatID, sender, content string, attachments []model.Attachment) (model.Message, error) {
	now := s.now()
	msg := model.Message{
		ID:          uuid.NewString(),
		ChatID:      chatID,
		Sender:      sender,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   now.UnixMilli(),
	}

	err := s.update(func(txn *badger.Txn) error {
		chat, err := s.getChat(txn, chatID)
		if err != nil {
			return err
		}
		if !chat.HasMember(sender) {
			return fmt.Errorf("%w: not a member of this chat", errs.ErrForbidden)
		}
		return setJSON(txn, timeKey(msgChatPrefix(chatID), now, msg.ID), msg)
	})
	if err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

// ListMessages returns page (1-based) of the chat's history. Pages are read
// newest-first with a reverse scan, then flipped so each page is in
// ascending chronological order. totalPages is ceil(count/PageSize), 0 for
// an empty chat.
func (s *Store) ListMessages(chatID string, page int) ([]model.Message, int, error) {
	if page < 1 {
		page = 1
	}
	if _, err := s.GetChat(chatID); err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * PageSize
	messages := make([]model.Message, 0, PageSize)
	total := 0

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(msgChatPrefix(chatID))
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the newest possible key for this chat, then walk
		// backwards through its prefix.
		seek := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if total >= skip && len(messages) < PageSize {
				var msg model.Message
				if err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &msg)
				}); err != nil {
					return err
				}
				messages = append(messages, msg)
			}
			total++
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// Newest-first within the page; flip to ascending order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	totalPages := (total + PageSize - 1) / PageSize
	return messages, totalPages, nil
}

// AttachmentIDs collects the blob ids referenced by every message of the
// chat. Used by the delete cascade.
func (s *Store) AttachmentIDs(chatID string) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(msgChatPrefix(chatID))
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var msg model.Message
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			}); err != nil {
				return err
			}
			for _, a := range msg.Attachments {
				ids = append(ids, a.ID)
			}
		}
		return nil
	})
	return ids, err
}

func (s *Store) messageKeys(chatID string) ([]string, error) {
	keys := make([]string, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(msgChatPrefix(chatID))
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}
