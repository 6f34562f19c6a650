package store

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/Dipeshkhadgi/hamrospace/internal/model"
)

func notificationRecipientPrefix(recipient string) string {
	return notificationPrefix + recipient + ":"
}

// AppendNotification records a notification for recipient. The log is
// append-only; no read/consumed state is tracked.
func (s *Store) AppendNotification(recipient, sender, typ, message string) (model.Notification, error) {
	now := s.now()
	n := model.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Sender:    sender,
		Type:      typ,
		Message:   message,
		CreatedAt: now.UnixMilli(),
	}
	err := s.update(func(txn *badger.Txn) error {
		return setJSON(txn, timeKey(notificationRecipientPrefix(recipient), now, n.ID), n)
	})
	if err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

// ListNotifications returns the recipient's notifications, newest first.
func (s *Store) ListNotifications(recipient string) ([]model.Notification, error) {
	result := make([]model.Notification, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(notificationRecipientPrefix(recipient))
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var n model.Notification
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			}); err != nil {
				return err
			}
			result = append(result, n)
		}
		return nil
	})
	return result, err
}
