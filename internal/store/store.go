// Package store persists the durable chat-core entities (chats, messages,
// relationship requests, notifications) in BadgerDB and enforces their
// state-machine invariants inside single transactions.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Dipeshkhadgi/hamrospace/internal/errs"
)

// Key layout. Message and notification keys embed a zero-padded UnixNano so
// lexicographic prefix iteration is chronological; the trailing uuid breaks
// same-nanosecond ties.
//
//	chat:{chatID}
//	msg:{chatID}:{unixnano %019d}:{messageID}
//	req:{requestID}
//	reqp:{pairKey}                  -> pending requestID for the pair
//	ntf:{recipient}:{unixnano %019d}:{notificationID}
const (
	chatPrefix         = "chat:"
	msgPrefix          = "msg:"
	reqPrefix          = "req:"
	reqPairPrefix      = "reqp:"
	notificationPrefix = "ntf:"
)

const conflictRetries = 3

type Store struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func New(db *badger.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log, now: time.Now}
}

// NewWithClock injects the store clock. Tests use it to pin timestamps.
func NewWithClock(db *badger.DB, log *slog.Logger, now func() time.Time) *Store {
	s := New(db, log)
	s.now = now
	return s
}

// Open opens (or creates) the badger database at dir.
func Open(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	return badger.Open(opts)
}

// update runs fn in a read-write transaction, retrying a bounded number of
// times when badger reports a serialization conflict. Together with the
// Version field on Chat this keeps concurrent mutations on one chat from
// losing updates.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getJSON[T any](txn *badger.Txn, key string, out *T) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errs.ErrNotFound
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

func timeKey(prefix string, t time.Time, id string) string {
	return fmt.Sprintf("%s%019d:%s", prefix, t.UnixNano(), id)
}
