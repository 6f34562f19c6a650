package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/Dipeshkhadgi/hamrospace/internal/errs"
	"github.com/Dipeshkhadgi/hamrospace/internal/model"
)

func requestKey(id string) string { return reqPrefix + id }

// pairKey is order-independent: one pending request is allowed per pair of
// principals regardless of who asked first.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return reqPairPrefix + a + "|" + b
}

// CreateRequest creates a pending relationship request. At most one pending
// request may exist per pair; the pair index is written in the same
// transaction as the request, so concurrent duplicates lose.
func (s *Store) CreateRequest(sender, receiver string) (model.FriendRequest, error) {
	if sender == "" || receiver == "" || sender == receiver {
		return model.FriendRequest{}, fmt.Errorf("%w: cannot send a request to yourself", errs.ErrInvalidArgument)
	}

	now := s.now().UnixMilli()
	req := model.FriendRequest{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Status:    model.RequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.update(func(txn *badger.Txn) error {
		pk := pairKey(sender, receiver)
		if _, err := txn.Get([]byte(pk)); err == nil {
			return fmt.Errorf("%w: a pending request already exists for this pair", errs.ErrInvalidState)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set([]byte(pk), []byte(req.ID)); err != nil {
			return err
		}
		return setJSON(txn, requestKey(req.ID), req)
	})
	if err != nil {
		return model.FriendRequest{}, err
	}
	return req, nil
}

func (s *Store) GetRequest(id string) (model.FriendRequest, error) {
	var req model.FriendRequest
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, requestKey(id), &req)
	})
	return req, err
}

// ResolveRequest transitions a pending request to accepted or rejected.
// Only the receiver may resolve it; a terminal request cannot be resolved
// again. The pending pair index is released in the same transaction.
func (s *Store) ResolveRequest(id, actor string, accept bool) (model.FriendRequest, error) {
	var req model.FriendRequest
	err := s.update(func(txn *badger.Txn) error {
		if err := getJSON(txn, requestKey(id), &req); err != nil {
			return err
		}
		if req.Receiver != actor {
			return fmt.Errorf("%w: only the receiver can resolve a request", errs.ErrForbidden)
		}
		if req.Status != model.RequestPending {
			return fmt.Errorf("%w: request already %s", errs.ErrInvalidState, req.Status)
		}

		if accept {
			req.Status = model.RequestAccepted
		} else {
			req.Status = model.RequestRejected
		}
		req.UpdatedAt = s.now().UnixMilli()

		if err := txn.Delete([]byte(pairKey(req.Sender, req.Receiver))); err != nil {
			return err
		}
		return setJSON(txn, requestKey(id), req)
	})
	if err != nil {
		return model.FriendRequest{}, err
	}
	return req, nil
}
