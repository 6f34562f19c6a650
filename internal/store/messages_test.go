package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dipeshkhadgi/hamrospace/internal/errs"
	"github.com/Dipeshkhadgi/hamrospace/internal/model"
)

func TestAppendMessage(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	chat, err := s.CreateGroup("a", "g", []string{"b", "c"})
	req.NoError(err)

	msg, err := s.AppendMessage(chat.ID, "a", "hello", nil)
	req.NoError(err)
	req.Equal(chat.ID, msg.ChatID)
	req.Equal("a", msg.Sender)
	req.NotZero(msg.CreatedAt)

	_, err = s.AppendMessage("missing", "a", "hello", nil)
	req.ErrorIs(err, errs.ErrNotFound)

	_, err = s.AppendMessage(chat.ID, "outsider", "hello", nil)
	req.ErrorIs(err, errs.ErrForbidden)
}

func TestListMessages_Pagination(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	chat, err := s.CreateGroup("a", "g", []string{"b", "c"})
	req.NoError(err)

	const total = 45
	for i := 0; i < total; i++ {
		_, err := s.AppendMessage(chat.ID, "a", fmt.Sprintf("msg-%02d", i), nil)
		req.NoError(err)
	}

	// Page 1 holds the 20 newest messages, ascending within the page.
	page1, totalPages, err := s.ListMessages(chat.ID, 1)
	req.NoError(err)
	req.Equal(3, totalPages)
	req.Len(page1, PageSize)
	req.Equal("msg-25", page1[0].Content)
	req.Equal("msg-44", page1[len(page1)-1].Content)

	page2, _, err := s.ListMessages(chat.ID, 2)
	req.NoError(err)
	req.Len(page2, PageSize)
	req.Equal("msg-05", page2[0].Content)
	req.Equal("msg-24", page2[len(page2)-1].Content)

	page3, _, err := s.ListMessages(chat.ID, 3)
	req.NoError(err)
	req.Len(page3, 5)
	req.Equal("msg-00", page3[0].Content)
	req.Equal("msg-04", page3[len(page3)-1].Content)

	// Pages concatenate (oldest page first) to the full gapless history.
	history := append(append(append([]string{}, contents(page3)...), contents(page2)...), contents(page1)...)
	req.Len(history, total)
	for i, c := range history {
		req.Equal(fmt.Sprintf("msg-%02d", i), c)
	}

	empty, _, err := s.ListMessages(chat.ID, 4)
	req.NoError(err)
	req.Empty(empty)
}

func contents(msgs []model.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}

func TestListMessages_EmptyChat(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	chat, err := s.CreateDirect("a", "b")
	req.NoError(err)

	msgs, totalPages, err := s.ListMessages(chat.ID, 1)
	req.NoError(err)
	req.Empty(msgs)
	req.Zero(totalPages)

	_, _, err = s.ListMessages("missing", 1)
	req.ErrorIs(err, errs.ErrNotFound)
}

func TestListMessages_ChronologicalOrderWithinPage(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	chat, err := s.CreateDirect("a", "b")
	req.NoError(err)

	for i := 0; i < 5; i++ {
		_, err := s.AppendMessage(chat.ID, "a", fmt.Sprintf("%d", i), nil)
		req.NoError(err)
	}

	msgs, totalPages, err := s.ListMessages(chat.ID, 1)
	req.NoError(err)
	req.Equal(1, totalPages)
	req.Len(msgs, 5)
	for i := 1; i < len(msgs); i++ {
		req.GreaterOrEqual(msgs[i].CreatedAt, msgs[i-1].CreatedAt)
	}
}
