package chat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dipeshkhadgi/hamrospace/internal/errs"
	"github.com/Dipeshkhadgi/hamrospace/internal/event"
	"github.com/Dipeshkhadgi/hamrospace/internal/model"
)

func TestManager_CreateGroupEmitsWelcome(t *testing.T) {
	req := require.New(t)
	m, rec, _ := newTestManager(t)

	chat, err := m.CreateGroup("a", "trio", []string{"b", "c"})
	req.NoError(err)

	alerts := rec.named(event.Alert)
	req.Len(alerts, 1)
	req.ElementsMatch(chat.Members, alerts[0].members)

	refetches := rec.named(event.RefetchChats)
	req.Len(refetches, 1)
	req.ElementsMatch([]string{"b", "c"}, refetches[0].members)
}

func TestManager_AddMembersNotifiesFullNewSet(t *testing.T) {
	req := require.New(t)
	m, rec, _ := newTestManager(t)

	chat, err := m.CreateGroup("a", "g", []string{"b", "c"})
	req.NoError(err)
	rec.events = nil

	updated, err := m.AddMembers("a", chat.ID, []string{"d"})
	req.NoError(err)
	req.Len(updated.Members, 4)

	refetches := rec.named(event.RefetchChats)
	req.Len(refetches, 1)
	req.ElementsMatch(updated.Members, refetches[0].members)
}

func TestManager_ForbiddenMutationEmitsNothing(t *testing.T) {
	req := require.New(t)
	m, rec, _ := newTestManager(t)

	chat, err := m.CreateGroup("a", "g", []string{"b", "c"})
	req.NoError(err)
	rec.events = nil

	_, err = m.AddMembers("b", chat.ID, []string{"d"})
	req.ErrorIs(err, errs.ErrForbidden)
	req.Empty(rec.events)
}

func TestManager_RemovedMemberIsInAffectedSet(t *testing.T) {
	req := require.New(t)
	m, rec, _ := newTestManager(t)

	chat, err := m.CreateGroup("a", "g", []string{"b", "c", "d"})
	req.NoError(err)
	rec.events = nil

	_, err = m.RemoveMember("a", chat.ID, "d")
	req.NoError(err)

	refetches := rec.named(event.RefetchChats)
	req.Len(refetches, 1)
	req.Contains(refetches[0].members, "d")
}

func TestManager_DeleteCascadeReleasesBlobs(t *testing.T) {
	req := require.New(t)
	m, rec, blobs := newTestManager(t)
	pipeline := &Pipeline{Store: m.Store, Events: rec, Blobs: blobs, Log: m.Log}

	chat, err := m.CreateGroup("a", "g", []string{"b", "c"})
	req.NoError(err)

	_, err = pipeline.Send(chat.ID, "a", "", []model.Attachment{{ID: "blob-1"}})
	req.NoError(err)
	rec.events = nil

	req.NoError(m.Delete("a", chat.ID))
	req.Equal([]string{"blob-1"}, blobs.deleted)

	_, err = m.Details("a", chat.ID)
	req.ErrorIs(err, errs.ErrNotFound)

	refetches := rec.named(event.RefetchChats)
	req.Len(refetches, 1)
	req.ElementsMatch([]string{"a", "b", "c"}, refetches[0].members)
}

func TestManager_DirectChatDeleteByMember(t *testing.T) {
	req := require.New(t)
	m, _, _ := newTestManager(t)

	chat, err := m.CreateDirect("a", "b")
	req.NoError(err)

	req.ErrorIs(m.Delete("outsider", chat.ID), errs.ErrForbidden)
	req.NoError(m.Delete("b", chat.ID))
}

func TestManager_DetailsRequiresMembership(t *testing.T) {
	req := require.New(t)
	m, _, _ := newTestManager(t)

	chat, err := m.CreateDirect("a", "b")
	req.NoError(err)

	_, err = m.Details("outsider", chat.ID)
	req.ErrorIs(err, errs.ErrForbidden)

	got, err := m.Details("b", chat.ID)
	req.NoError(err)
	req.Equal(chat.ID, got.ID)
}
