package chat

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Dipeshkhadgi/hamrospace/internal/blob"
	"github.com/Dipeshkhadgi/hamrospace/internal/errs"
	"github.com/Dipeshkhadgi/hamrospace/internal/event"
	"github.com/Dipeshkhadgi/hamrospace/internal/model"
	"github.com/Dipeshkhadgi/hamrospace/internal/store"
)

// Pipeline persists messages and fans them out to chat members. Persistence
// is the success criterion: once a message is stored, delivery failures are
// never reported back.
type Pipeline struct {
	Store  *store.Store
	Events event.Emitter
	Blobs  blob.Store
	Log    *slog.Logger
}

type messageBody struct {
	Message model.Message `json:"message"`
	ChatID  string        `json:"chatId"`
}

type alertOnlyBody struct {
	ChatID string `json:"chatId"`
}

// Send stores a text message, then pushes the full payload and a lightweight
// unread alert to every member's live session. Offline members are skipped.
func (p *Pipeline) Send(chatID, sender, content string, attachments []model.Attachment) (model.Message, error) {
	if content == "" && len(attachments) == 0 {
		return model.Message{}, fmt.Errorf("%w: message needs content or attachments", errs.ErrInvalidArgument)
	}

	msg, err := p.Store.AppendMessage(chatID, sender, content, attachments)
	if err != nil {
		return model.Message{}, err
	}

	p.fanOut(event.NewMessage, msg)
	return msg, nil
}

// NamedFile is one multipart upload handed to SendAttachments.
type NamedFile struct {
	Name   string
	Reader io.Reader
}

// SendAttachments uploads the files through the blob store and records an
// attachment-only message, announced with NEW_ATTACHMENT instead of
// NEW_MESSAGE.
func (p *Pipeline) SendAttachments(chatID, sender string, files []NamedFile) (model.Message, error) {
	if len(files) == 0 {
		return model.Message{}, fmt.Errorf("%w: please provide attachments", errs.ErrInvalidArgument)
	}
	// Fail before uploading anything if the chat is gone or the sender is
	// not in it.
	chat, err := p.Store.GetChat(chatID)
	if err != nil {
		return model.Message{}, err
	}
	if !chat.HasMember(sender) {
		return model.Message{}, errs.ErrForbidden
	}

	attachments := make([]model.Attachment, 0, len(files))
	for _, f := range files {
		att, err := p.Blobs.Save(f.Name, f.Reader)
		if err != nil {
			return model.Message{}, err
		}
		attachments = append(attachments, att)
	}

	msg, err := p.Store.AppendMessage(chatID, sender, "", attachments)
	if err != nil {
		return model.Message{}, err
	}

	p.fanOut(event.NewAttachment, msg)
	return msg, nil
}

func (p *Pipeline) fanOut(name string, msg model.Message) {
	chat, err := p.Store.GetChat(msg.ChatID)
	if err != nil {
		// The chat raced away after the persist; the send still succeeded.
		p.Log.Debug("fan-out skipped", "chatId", msg.ChatID, "err", err)
		return
	}
	p.Events.Emit(name, chat.Members, messageBody{Message: msg, ChatID: msg.ChatID})
	p.Events.Emit(event.NewMessageAlert, chat.Members, alertOnlyBody{ChatID: msg.ChatID})
}

// Fetch returns one fixed-size page of the chat's history in ascending
// chronological order, newest page first. Only members may read history.
func (p *Pipeline) Fetch(principalID, chatID string, page int) ([]model.Message, int, error) {
	chat, err := p.Store.GetChat(chatID)
	if err != nil {
		return nil, 0, err
	}
	if !chat.HasMember(principalID) {
		return nil, 0, errs.ErrForbidden
	}
	return p.Store.ListMessages(chatID, page)
}
