package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
	"github.com/tgrbin/relay/internal/repository"
)

const defaultPageSize = 50

type MessageService struct {
	messageRepo    repository.MessageRepository
	channelRepo    repository.ChannelRepository
	attachmentRepo repository.AttachmentRepository
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	channelRepo repository.ChannelRepository,
	attachmentRepo repository.AttachmentRepository,
) *MessageService {
	return &MessageService{
		messageRepo:    messageRepo,
		channelRepo:    channelRepo,
		attachmentRepo: attachmentRepo,
	}
}

type SendMessageInput struct {
	Content       string      `json:"content"`
	AttachmentIDs []uuid.UUID `json:"attachment_ids,omitempty"`
}

type EditMessageInput struct {
	Content string `json:"content"`
}

// List pages the channel feed backward in time by keyset. A nil cursor means
// "now". The repo is asked for one extra row to decide has_next without a
// count query; pages are reproducible for a fixed cursor since newer writes
// land above it.
//
// The cursor is a bare timestamp and the next page starts strictly before it,
// so a page never ends in the middle of a run of equal timestamps: when the
// boundary row ties with what follows, the page grows past pageSize until the
// run is finished. Every message stays reachable.
func (s *MessageService) List(ctx context.Context, channelID uuid.UUID, cursor *time.Time, pageSize int) (*domain.MessagePage, error) {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, errs.NotFound("channel", channelID.String())
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = defaultPageSize
	}

	before := time.Now()
	if cursor != nil {
		before = *cursor
	}

	limit := pageSize + 1
	messages, err := s.messageRepo.ListBefore(ctx, channelID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	hasNext := len(messages) > pageSize
	if hasNext {
		boundary := messages[pageSize-1].CreatedAt

		// Refetch with a larger limit until the result either ends or reaches
		// past the boundary timestamp, so every row tied with it is in hand.
		for len(messages) == limit && messages[len(messages)-1].CreatedAt.Equal(boundary) {
			limit *= 2
			messages, err = s.messageRepo.ListBefore(ctx, channelID, before, limit)
			if err != nil {
				return nil, fmt.Errorf("listing messages: %w", err)
			}
		}

		end := pageSize
		for end < len(messages) && messages[end].CreatedAt.Equal(boundary) {
			end++
		}
		hasNext = end < len(messages)
		messages = messages[:end]
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	if err := s.resolveAttachments(ctx, messages); err != nil {
		return nil, err
	}

	page := &domain.MessagePage{Messages: messages, HasNext: hasNext}
	if hasNext {
		oldest := messages[len(messages)-1].CreatedAt
		page.NextCursor = &oldest
	}
	return page, nil
}

func (s *MessageService) Send(ctx context.Context, authorID, channelID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, errs.NotFound("channel", channelID.String())
	}

	// Every attachment id is resolved before anything is written, so a send
	// naming an unknown attachment fails without leaving a message behind.
	for _, attID := range input.AttachmentIDs {
		att, err := s.attachmentRepo.GetByID(ctx, attID)
		if err != nil {
			return nil, err
		}
		if att == nil {
			return nil, errs.NotFound("attachment", attID.String())
		}
	}

	msg := &domain.Message{
		ID:        uuid.New(),
		ChannelID: channelID,
		AuthorID:  authorID,
		Content:   input.Content,
		CreatedAt: time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	for _, attID := range input.AttachmentIDs {
		if err := s.attachmentRepo.AttachToMessage(ctx, attID, msg.ID); err != nil {
			return nil, fmt.Errorf("attaching %s: %w", attID, err)
		}
	}

	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		return nil, errs.NotFound("message", msg.ID.String())
	}
	joined := []domain.Message{*full}
	if err := s.resolveAttachments(ctx, joined); err != nil {
		return nil, err
	}
	return &joined[0], nil
}

// Edit replaces content and marks the message edited. Feed position never
// changes; it is fixed by created_at.
func (s *MessageService) Edit(ctx context.Context, authorID, messageID uuid.UUID, input EditMessageInput) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errs.NotFound("message", messageID.String())
	}
	if msg.AuthorID != authorID {
		return nil, errs.Forbidden("only the author can edit a message")
	}

	msg.Content = input.Content
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}

	updated, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Deleted between the update and the re-read.
		return nil, errs.NotFound("message", messageID.String())
	}
	joined := []domain.Message{*updated}
	if err := s.resolveAttachments(ctx, joined); err != nil {
		return nil, err
	}
	return &joined[0], nil
}

// Delete removes the message. Already-issued cursors are unaffected; later
// pages simply come back shorter.
func (s *MessageService) Delete(ctx context.Context, authorID, messageID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return errs.NotFound("message", messageID.String())
	}
	if msg.AuthorID != authorID {
		return errs.Forbidden("only the author can delete a message")
	}
	return s.messageRepo.Delete(ctx, messageID)
}

func (s *MessageService) resolveAttachments(ctx context.Context, messages []domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	ids := lo.Map(messages, func(m domain.Message, _ int) uuid.UUID { return m.ID })
	byMessage, err := s.attachmentRepo.ListByMessages(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolving attachments: %w", err)
	}

	for i := range messages {
		atts := byMessage[messages[i].ID]
		if atts == nil {
			atts = []domain.Attachment{}
		}
		messages[i].Attachments = atts
	}
	return nil
}
