package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
)

// fakeState backs the in-memory repositories used by the service tests. The
// membership map enforces (user, channel) uniqueness under the mutex, mirroring
// the store-level constraint, so races resolve the same way Postgres would.
type fakeState struct {
	mu          sync.Mutex
	users       map[uuid.UUID]domain.User
	channels    map[uuid.UUID]domain.Channel
	messages    map[uuid.UUID]domain.Message
	memberships map[uuid.UUID]domain.Membership
	presence    map[uuid.UUID]domain.Presence // keyed by user id
	attachments map[uuid.UUID]domain.Attachment
}

func newFakeState() *fakeState {
	return &fakeState{
		users:       make(map[uuid.UUID]domain.User),
		channels:    make(map[uuid.UUID]domain.Channel),
		messages:    make(map[uuid.UUID]domain.Message),
		memberships: make(map[uuid.UUID]domain.Membership),
		presence:    make(map[uuid.UUID]domain.Presence),
		attachments: make(map[uuid.UUID]domain.Attachment),
	}
}

func (s *fakeState) addUser(displayName string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	now := time.Now()
	s.users[id] = domain.User{ID: id, Email: displayName + "@example.com", DisplayName: displayName, CreatedAt: now}
	s.presence[id] = domain.Presence{ID: uuid.New(), UserID: id, LastActiveAt: now}
	return id
}

func (s *fakeState) addChannel(chType domain.ChannelType, name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	ch := domain.Channel{ID: id, Type: chType, CreatedAt: time.Now()}
	if chType == domain.ChannelPublic {
		ch.Name = &name
	}
	s.channels[id] = ch
	return id
}

func (s *fakeState) addMembership(userID, channelID uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.memberships[id] = domain.Membership{ID: id, UserID: userID, ChannelID: channelID, LastReadAt: time.Now()}
	return id
}

func (s *fakeState) addMessage(channelID, authorID uuid.UUID, content string, at time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.messages[id] = domain.Message{ID: id, ChannelID: channelID, AuthorID: authorID, Content: content, CreatedAt: at}
	return id
}

type fakeUserRepo struct{ s *fakeState }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return errs.AlreadyExists("user", user.Email)
		}
	}
	r.s.users[user.ID] = *user
	r.s.presence[user.ID] = domain.Presence{ID: uuid.New(), UserID: user.ID, LastActiveAt: user.CreatedAt}
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.users[id]
	return ok, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	delete(r.s.presence, id)
	return nil
}

type fakeChannelRepo struct{ s *fakeState }

func (r *fakeChannelRepo) Create(_ context.Context, ch *domain.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.channels[ch.ID] = *ch
	return nil
}

func (r *fakeChannelRepo) CreatePrivate(_ context.Context, ch *domain.Channel, participantIDs []uuid.UUID, lastReadAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, userID := range participantIDs {
		if _, ok := r.s.users[userID]; !ok {
			return errs.NotFound("user", userID.String())
		}
	}
	r.s.channels[ch.ID] = *ch
	for _, userID := range participantIDs {
		id := uuid.New()
		r.s.memberships[id] = domain.Membership{ID: id, UserID: userID, ChannelID: ch.ID, LastReadAt: lastReadAt}
	}
	return nil
}

func (r *fakeChannelRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ch, ok := r.s.channels[id]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

func (r *fakeChannelRepo) ListVisible(_ context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	member := make(map[uuid.UUID]bool)
	for _, m := range r.s.memberships {
		if m.UserID == userID {
			member[m.ChannelID] = true
		}
	}
	var channels []domain.Channel
	for _, ch := range r.s.channels {
		if ch.Type == domain.ChannelPublic || member[ch.ID] {
			channels = append(channels, ch)
		}
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].CreatedAt.Before(channels[j].CreatedAt) })
	return channels, nil
}

func (r *fakeChannelRepo) Update(_ context.Context, ch *domain.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.channels[ch.ID] = *ch
	return nil
}

func (r *fakeChannelRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.channels, id)
	for mid, m := range r.s.memberships {
		if m.ChannelID == id {
			delete(r.s.memberships, mid)
		}
	}
	for mid, m := range r.s.messages {
		if m.ChannelID == id {
			delete(r.s.messages, mid)
		}
	}
	return nil
}

type fakeMessageRepo struct{ s *fakeState }

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.messages[msg.ID] = *msg
	return nil
}

func (r *fakeMessageRepo) join(msg domain.Message, now time.Time) domain.Message {
	u := r.s.users[msg.AuthorID]
	p := r.s.presence[msg.AuthorID]
	msg.Author = domain.Author{
		ID:          msg.AuthorID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Online:      domain.IsOnline(p.LastActiveAt, now),
	}
	return msg
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg, ok := r.s.messages[id]
	if !ok {
		return nil, nil
	}
	joined := r.join(msg, time.Now())
	return &joined, nil
}

func (r *fakeMessageRepo) ListBefore(_ context.Context, channelID uuid.UUID, before time.Time, limit int) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	var out []domain.Message
	for _, m := range r.s.messages {
		if m.ChannelID == channelID && m.CreatedAt.Before(before) {
			out = append(out, r.join(m, now))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) Update(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.messages[msg.ID]
	if !ok {
		return fmt.Errorf("message %s not stored", msg.ID)
	}
	stored.Content = msg.Content
	now := time.Now()
	stored.EditedAt = &now
	r.s.messages[msg.ID] = stored
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.messages, id)
	return nil
}

type fakeMembershipRepo struct{ s *fakeState }

func (r *fakeMembershipRepo) Create(_ context.Context, m *domain.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.memberships {
		if existing.UserID == m.UserID && existing.ChannelID == m.ChannelID {
			return errs.AlreadyExists("membership", fmt.Sprintf("%s/%s", m.UserID, m.ChannelID))
		}
	}
	r.s.memberships[m.ID] = *m
	return nil
}

func (r *fakeMembershipRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *fakeMembershipRepo) GetByUserAndChannel(_ context.Context, userID, channelID uuid.UUID) (*domain.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.memberships {
		if m.UserID == userID && m.ChannelID == channelID {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *fakeMembershipRepo) ListUserIDs(_ context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, m := range r.s.memberships {
		if m.ChannelID == channelID {
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

func (r *fakeMembershipRepo) UpdateLastRead(_ context.Context, id uuid.UUID, lastReadAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[id]
	if !ok {
		return errs.NotFound("membership", id.String())
	}
	m.LastReadAt = lastReadAt
	r.s.memberships[id] = m
	return nil
}

func (r *fakeMembershipRepo) DeleteAllForChannel(_ context.Context, channelID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.memberships {
		if m.ChannelID == channelID {
			delete(r.s.memberships, id)
		}
	}
	return nil
}

func (r *fakeMembershipRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.memberships {
		if m.UserID == userID {
			delete(r.s.memberships, id)
		}
	}
	return nil
}

type fakePresenceRepo struct{ s *fakeState }

func (r *fakePresenceRepo) Create(_ context.Context, p *domain.Presence) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.presence[p.UserID]; ok {
		return errs.AlreadyExists("presence", p.UserID.String())
	}
	r.s.presence[p.UserID] = *p
	return nil
}

func (r *fakePresenceRepo) GetByUser(_ context.Context, userID uuid.UUID) (*domain.Presence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.presence[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePresenceRepo) UpdateLastActive(_ context.Context, userID uuid.UUID, lastActiveAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.presence[userID]
	if !ok {
		return errs.NotFound("presence", userID.String())
	}
	p.LastActiveAt = lastActiveAt
	r.s.presence[userID] = p
	return nil
}

type fakeAttachmentRepo struct{ s *fakeState }

func (r *fakeAttachmentRepo) Create(_ context.Context, a *domain.Attachment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.attachments[a.ID] = *a
	return nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Attachment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attachments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeAttachmentRepo) ListByMessages(_ context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]domain.Attachment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(messageIDs))
	for _, id := range messageIDs {
		wanted[id] = true
	}
	byMessage := make(map[uuid.UUID][]domain.Attachment)
	for _, a := range r.s.attachments {
		if a.MessageID != nil && wanted[*a.MessageID] {
			byMessage[*a.MessageID] = append(byMessage[*a.MessageID], a)
		}
	}
	return byMessage, nil
}

func (r *fakeAttachmentRepo) AttachToMessage(_ context.Context, attachmentID, messageID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attachments[attachmentID]
	if !ok {
		return errs.NotFound("attachment", attachmentID.String())
	}
	a.MessageID = &messageID
	r.s.attachments[attachmentID] = a
	return nil
}

func (r *fakeAttachmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.attachments, id)
	return nil
}
