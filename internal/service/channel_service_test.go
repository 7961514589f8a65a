package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
)

func newChannelService(s *fakeState) *ChannelService {
	return NewChannelService(&fakeChannelRepo{s}, &fakeMembershipRepo{s}, &fakeUserRepo{s})
}

func TestChannelService_ListVisible(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	carol := s.addUser("carol")

	pub1 := s.addChannel(domain.ChannelPublic, "general")
	pub2 := s.addChannel(domain.ChannelPublic, "random")
	privAlice := s.addChannel(domain.ChannelPrivate, "")
	s.addMembership(alice, privAlice)
	s.addChannel(domain.ChannelPrivate, "") // nobody's channel

	svc := newChannelService(s)
	ctx := context.Background()

	forAlice, err := svc.ListVisible(ctx, alice)
	require.NoError(t, err)
	aliceIDs := lo.Map(forAlice, func(ch domain.Channel, _ int) uuid.UUID { return ch.ID })
	require.ElementsMatch(t, []uuid.UUID{pub1, pub2, privAlice}, aliceIDs)
	require.Len(t, lo.Uniq(aliceIDs), 3)

	// An unrelated user sees only the public channels.
	forCarol, err := svc.ListVisible(ctx, carol)
	require.NoError(t, err)
	carolIDs := lo.Map(forCarol, func(ch domain.Channel, _ int) uuid.UUID { return ch.ID })
	require.ElementsMatch(t, []uuid.UUID{pub1, pub2}, carolIDs)
}

func TestChannelService_ListVisible_UnknownUser(t *testing.T) {
	svc := newChannelService(newFakeState())

	_, err := svc.ListVisible(context.Background(), uuid.New())
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestChannelService_CreatePrivate(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	bob := s.addUser("bob")
	carol := s.addUser("carol")

	svc := newChannelService(s)
	ctx := context.Background()

	ch, err := svc.CreatePrivate(ctx, CreatePrivateChannelInput{
		ParticipantIDs: []uuid.UUID{alice, bob},
	})
	require.NoError(t, err)
	require.Equal(t, domain.ChannelPrivate, ch.Type)
	require.Nil(t, ch.Name)
	require.Nil(t, ch.Description)

	participants, err := svc.Participants(ctx, ch.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{alice, bob}, participants)

	// Invisible to the uninvolved user.
	forCarol, err := svc.ListVisible(ctx, carol)
	require.NoError(t, err)
	for _, visible := range forCarol {
		require.NotEqual(t, ch.ID, visible.ID)
	}
}

func TestChannelService_CreatePrivate_AllOrNothing(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")

	svc := newChannelService(s)
	_, err := svc.CreatePrivate(context.Background(), CreatePrivateChannelInput{
		ParticipantIDs: []uuid.UUID{alice, uuid.New()},
	})
	require.True(t, errs.IsKind(err, errs.KindNotFound))

	// Nothing persisted: no channel, no membership rows.
	require.Empty(t, s.channels)
	require.Empty(t, s.memberships)
}

func TestChannelService_CreatePrivate_NoParticipants(t *testing.T) {
	svc := newChannelService(newFakeState())

	_, err := svc.CreatePrivate(context.Background(), CreatePrivateChannelInput{})
	require.Error(t, err)
}

func TestChannelService_Update_PublicOnly(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	pub := s.addChannel(domain.ChannelPublic, "general")
	priv := s.addChannel(domain.ChannelPrivate, "")
	s.addMembership(alice, priv)

	svc := newChannelService(s)
	ctx := context.Background()

	name := "announcements"
	updated, err := svc.Update(ctx, pub, UpdateChannelInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "announcements", *updated.Name)

	_, err = svc.Update(ctx, priv, UpdateChannelInput{Name: &name})
	require.True(t, errs.IsKind(err, errs.KindForbidden))
}

func TestChannelService_Delete_Cascades(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	ch := s.addChannel(domain.ChannelPublic, "general")
	s.addMembership(alice, ch)
	s.addMessage(ch, alice, "hello", s.users[alice].CreatedAt)

	svc := newChannelService(s)
	require.NoError(t, svc.Delete(context.Background(), ch))
	require.Empty(t, s.channels)
	require.Empty(t, s.messages)
	require.Empty(t, s.memberships)
}
