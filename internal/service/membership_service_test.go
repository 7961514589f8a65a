package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tgrbin/relay/internal/domain"
	"github.com/tgrbin/relay/internal/errs"
)

func newMembershipService(s *fakeState) *MembershipService {
	return NewMembershipService(&fakeMembershipRepo{s}, &fakeChannelRepo{s}, &fakeUserRepo{s})
}

func TestMembershipService_Create(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	ch := s.addChannel(domain.ChannelPrivate, "")

	svc := newMembershipService(s)
	m, err := svc.Create(context.Background(), alice, ch, time.Now())
	require.NoError(t, err)
	require.Equal(t, alice, m.UserID)
	require.Equal(t, ch, m.ChannelID)
}

func TestMembershipService_Create_InvalidIDs(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	ch := s.addChannel(domain.ChannelPrivate, "")

	svc := newMembershipService(s)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), ch, time.Now())
	require.True(t, errs.IsKind(err, errs.KindNotFound))

	_, err = svc.Create(ctx, alice, uuid.New(), time.Now())
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestMembershipService_Create_Duplicate(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	ch := s.addChannel(domain.ChannelPrivate, "")

	svc := newMembershipService(s)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, ch, time.Now())
	require.NoError(t, err)

	_, err = svc.Create(ctx, alice, ch, time.Now())
	require.True(t, errs.IsKind(err, errs.KindAlreadyExists))
}

// Two concurrent creates for the same pair must end with exactly one stored
// row and one already-exists failure; the constraint decides the winner.
func TestMembershipService_Create_ConcurrentPair(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	ch := s.addChannel(domain.ChannelPrivate, "")

	svc := newMembershipService(s)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, alice, ch, time.Now())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errs.IsKind(err, errs.KindAlreadyExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, conflicts)
	require.Len(t, s.memberships, 1)
}

func TestMembershipService_MarkRead(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	ch := s.addChannel(domain.ChannelPrivate, "")
	id := s.addMembership(alice, ch)

	svc := newMembershipService(s)
	ctx := context.Background()

	readAt := time.Now().Add(time.Minute)
	require.NoError(t, svc.MarkRead(ctx, id, readAt))
	require.True(t, s.memberships[id].LastReadAt.Equal(readAt))

	err := svc.MarkRead(ctx, uuid.New(), readAt)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestMembershipService_CascadeCleanup(t *testing.T) {
	s := newFakeState()
	alice := s.addUser("alice")
	bob := s.addUser("bob")
	ch1 := s.addChannel(domain.ChannelPrivate, "")
	ch2 := s.addChannel(domain.ChannelPrivate, "")
	s.addMembership(alice, ch1)
	s.addMembership(bob, ch1)
	s.addMembership(alice, ch2)

	svc := newMembershipService(s)
	ctx := context.Background()

	require.NoError(t, svc.RemoveForChannel(ctx, ch1))
	require.Len(t, s.memberships, 1)

	require.NoError(t, svc.RemoveForUser(ctx, alice))
	require.Empty(t, s.memberships)
}
