package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, KindNotFound, KindOf(NotFound("channel", "c1")))
	require.Equal(t, KindAlreadyExists, KindOf(AlreadyExists("membership", "u1/c1")))
	require.Equal(t, KindForbidden, KindOf(Forbidden("nope")))
	require.Equal(t, KindUnknown, KindOf(fmt.Errorf("plain")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("listing channels: %w", NotFound("user", "u1"))
	require.Equal(t, KindNotFound, KindOf(err))
	require.True(t, IsKind(err, KindNotFound))

	twice := fmt.Errorf("handling request: %w", err)
	require.True(t, IsKind(twice, KindNotFound))
}

func TestError_Message(t *testing.T) {
	require.Equal(t, `channel "c1": not_found`, NotFound("channel", "c1").Error())
	require.Equal(t, "forbidden: private channels cannot be updated",
		Forbidden("private channels cannot be updated").Error())

	wrapped := StorageUnavailable(fmt.Errorf("disk full"))
	require.Contains(t, wrapped.Error(), "disk full")
	require.EqualError(t, wrapped.Unwrap(), "disk full")
}
