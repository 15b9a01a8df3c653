package shared

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	require.Equal(t, AnonymousSession, SessionFromRequest(r))

	r.Header.Set(SessionHeader, "  ")
	require.Equal(t, AnonymousSession, SessionFromRequest(r))

	r.Header.Set(SessionHeader, "alice")
	require.Equal(t, "alice", SessionFromRequest(r))
}

func TestSessionContextRoundTrip(t *testing.T) {
	ctx := ContextWithSession(context.Background(), "alice")
	require.Equal(t, "alice", SessionFromContext(ctx))

	require.Equal(t, AnonymousSession, SessionFromContext(context.Background()))
}
