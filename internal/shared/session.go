package shared

import (
	"context"
	"net/http"
	"strings"
)

// SessionHeader carries the caller-supplied session identifier.
const SessionHeader = "X-Session"

// AnonymousSession is substituted when the caller sends no identifier.
const AnonymousSession = "anonymous"

type sessionContextKey struct{}

// SessionFromRequest extracts the session token from the request headers,
// falling back to AnonymousSession for blank values. The token is opaque;
// the engine never validates or authenticates it.
func SessionFromRequest(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get(SessionHeader))
	if token == "" {
		return AnonymousSession
	}
	return token
}

// ContextWithSession stores the session token in context.
func ContextWithSession(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, token)
}

// SessionFromContext extracts the session token, defaulting to anonymous.
func SessionFromContext(ctx context.Context) string {
	token, _ := ctx.Value(sessionContextKey{}).(string)
	if token == "" {
		return AnonymousSession
	}
	return token
}
