// Package identity names the browser instance behind a request.
package identity

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strings"
)

const (
	ClientHeaderName     = "X-Tabtime-Client"
	ClientQueryParam     = "client_id"
	DefaultClientIDValue = "default"
)

type contextKey int

const clientIDKey contextKey = iota

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ClientIDFromContext extracts the browser client ID from the request context.
func ClientIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIDKey).(string); ok {
		return v
	}
	return DefaultClientIDValue
}

// WithClientID returns a context carrying the client ID.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, SanitizeClientID(clientID))
}

// SanitizeClientID falls back to the default ID for empty or malformed values.
func SanitizeClientID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !clientIDPattern.MatchString(id) {
		return DefaultClientIDValue
	}
	return id
}

func clientIDFromRequest(r *http.Request) string {
	id := r.Header.Get(ClientHeaderName)
	if id == "" {
		id = r.URL.Query().Get(ClientQueryParam)
	}
	return SanitizeClientID(id)
}

// Middleware injects the browser client ID into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientID(r.Context(), clientIDFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IPFromRequest returns a normalized remote IP for request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
