package auth

import (
	"context"
	"net/http"
	"strings"
)

const isHostKey contextKey = "is_host"

// WithIsHost stores the host flag in the context.
func WithIsHost(ctx context.Context, isHost bool) context.Context {
	return context.WithValue(ctx, isHostKey, isHost)
}

// IsHostFromContext returns whether the authenticated user is a host (staff).
// Hosts are the privileged viewers of the publish gates. Returns false when not set.
func IsHostFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(isHostKey).(bool)
	return v
}

// ParseHostIDs splits a comma-separated list of host user IDs.
func ParseHostIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// HostMiddleware marks the request as coming from a host when the user ID in
// the context is one of hostIDs. It must run after an auth middleware.
func HostMiddleware(hostIDs []string) func(http.Handler) http.Handler {
	hosts := make(map[string]struct{}, len(hostIDs))
	for _, id := range hostIDs {
		hosts[id] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isHost := false
			if userID, ok := UserIDFromContext(r.Context()); ok {
				_, isHost = hosts[userID]
			}
			next.ServeHTTP(w, r.WithContext(WithIsHost(r.Context(), isHost)))
		})
	}
}
