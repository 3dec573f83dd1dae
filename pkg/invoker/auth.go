package invoker

import (
	"context"
	"strings"
)

type authorizationKey struct{}

// WithAuthorization records the inbound Authorization header so the
// invoker can forward it on self-calls.
func WithAuthorization(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, authorizationKey{}, header)
}

// AuthorizationFrom returns the inbound Authorization header, if recorded.
func AuthorizationFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(authorizationKey{}).(string)
	return v, ok
}

// parseAuthorization validates a header of the form "<scheme> [credentials]"
// and returns it normalised to a single space after the scheme.
func parseAuthorization(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	scheme, creds, _ := strings.Cut(raw, " ")
	if scheme == "" || !isToken(scheme) {
		return "", false
	}
	creds = strings.TrimSpace(creds)
	for _, r := range creds {
		if r < 0x20 || r == 0x7f {
			return "", false
		}
	}
	if creds == "" {
		return scheme, true
	}
	return scheme + " " + creds, true
}

// isToken reports whether s is an RFC 7230 token.
func isToken(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			continue
		}
		if !strings.ContainsRune("!#$%&'*+-.^_`|~", r) {
			return false
		}
	}
	return true
}
