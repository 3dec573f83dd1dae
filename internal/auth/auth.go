// Package auth validates bearer JWTs and attaches the caller to the
// request context as an invoker.Principal.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cast"

	"github.com/bobmcallan/api2mcp/internal/common"
	"github.com/bobmcallan/api2mcp/pkg/invoker"
)

// ErrNoSecret is returned when tokens are minted or checked without a
// configured secret.
var ErrNoSecret = errors.New("auth: jwt secret not configured")

// Authenticator validates HS256 bearer tokens signed with a shared secret.
type Authenticator struct {
	secret []byte
	issuer string
	logger *common.Logger
	now    func() time.Time
}

// NewAuthenticator creates an Authenticator. An empty secret disables
// authentication: every request stays anonymous.
func NewAuthenticator(secret, issuer string, logger *common.Logger) *Authenticator {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured.
func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// Middleware attaches the principal of a valid bearer token to the request
// context. Requests without a token, or with an invalid one, pass through
// anonymous; handlers further down decide whether that is acceptable.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, err := a.Parse(strings.TrimSpace(token))
		if err != nil {
			a.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("bearer token rejected")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(invoker.WithPrincipal(r.Context(), p)))
	})
}

// Parse validates token and returns its principal.
func (a *Authenticator) Parse(token string) (*invoker.Principal, error) {
	if !a.Enabled() {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("parse token: invalid")
	}

	sub, _ := claims.GetSubject()
	p := &invoker.Principal{Subject: sub, Claims: make(map[string]string, len(claims))}
	for name, v := range claims {
		p.Claims[name] = FlattenClaim(v)
	}
	return p, nil
}

// Mint signs a token for subject carrying extra claims and expiring after
// ttl.
func (a *Authenticator) Mint(subject string, extra map[string]any, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", ErrNoSecret
	}

	now := a.now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if a.issuer != "" {
		claims["iss"] = a.issuer
	}
	for k, v := range extra {
		claims[k] = v
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// FlattenClaim renders a claim value as the single string scope mappers
// read: arrays are joined with spaces, scalars are formatted as text.
func FlattenClaim(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, " ")
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := FlattenClaim(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return cast.ToString(v)
}
