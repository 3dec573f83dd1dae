package invoker

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/api2mcp/pkg/scope"
)

// DefaultClaimName is the claim read when ScopeOptions.ClaimName is empty.
const DefaultClaimName = "scope"

// ErrUnauthorized is matched by every *AuthorizationError.
var ErrUnauthorized = errors.New("unauthorized")

// ScopeOptions controls per-tool scope checks. With a nil Mapper checking
// is disabled and every tool is callable.
type ScopeOptions struct {
	ClaimName string
	Mapper    func(claim string) scope.Scope
}

// Principal is the authenticated caller of an MCP request.
type Principal struct {
	Subject string
	Claims  map[string]string
}

// Claim returns the named claim.
func (p *Principal) Claim(name string) (string, bool) {
	if p == nil || p.Claims == nil {
		return "", false
	}
	v, ok := p.Claims[name]
	return v, ok
}

type principalKey struct{}

// WithPrincipal attaches the authenticated caller to ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// AuthorizationError reports a failed scope check.
type AuthorizationError struct {
	Required scope.Scope
	Granted  scope.Scope
	Reason   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s. Required: %s, Granted: %s", e.Reason, e.Required, e.Granted)
}

// Unwrap lets errors.Is match ErrUnauthorized.
func (e *AuthorizationError) Unwrap() error { return ErrUnauthorized }

// BeforeInvoke checks that the caller in ctx holds every flag in required.
// It must run before the tool's HTTP call.
func (i *Invoker) BeforeInvoke(ctx context.Context, required scope.Scope) error {
	mapper := i.scope.Mapper
	if mapper == nil {
		return nil
	}

	p, ok := PrincipalFrom(ctx)
	if !ok {
		return &AuthorizationError{Required: required, Reason: "User is not authenticated"}
	}

	claim, ok := p.Claim(i.scope.ClaimName)
	if !ok {
		return &AuthorizationError{
			Required: required,
			Reason:   fmt.Sprintf("Required claim '%s' not found", i.scope.ClaimName),
		}
	}

	granted := mapper(claim)
	if !granted.Has(required) {
		return &AuthorizationError{Required: required, Granted: granted, Reason: "Insufficient scope"}
	}

	i.logger.Debug().
		Str("required", required.String()).
		Str("granted", granted.String()).
		Msg("Scope validation passed")
	return nil
}
