// Package baseurl resolves the address the invoker uses to call back into
// the running service.
package baseurl

import (
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrNoBaseURL is returned when neither configuration nor the listener
// provides an address. It is a fatal configuration error.
var ErrNoBaseURL = errors.New("unable to determine base URL: configure mcp.base_url or start the listener before invoking tools")

// DefaultTunnelEnv is the environment variable holding a development
// tunnel URL.
const DefaultTunnelEnv = "VS_TUNNEL_URL"

// AddressSource reports the addresses a listener is bound to, in bind order.
type AddressSource interface {
	Addresses() []string
}

// StaticAddresses is a fixed AddressSource.
type StaticAddresses []string

// Addresses implements AddressSource.
func (s StaticAddresses) Addresses() []string { return s }

// Options configures a Resolver.
type Options struct {
	// Configured is an explicit base URL. It wins over everything else.
	Configured string
	// Environment gates the tunnel lookup; only "development" consults it.
	Environment string
	// TunnelEnv names the tunnel URL variable. Defaults to DefaultTunnelEnv.
	TunnelEnv string
	// Addresses supplies listener addresses.
	Addresses AddressSource
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Resolver computes the base URL once and serves the cached value after.
type Resolver struct {
	opts   Options
	mu     sync.Mutex
	cached atomic.Pointer[string]
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	if opts.TunnelEnv == "" {
		opts.TunnelEnv = DefaultTunnelEnv
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	return &Resolver{opts: opts}
}

// BaseURL returns the resolved base URL without a trailing slash. A failed
// resolution is not cached, so a later call can succeed once the listener
// is up.
func (r *Resolver) BaseURL() (string, error) {
	if u := r.cached.Load(); u != nil {
		return *u, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if u := r.cached.Load(); u != nil {
		return *u, nil
	}

	u, err := r.resolve()
	if err != nil {
		return "", err
	}
	r.cached.Store(&u)
	return u, nil
}

func (r *Resolver) resolve() (string, error) {
	if c := strings.TrimSpace(r.opts.Configured); c != "" {
		return strings.TrimRight(c, "/"), nil
	}

	if IsDevelopment(r.opts.Environment) {
		if v, ok := r.opts.LookupEnv(r.opts.TunnelEnv); ok && strings.TrimSpace(v) != "" {
			return Normalize(v), nil
		}
	}

	if r.opts.Addresses != nil {
		addrs := r.opts.Addresses.Addresses()
		for _, a := range addrs {
			if strings.HasPrefix(strings.ToLower(a), "https://") {
				return Normalize(a), nil
			}
		}
		if len(addrs) > 0 {
			return Normalize(addrs[0]), nil
		}
	}

	return "", ErrNoBaseURL
}

// IsDevelopment reports whether env names the development environment.
func IsDevelopment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev":
		return true
	}
	return false
}

// Normalize rewrites wildcard bind hosts (+, *, 0.0.0.0, [::], [::1]) to
// localhost, keeping scheme, port and path, and trims a trailing slash.
// Bracketed hosts are located by their closing ']' because wildcard tokens
// are not valid URLs.
func Normalize(addr string) string {
	addr = strings.TrimSpace(addr)

	i := strings.Index(addr, "://")
	if i < 0 {
		return strings.TrimRight(addr, "/")
	}
	scheme, rest := addr[:i+3], addr[i+3:]

	var host, tail string
	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return strings.TrimRight(addr, "/")
		}
		host, tail = rest[:end+1], rest[end+1:]
	} else if j := strings.IndexAny(rest, ":/"); j >= 0 {
		host, tail = rest[:j], rest[j:]
	} else {
		host = rest
	}

	if isWildcard(host) {
		host = "localhost"
	}
	return strings.TrimRight(scheme+host+tail, "/")
}

func isWildcard(host string) bool {
	switch host {
	case "+", "*", "0.0.0.0", "[::]", "[::1]":
		return true
	}
	return false
}
