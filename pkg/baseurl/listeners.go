package baseurl

import (
	"net"
	"sync"
)

// Listeners is an AddressSource fed by the HTTP server as it binds. It is
// safe for concurrent use.
type Listeners struct {
	mu    sync.RWMutex
	addrs []string
}

// Add records a bound listener as scheme://host:port.
func (l *Listeners) Add(scheme string, addr net.Addr) {
	if addr == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addrs = append(l.addrs, scheme+"://"+addr.String())
}

// Addresses implements AddressSource.
func (l *Listeners) Addresses() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.addrs...)
}
