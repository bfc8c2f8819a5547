// Package netwait waits for the host to obtain a usable network
// address. The OS owns link association and DHCP; this package only
// observes the result, polling the interface table until a routable
// IPv4 address appears or the deadline passes.
package netwait

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tapnode/internal/logging"
)

// ErrNoAddress is returned when no routable address appeared within
// the wait deadline.
var ErrNoAddress = errors.New("netwait: no routable address")

// DefaultPollInterval is the delay between interface table polls.
const DefaultPollInterval = 250 * time.Millisecond

// Waiter polls for a routable IPv4 address.
type Waiter struct {
	// PollInterval is the delay between polls. Zero selects
	// DefaultPollInterval.
	PollInterval time.Duration

	// addrs is swapped out by tests.
	addrs func() ([]net.Addr, error)
}

// NewWaiter returns a Waiter reading the host interface table.
func NewWaiter() *Waiter {
	return &Waiter{addrs: net.InterfaceAddrs}
}

// NewStatic returns a Waiter over a fixed address table. It exists for
// tests and hardware-less runs; malformed CIDRs surface as a poll that
// never finds an address.
func NewStatic(cidrs ...string) *Waiter {
	return &Waiter{
		PollInterval: time.Millisecond,
		addrs: func() ([]net.Addr, error) {
			var addrs []net.Addr
			for _, c := range cidrs {
				ip, ipNet, err := net.ParseCIDR(c)
				if err != nil {
					return nil, fmt.Errorf("netwait: bad static addr %q: %w", c, err)
				}
				ipNet.IP = ip
				addrs = append(addrs, ipNet)
			}
			return addrs, nil
		},
	}
}

// Wait blocks until a routable IPv4 address is available or ctx is
// done, and returns the address it found. The context carries the
// deadline; expiry maps to ErrNoAddress.
func (w *Waiter) Wait(ctx context.Context) (net.IP, error) {
	interval := w.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ip := w.routableAddr(); ip != nil {
			logging.Info("Network ready", zap.String("addr", ip.String()))
			return ip, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrNoAddress, ctx.Err())
		case <-ticker.C:
		}
	}
}

// routableAddr returns the first non-loopback, non-link-local IPv4
// address, or nil when none exists yet.
func (w *Waiter) routableAddr() net.IP {
	addrs, err := w.addrs()
	if err != nil {
		logging.Debug("Interface table read failed", zap.Error(err))
		return nil
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		return ip
	}
	return nil
}
