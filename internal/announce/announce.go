// Package announce advertises the tapnode control server over mDNS so
// the smartap tooling can discover it, the same way the devices
// themselves advertise their HTTP endpoint.
package announce

import (
	"fmt"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/tapnode/internal/logging"
)

const (
	// ServiceType is the advertised mDNS service type. Smartap-class
	// devices advertise their control endpoint as "_http._tcp".
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."
)

// Service is a live mDNS advertisement.
type Service struct {
	server *zeroconf.Server
	name   string
}

// Register advertises the control server on the local network.
// instance is the human-readable service instance; name is the mDNS
// hostname to respond for.
func Register(instance, name string, port int) (*Service, error) {
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port,
		[]string{"node=" + name}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("mDNS service registered",
		zap.String("instance", instance),
		zap.String("name", name),
		zap.String("type", ServiceType),
		zap.Int("port", port),
	)

	return &Service{server: server, name: name}, nil
}

// Shutdown withdraws the advertisement. Safe to call on a nil service.
func (s *Service) Shutdown() {
	if s == nil || s.server == nil {
		return
	}

	s.server.Shutdown()
	s.server = nil
	logging.Info("mDNS service withdrawn", zap.String("name", s.name))
}
