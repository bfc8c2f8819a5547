package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tapnode/internal/announce"
	"github.com/muurk/tapnode/internal/boot"
	"github.com/muurk/tapnode/internal/closer"
	"github.com/muurk/tapnode/internal/config"
	"github.com/muurk/tapnode/internal/httpd"
	"github.com/muurk/tapnode/internal/led"
	"github.com/muurk/tapnode/internal/logging"
	"github.com/muurk/tapnode/internal/netwait"
	"github.com/muurk/tapnode/internal/version"
)

// Options configures an Agent.
type Options struct {
	// ConfigPath overrides the platform config file location.
	ConfigPath string

	// Overrides applied on top of the loaded config file. Nil leaves
	// the file's settings in place.
	Port    *int
	Host    string
	LEDPath *string
	NoMDNS  bool

	// Waiter overrides the network readiness check; nil selects the
	// real interface-table waiter.
	Waiter *netwait.Waiter
}

// Agent is one tapnode instance: the staged boot sequence plus the
// state it leaves behind.
type Agent struct {
	opts Options

	cfg    *config.Config
	etag   string
	driver led.Driver
	server *httpd.Server
}

// New creates an Agent. Nothing is acquired until Up.
func New(opts Options) *Agent {
	return &Agent{opts: opts}
}

// Server returns the control server, once Up has succeeded.
func (a *Agent) Server() *httpd.Server {
	return a.server
}

// Up runs the boot sequence and returns the cleanup registry holding
// the shutdown obligations of every subsystem that came up. On error
// everything already acquired has been released.
func (a *Agent) Up(ctx context.Context) (*closer.Closer, error) {
	seq := boot.New("agent").
		Add("fingerprint", a.stepFingerprint).
		Add("store", a.stepStore).
		Add("led", a.stepLED).
		Add("network", a.stepNetwork).
		Add("announce", a.stepAnnounce).
		Add("httpd", a.stepHTTPD)

	return seq.Up(ctx)
}

// stepFingerprint derives the control-page ETag from the build. Pure
// computation: nothing to clean up.
func (a *Agent) stepFingerprint(ctx context.Context, c *closer.Closer) error {
	a.etag = version.Fingerprint()
	logging.Info("Build fingerprint", zap.String("etag", a.etag))
	return nil
}

// stepStore loads the configuration file. A corrupt store is replaced
// with defaults and rewritten, the way the firmware erases and
// re-initializes an unreadable settings partition.
func (a *Agent) stepStore(ctx context.Context, c *closer.Closer) error {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		logging.Warn("Config store unreadable, rewriting defaults", zap.Error(err))
		cfg = config.New()
		if err := cfg.Save(a.opts.ConfigPath); err != nil {
			return fmt.Errorf("failed to rewrite config store: %w", err)
		}
	}

	if a.opts.Port != nil {
		cfg.Port = *a.opts.Port
	}
	if a.opts.LEDPath != nil {
		cfg.LEDPath = *a.opts.LEDPath
	}
	if a.opts.NoMDNS {
		cfg.MDNS.Enabled = false
	}

	a.cfg = cfg
	return nil
}

// stepLED opens the status LED driver and registers its release. Open
// forces the LED off, the state the firmware establishes at power-on.
func (a *Agent) stepLED(ctx context.Context, c *closer.Closer) error {
	path := a.cfg.LEDPath

	driver, err := closer.Acquire(c,
		func() (led.Driver, error) { return led.Open(path) },
		func(d led.Driver) {
			if err := d.Close(); err != nil {
				logging.Error("LED release failed", zap.Error(err))
			}
		},
	)
	if err != nil {
		return err
	}

	a.driver = driver
	return nil
}

// stepNetwork waits for a routable address. Nothing to clean up: the
// OS owns the link.
func (a *Agent) stepNetwork(ctx context.Context, c *closer.Closer) error {
	waiter := a.opts.Waiter
	if waiter == nil {
		waiter = netwait.NewWaiter()
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.cfg.NetworkTimeout())
	defer cancel()

	_, err := waiter.Wait(waitCtx)
	return err
}

// stepAnnounce advertises the control server over mDNS and registers
// the withdrawal of the advertisement.
func (a *Agent) stepAnnounce(ctx context.Context, c *closer.Closer) error {
	if !a.cfg.MDNS.Enabled {
		logging.Info("mDNS advertisement disabled")
		return nil
	}

	_, err := closer.Acquire(c,
		func() (*announce.Service, error) {
			return announce.Register(a.cfg.MDNS.Instance, a.cfg.MDNS.Name, a.cfg.Port)
		},
		func(s *announce.Service) { s.Shutdown() },
	)
	return err
}

// stepHTTPD starts the control server and registers its stop.
func (a *Agent) stepHTTPD(ctx context.Context, c *closer.Closer) error {
	server, err := httpd.New(httpd.Config{
		Host:     a.opts.Host,
		Port:     a.cfg.Port,
		ETag:     a.etag,
		LED:      a.driver,
		NodeName: a.cfg.MDNS.Name,
		Version:  version.Version,
	})
	if err != nil {
		return err
	}

	_, err = closer.Acquire(c,
		func() (*httpd.Server, error) {
			if err := server.Start(); err != nil {
				return nil, err
			}
			return server, nil
		},
		func(s *httpd.Server) {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.Stop(stopCtx); err != nil {
				logging.Error("Control server stop failed", zap.Error(err))
			}
		},
	)
	if err != nil {
		return err
	}

	a.server = server
	return nil
}

// Run boots the agent and blocks until ctx is done or a SIGINT/SIGTERM
// arrives, then unwinds every acquired subsystem in reverse order.
func (a *Agent) Run(ctx context.Context) error {
	c, err := a.Up(ctx)
	if err != nil {
		return err
	}
	defer c.Destroy()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logging.Info("Agent running",
		zap.String("addr", a.server.Addr()),
		zap.String("version", version.Full()),
	)

	select {
	case sig := <-sigChan:
		logging.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logging.Info("Context cancelled, shutting down")
	}

	c.Close()
	return nil
}
