// Package opencode connects to an assistant server, starting a local one
// first when allowed, and hands back a ready API client.
package opencode

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marmos91/opencode-sdk/pkg/apiclient"
	"github.com/marmos91/opencode-sdk/pkg/config"
	"github.com/marmos91/opencode-sdk/pkg/lifecycle"
)

// Options configures Open.
type Options struct {
	// BaseURL targets an existing server and skips the lifecycle.
	BaseURL string

	// Hostname and Port locate the local server. Zero values use the
	// lifecycle defaults.
	Hostname string
	Port     int

	// Lifecycle drives the start decision. AutoStart false only computes
	// the address.
	Lifecycle lifecycle.Config

	// Password enables HTTP basic auth.
	Password string

	// Timeout bounds each API request.
	Timeout time.Duration

	// Ephemeral stops a server started by Open when the Instance is closed.
	// A reused server is never stopped.
	Ephemeral bool

	// Manager runs the lifecycle. Nil builds one with Logger.
	Manager *lifecycle.Manager

	Logger *slog.Logger
}

// OptionsFromConfig maps a loaded configuration to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:   cfg.Server.URL,
		Hostname:  cfg.Server.Hostname,
		Port:      cfg.Server.Port,
		Lifecycle: cfg.LifecycleConfig(),
		Password:  cfg.Server.Password,
		Timeout:   cfg.Client.Timeout,
	}
}

// Instance is a connected client plus the server Open started, if any.
type Instance struct {
	Client   *apiclient.Client
	Server   lifecycle.Server
	BaseURL  string
	Decision lifecycle.Decision

	ephemeral bool
	closeOnce sync.Once
	closeErr  error
}

// Open resolves the server address, runs the lifecycle when no explicit
// URL is given, and builds the client.
func Open(ctx context.Context, opts Options) (*Instance, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	inst := &Instance{ephemeral: opts.Ephemeral}

	if opts.BaseURL != "" {
		logger.Debug("using explicit server url", "base_url", opts.BaseURL)
		inst.BaseURL = opts.BaseURL
		inst.Decision = lifecycle.DecisionDisabled
	} else {
		port := opts.Port
		if port == 0 {
			port = lifecycle.DefaultPort
		}
		mgr := opts.Manager
		if mgr == nil {
			mgr = lifecycle.New(lifecycle.WithLogger(logger))
		}

		res, err := mgr.Ensure(ctx, opts.Hostname, port, opts.Lifecycle)
		if err != nil {
			return nil, err
		}
		inst.BaseURL = res.BaseURL
		inst.Server = res.Server
		inst.Decision = res.Decision
	}

	inst.Client = apiclient.New(inst.BaseURL,
		apiclient.WithTimeout(opts.Timeout),
		apiclient.WithLogger(logger),
	).WithBasicAuth(opts.Password)

	return inst, nil
}

// Started reports whether Open spawned the server.
func (i *Instance) Started() bool {
	return i.Server != nil && i.Server.Managed()
}

// Close stops the server when the Instance is ephemeral and Open started
// it. It is safe to call more than once.
func (i *Instance) Close() error {
	i.closeOnce.Do(func() {
		if i.ephemeral && i.Started() {
			i.closeErr = i.Server.Shutdown()
		}
	})
	return i.closeErr
}
