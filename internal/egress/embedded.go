package egress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nao1215/tornago"
)

// defaultBootstrapTimeout is used when no startup timeout is configured.
const defaultBootstrapTimeout = 3 * time.Minute

// EmbeddedTor is a private Tor daemon owned by one run. It listens on
// OS-assigned loopback ports and is reached through its SOCKS port.
type EmbeddedTor struct {
	bootstrapTimeout time.Duration

	mu      sync.Mutex
	process *tornago.TorProcess
}

// EmbeddedTorOption configures an EmbeddedTor.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout bounds the bootstrap. Non-positive values keep the default.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		if timeout > 0 {
			e.bootstrapTimeout = timeout
		}
	}
}

// NewEmbeddedTor creates an idle daemon handle.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{bootstrapTimeout: defaultBootstrapTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type launchResult struct {
	process *tornago.TorProcess
	err     error
}

// Start launches the daemon and waits for it to bootstrap. If ctx ends
// first, Start returns ctx.Err() and the daemon is stopped once its launch
// returns. Starting a running daemon is a no-op.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	if e.IsRunning() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.bootstrapTimeout),
	)
	if err != nil {
		return fmt.Errorf("invalid embedded Tor settings: %w", err)
	}

	launched := make(chan launchResult, 1)
	go func() {
		process, err := tornago.StartTorDaemon(launchCfg)
		launched <- launchResult{process: process, err: err}
	}()

	select {
	case res := <-launched:
		if res.err != nil {
			return fmt.Errorf("embedded Tor did not bootstrap within %s: %w", e.bootstrapTimeout, res.err)
		}
		e.mu.Lock()
		e.process = res.process
		e.mu.Unlock()
		return nil
	case <-ctx.Done():
		go reap(launched)
		return ctx.Err()
	}
}

// reap stops a daemon whose launch outlived its caller.
func reap(launched <-chan launchResult) {
	if res := <-launched; res.process != nil {
		_ = res.process.Stop() //nolint:errcheck // nobody is left to report to
	}
}

// Stop shuts the daemon down. Stopping an idle daemon is a no-op.
func (e *EmbeddedTor) Stop() error {
	e.mu.Lock()
	process := e.process
	e.process = nil
	e.mu.Unlock()

	if process == nil {
		return nil
	}
	return process.Stop()
}

// IsRunning reports whether the daemon is up.
func (e *EmbeddedTor) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.process != nil
}

// SocksAddr returns the daemon's SOCKS5 address, or "" when it is not running.
func (e *EmbeddedTor) SocksAddr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.process == nil {
		return ""
	}
	return e.process.SocksAddr()
}

// Proxy returns a Proxy for the daemon's SOCKS port.
func (e *EmbeddedTor) Proxy() (*Proxy, error) {
	addr := e.SocksAddr()
	if addr == "" {
		return nil, ErrTorNotRunning
	}
	return NewProxy(addr)
}
