// liveness.go - Connection state machine shared by the store wrappers.
//
// Both backing stores establish their connections asynchronously at process
// start. IsAlive is a pure read of the current state, never a blocking
// probe, so it is safe to call before the first connection attempt has
// resolved and it never returns an error: degraded connectivity reports
// false.
package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Connection states. A store starts in connConnecting, moves to connReady
// once its first probe succeeds, and flips between connReady and connFailed
// as the background monitor observes the connection.
const (
	connConnecting int32 = iota
	connReady
	connFailed
)

// defaultProbeInterval is how often the monitor re-checks a store once the
// initial connection attempt has resolved.
const defaultProbeInterval = 5 * time.Second

// liveness tracks connection state for a store wrapper. Embed it, then
// call init and startMonitor from the constructor.
type liveness struct {
	state     atomic.Int32
	readyCh   chan struct{}
	readyOnce sync.Once
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// init allocates the channels. Must run before startMonitor; kept separate
// so embedding structs never copy the sync primitives.
func (l *liveness) init() {
	l.readyCh = make(chan struct{})
	l.stopCh = make(chan struct{})
}

// IsAlive reports whether the connection is currently usable. It is a
// lock-free read of monitor state and never blocks on the network.
func (l *liveness) IsAlive() bool {
	return l.state.Load() == connReady
}

// WaitReady blocks until the first successful probe or until ctx is done.
// It is intended for startup-time health checks; callers that can serve
// degraded (reporting IsAlive false) may skip it entirely.
func (l *liveness) WaitReady(ctx context.Context) error {
	select {
	case <-l.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// markReady records a successful probe and releases WaitReady waiters.
func (l *liveness) markReady() {
	l.state.Store(connReady)
	l.readyOnce.Do(func() { close(l.readyCh) })
}

// markFailed records a failed probe.
func (l *liveness) markFailed() {
	l.state.Store(connFailed)
}

// startMonitor probes immediately and then every interval until stop is
// called. probe must honor its context deadline.
func (l *liveness) startMonitor(probe func(context.Context) error, interval, timeout time.Duration) {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			err := probe(ctx)
			cancel()
			if err != nil {
				l.markFailed()
			} else {
				l.markReady()
			}

			select {
			case <-l.stopCh:
				return
			case <-ticker.C:
			}
		}
	}()
}

// stopMonitor terminates the background probe loop. Safe to call twice.
func (l *liveness) stopMonitor() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}
