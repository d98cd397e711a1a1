// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher fans trigger values out to registered plugins. Each value is
// delivered to every plugin concurrently; this is safe because the capability
// interface requires plugins to tolerate concurrent Trigger calls. Trigger
// errors are logged and counted, never propagated: the data path must not be
// able to stall the host.
type Dispatcher struct {
	manager *Manager
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the manager's registered plugins.
func NewDispatcher(m *Manager) *Dispatcher {
	return &Dispatcher{manager: m}
}

// Start consumes values until the channel closes or ctx is canceled.
// Dispatch of one value completes before the next is read, but individual
// plugins within a value are triggered concurrently.
func (d *Dispatcher) Start(ctx context.Context, values <-chan uint64) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-values:
				if !ok {
					return
				}
				d.dispatch(v)
			}
		}
	}()
}

// Wait blocks until the processing goroutine has exited. Call after the
// values channel is closed or the context is canceled, before draining the
// manager, so no Trigger call races an unload.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(value uint64) {
	var wg sync.WaitGroup
	for p := range d.manager.Plugins() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Trigger(value); err != nil {
				RecordTrigger(p.Name(), StatusError)
				slog.Warn("plugin trigger failed",
					"plugin", p.Name(),
					"value", value,
					"error", err)
				return
			}
			RecordTrigger(p.Name(), StatusSuccess)
		}()
	}
	wg.Wait()
}
