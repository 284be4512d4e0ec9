package autoconnect

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrDiscoveryEnded is returned by TrustedWatcher.Start when the adapter closed the stream
var ErrDiscoveryEnded = errors.New("discovery stream ended")

type trackedDevice struct {
	dev   Device
	label string
}

// TrustedWatcher turns raw discovery notifications into Added/Removed events for
// trusted devices. The tracked set is only touched from Start's loop.
type TrustedWatcher struct {
	adapter  Adapter
	queue    *EventQueue
	reporter Reporter
	log      logrus.FieldLogger
	devices  map[Address]trackedDevice
}

// NewTrustedWatcher creates a watcher that pushes its events to queue
func NewTrustedWatcher(logger logrus.FieldLogger, adapter Adapter, queue *EventQueue, reporter Reporter) *TrustedWatcher {
	if reporter == nil {
		reporter = Reporters{}
	}
	return &TrustedWatcher{
		adapter:  adapter,
		queue:    queue,
		reporter: reporter,
		log:      logger.WithField("component", "watcher"),
		devices:  map[Address]trackedDevice{},
	}
}

// Start consumes discovery events until the stream ends, ctx is done or nobody
// receives the lifecycle events anymore
func (w *TrustedWatcher) Start(ctx context.Context) error {
	events, err := w.adapter.DiscoveryEvents(ctx)
	if err != nil {
		return fmt.Errorf("cannot start discovery: %w", err)
	}
	w.log.Debug("Started discovery")

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopped discovery")
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrDiscoveryEnded
			}
			if err := w.handleEvent(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (w *TrustedWatcher) handleEvent(ctx context.Context, ev DiscoveryEvent) error {
	switch ev.Type {
	case DeviceDiscovered:
		return w.onDeviceDiscovered(ctx, ev.Address)
	case DeviceVanished:
		return w.onDeviceVanished(ev.Address)
	}
	return nil
}

func (w *TrustedWatcher) onDeviceDiscovered(ctx context.Context, addr Address) error {
	if _, ok := w.devices[addr]; ok {
		return nil
	}

	dev, err := w.adapter.ResolveDevice(addr)
	if err != nil {
		w.log.Errorf("Failed to resolve device from address %v: %v", addr, err)
		return nil
	}

	trusted, err := dev.IsTrusted(ctx)
	if err != nil {
		w.log.Debugf("Cannot query trust of %v, treating as untrusted: %v", addr, err)
		return nil
	}
	if !trusted {
		w.log.Debugf("Device %v is not trusted", addr)
		return nil
	}

	td := trackedDevice{dev: dev, label: PrettyLabel(dev)}
	w.devices[addr] = td
	w.log.WithField("device", addr).Infof("%s: trusted device added", td.label)
	w.reporter.Report(newReport(dev, td.label, ReportAdded, nil))
	return w.queue.Push(Event{Type: DeviceAdded, Device: dev})
}

func (w *TrustedWatcher) onDeviceVanished(addr Address) error {
	td, ok := w.devices[addr]
	if !ok {
		return nil
	}
	delete(w.devices, addr)

	w.log.WithField("device", addr).Infof("%s: device removed", td.label)
	w.reporter.Report(newReport(td.dev, td.label, ReportRemoved, nil))
	return w.queue.Push(Event{Type: DeviceRemoved, Device: td.dev})
}
