//go:build !nobluetooth && linux

package bluetooth

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/hannesrauhe/autoconnect/autoconnect"
	"github.com/muka/go-bluetooth/api"
	"github.com/muka/go-bluetooth/bluez/profile/adapter"
	"github.com/muka/go-bluetooth/bluez/profile/device"
	"github.com/sirupsen/logrus"
)

// ErrDeviceNotFound is returned if BlueZ does not know the address (anymore)
var ErrDeviceNotFound = errors.New("device not found")

// Adapter is the powered BlueZ adapter the watcher discovers devices with
type Adapter struct {
	config  BluetoothConfig
	adapter *adapter.Adapter1
	conn    *dbus.Conn
	log     logrus.FieldLogger
}

var _ autoconnect.Adapter = &Adapter{}

// PowerOn gets the configured adapter and powers it on, retrying on a fixed delay
func PowerOn(ctx context.Context, logger logrus.FieldLogger, cfg BluetoothConfig) (*Adapter, error) {
	log := logger.WithField("component", "bluetooth")

	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("cannot connect to system bus: %w", err)
	}

	var a *adapter.Adapter1
	err = retryConstant(ctx, cfg.PowerOnAttempts, cfg.PowerOnDelay, func() error {
		var err error
		a, err = adapter.GetAdapter(cfg.AdapterName)
		if err != nil {
			return err
		}
		return a.SetPowered(true)
	}, func(attempt int, err error) {
		log.Warnf("Cannot power on adapter %v (attempt %d/%d): %v", cfg.AdapterName, attempt, cfg.PowerOnAttempts, err)
	})
	if err != nil {
		return nil, fmt.Errorf("cannot power on adapter %v: %w", cfg.AdapterName, err)
	}

	return &Adapter{config: cfg, adapter: a, conn: conn, log: log}, nil
}

// Name returns the interface name of the adapter, e.g. hci0
func (a *Adapter) Name() string {
	return a.config.AdapterName
}

// Address returns the hardware address of the adapter
func (a *Adapter) Address() (autoconnect.Address, error) {
	addr, err := a.adapter.GetAddress()
	if err != nil {
		return "", err
	}
	return autoconnect.ParseAddress(addr), nil
}

// DiscoveryEvents starts discovery and first replays all devices BlueZ already knows.
// Discovery is stopped and the channel closed when ctx is done.
func (a *Adapter) DiscoveryEvents(ctx context.Context) (<-chan autoconnect.DiscoveryEvent, error) {
	discovery, cancel, err := api.Discover(a.adapter, nil)
	if err != nil {
		return nil, err
	}

	known, err := a.adapter.GetDevices()
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan autoconnect.DiscoveryEvent)
	send := func(ev autoconnect.DiscoveryEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(out)
		defer cancel()

		for _, dev := range known {
			if dev == nil || dev.Properties == nil {
				continue
			}
			if !send(autoconnect.DiscoveryEvent{Type: autoconnect.DeviceDiscovered, Address: autoconnect.ParseAddress(dev.Properties.Address)}) {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-discovery:
				if !ok {
					a.log.Debug("Discovery channel closed")
					return
				}
				if ev == nil {
					continue
				}
				if !send(translateDiscovery(ev)) {
					return
				}
			}
		}
	}()
	return out, nil
}

func translateDiscovery(ev *adapter.DeviceDiscovered) autoconnect.DiscoveryEvent {
	addr, ok := addressFromPath(ev.Path)
	if !ok {
		return autoconnect.DiscoveryEvent{Type: autoconnect.DiscoveryOther}
	}
	switch ev.Type {
	case adapter.DeviceAdded:
		return autoconnect.DiscoveryEvent{Type: autoconnect.DeviceDiscovered, Address: addr}
	case adapter.DeviceRemoved:
		return autoconnect.DiscoveryEvent{Type: autoconnect.DeviceVanished, Address: addr}
	}
	return autoconnect.DiscoveryEvent{Type: autoconnect.DiscoveryOther, Address: addr}
}

// ResolveDevice returns a handle for a device known to the adapter
func (a *Adapter) ResolveDevice(addr autoconnect.Address) (autoconnect.Device, error) {
	dev, err := device.NewDevice1(devicePath(a.config.AdapterName, addr))
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, fmt.Errorf("%v: %w", addr, ErrDeviceNotFound)
	}
	return newDevice(dev, addr, a.conn), nil
}

// Shutdown releases the D-Bus resources of the bluetooth library
func (a *Adapter) Shutdown() {
	api.Exit()
}
