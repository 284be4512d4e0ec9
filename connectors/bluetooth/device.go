//go:build !nobluetooth && linux

package bluetooth

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/hannesrauhe/autoconnect/autoconnect"
	"github.com/muka/go-bluetooth/bluez/profile/device"
)

const (
	bluezService       = "org.bluez"
	device1Interface   = "org.bluez.Device1"
	propertiesGetCall  = "org.freedesktop.DBus.Properties.Get"
	device1ConnectCall = device1Interface + ".Connect"
)

// Device wraps a BlueZ device. Calls that may block for long take a context so that a
// cancelled auto-connect task does not wait for the D-Bus timeout.
type Device struct {
	dev  *device.Device1
	addr autoconnect.Address
	conn *dbus.Conn
}

var _ autoconnect.Device = &Device{}

func newDevice(dev *device.Device1, addr autoconnect.Address, conn *dbus.Conn) *Device {
	return &Device{dev: dev, addr: addr, conn: conn}
}

func (d *Device) Address() autoconnect.Address {
	return d.addr
}

func (d *Device) Alias() (string, error) {
	return d.dev.GetAlias()
}

// Name returns false if the device did not announce a name
func (d *Device) Name() (string, bool, error) {
	name, err := d.dev.GetName()
	if err != nil {
		return "", false, err
	}
	return name, name != "", nil
}

func (d *Device) IsTrusted(ctx context.Context) (bool, error) {
	return d.boolProperty(ctx, "Trusted")
}

func (d *Device) IsConnected(ctx context.Context) (bool, error) {
	return d.boolProperty(ctx, "Connected")
}

func (d *Device) Connect(ctx context.Context) error {
	return d.object().CallWithContext(ctx, device1ConnectCall, 0).Err
}

func (d *Device) object() dbus.BusObject {
	return d.conn.Object(bluezService, d.dev.Path())
}

func (d *Device) boolProperty(ctx context.Context, name string) (bool, error) {
	var v dbus.Variant
	err := d.object().CallWithContext(ctx, propertiesGetCall, 0, device1Interface, name).Store(&v)
	if err != nil {
		return false, err
	}
	b, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("property %v of %v is %T, not bool", name, d.addr, v.Value())
	}
	return b, nil
}
