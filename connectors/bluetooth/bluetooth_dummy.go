//go:build nobluetooth || !linux

package bluetooth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hannesrauhe/autoconnect/autoconnect"
	"github.com/sirupsen/logrus"
)

// ErrDeviceNotFound is returned if BlueZ does not know the address (anymore)
var ErrDeviceNotFound = errors.New("device not found")

var errNotAvailable = fmt.Errorf("Bluetooth support not available")

// Adapter acts as a dummy
type Adapter struct {
}

var _ autoconnect.Adapter = &Adapter{}

// PowerOn acts as a dummy
func PowerOn(ctx context.Context, logger logrus.FieldLogger, cfg BluetoothConfig) (*Adapter, error) {
	return nil, errNotAvailable
}

// Name acts as a dummy
func (a *Adapter) Name() string {
	return ""
}

// Address acts as a dummy
func (a *Adapter) Address() (autoconnect.Address, error) {
	return "", errNotAvailable
}

// DiscoveryEvents acts as a dummy
func (a *Adapter) DiscoveryEvents(ctx context.Context) (<-chan autoconnect.DiscoveryEvent, error) {
	return nil, errNotAvailable
}

// ResolveDevice acts as a dummy
func (a *Adapter) ResolveDevice(addr autoconnect.Address) (autoconnect.Device, error) {
	return nil, ErrDeviceNotFound
}

// Shutdown acts as a dummy
func (a *Adapter) Shutdown() {
}
