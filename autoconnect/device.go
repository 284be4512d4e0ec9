package autoconnect

import (
	"context"
	"strings"
)

// Address is the hardware address of a bluetooth device, e.g. "AA:BB:CC:DD:EE:FF"
type Address string

// ParseAddress normalizes a textual address to the upper case colon notation
func ParseAddress(s string) Address {
	return Address(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", ":")))
}

func (a Address) String() string {
	return string(a)
}

// Device is a shared handle to a physical device. Implementations must be safe for
// concurrent use by the watcher and the retry task bound to the device.
type Device interface {
	Address() Address
	Alias() (string, error)
	// Name returns false if the device does not expose a name
	Name() (string, bool, error)
	IsTrusted(ctx context.Context) (bool, error)
	IsConnected(ctx context.Context) (bool, error)
	Connect(ctx context.Context) error
}

// DiscoveryEventType distinguishes raw notifications of the adapter
type DiscoveryEventType int

const (
	// DeviceDiscovered is sent when a device appeared or changed
	DeviceDiscovered DiscoveryEventType = iota
	// DeviceVanished is sent when the adapter dropped the device
	DeviceVanished
	// DiscoveryOther is anything the watcher does not care about
	DiscoveryOther
)

// DiscoveryEvent is a raw notification from the adapter
type DiscoveryEvent struct {
	Type    DiscoveryEventType
	Address Address
}

// Adapter is the part of the bluetooth adapter the watcher consumes
type Adapter interface {
	// DiscoveryEvents returns a stream that is closed when ctx is done or discovery ended
	DiscoveryEvents(ctx context.Context) (<-chan DiscoveryEvent, error)
	ResolveDevice(addr Address) (Device, error)
}
