package bluetooth

import (
	"path"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/hannesrauhe/autoconnect/autoconnect"
)

const devicePathPrefix = "dev_"

// addressFromPath extracts the address from a BlueZ device path like /org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF
func addressFromPath(p dbus.ObjectPath) (autoconnect.Address, bool) {
	if !p.IsValid() {
		return "", false
	}
	base := path.Base(string(p))
	if !strings.HasPrefix(base, devicePathPrefix) {
		return "", false
	}
	raw := strings.TrimPrefix(base, devicePathPrefix)
	if len(raw) != 17 {
		return "", false
	}
	return autoconnect.ParseAddress(raw), true
}

// devicePath builds the BlueZ object path of a device below the given adapter
func devicePath(adapterName string, addr autoconnect.Address) dbus.ObjectPath {
	return dbus.ObjectPath("/org/bluez/" + adapterName + "/" + devicePathPrefix + strings.ReplaceAll(string(addr), ":", "_"))
}
