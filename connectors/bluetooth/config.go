package bluetooth

import "time"

// BluetoothConfig selects and powers the adapter
type BluetoothConfig struct {
	AdapterName     string
	PowerOnAttempts int
	PowerOnDelay    time.Duration
}

// DefaultBluetoothConfig tries to power on hci0 ten times, once per second
var DefaultBluetoothConfig = BluetoothConfig{
	AdapterName:     "hci0",
	PowerOnAttempts: 10,
	PowerOnDelay:    time.Second,
}
