package store

import "time"

// StoreConfig controls how long the store remembers devices that are gone
type StoreConfig struct {
	ForgetDeviceDuration time.Duration // removed devices are dropped after this time
	PruneInterval        time.Duration
}

// DefaultStoreConfig forgets removed devices after an hour
var DefaultStoreConfig = StoreConfig{
	ForgetDeviceDuration: time.Hour,
	PruneInterval:        time.Minute,
}
