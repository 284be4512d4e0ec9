package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/hannesrauhe/autoconnect/autoconnect"
	"github.com/sirupsen/logrus"
)

// DeviceStatus is the last known state of a device as seen by the watcher and its auto-connect task
type DeviceStatus struct {
	Address   autoconnect.Address
	Label     string
	Tracked   bool
	Connected bool
	LastEvent autoconnect.ReportKind
	LastError string
	Attempts  int
	Failures  int
	Updated   time.Time
}

// ReadableDeviceStatus is a DeviceStatus with a more readable timestamp
type ReadableDeviceStatus struct {
	Address   string
	Label     string
	Tracked   bool
	Connected bool
	LastEvent string
	LastError string `json:",omitempty"`
	Attempts  int
	Failures  int
	Age       string
}

// GetHumanReadable returns a readable version of the status
func (d DeviceStatus) GetHumanReadable() ReadableDeviceStatus {
	return ReadableDeviceStatus{
		Address:   string(d.Address),
		Label:     d.Label,
		Tracked:   d.Tracked,
		Connected: d.Connected,
		LastEvent: string(d.LastEvent),
		LastError: d.LastError,
		Attempts:  d.Attempts,
		Failures:  d.Failures,
		Age:       time.Since(d.Updated).Truncate(time.Second).String(),
	}
}

// MarshalJSON provides a custom marshaller with better readable time formats
func (d DeviceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.GetHumanReadable())
}

// StatusStore keeps a DeviceStatus per address, it is filled by the reports of watcher and tasks
type StatusStore struct {
	entries map[autoconnect.Address]*DeviceStatus
	lck     sync.Mutex
}

var _ autoconnect.Reporter = &StatusStore{}

// NewStatusStore creates an empty store
func NewStatusStore() *StatusStore {
	return &StatusStore{entries: map[autoconnect.Address]*DeviceStatus{}}
}

// Report updates the status of the reported device
func (s *StatusStore) Report(r autoconnect.Report) {
	s.lck.Lock()
	defer s.lck.Unlock()

	st, ok := s.entries[r.Address]
	if !ok {
		st = &DeviceStatus{Address: r.Address}
		s.entries[r.Address] = st
	}
	st.Label = r.Label
	st.LastEvent = r.Kind
	st.Updated = r.Time

	switch r.Kind {
	case autoconnect.ReportAdded:
		st.Tracked = true
	case autoconnect.ReportRemoved:
		st.Tracked = false
		st.Connected = false
	case autoconnect.ReportConnecting:
		st.Attempts++
		st.Connected = false
	case autoconnect.ReportConnected:
		// an attempt can finish after the device was removed
		st.Connected = st.Tracked
		st.LastError = ""
	case autoconnect.ReportConnectFailed:
		st.Failures++
		st.Connected = false
		if r.Err != nil {
			st.LastError = r.Err.Error()
		}
	case autoconnect.ReportStopped:
		st.Connected = false
	}
}

// Get returns a copy of the status of addr
func (s *StatusStore) Get(addr autoconnect.Address) (DeviceStatus, bool) {
	s.lck.Lock()
	defer s.lck.Unlock()
	st, ok := s.entries[addr]
	if !ok {
		return DeviceStatus{}, false
	}
	return *st, true
}

// GetAll returns copies of all statuses ordered by address
func (s *StatusStore) GetAll() []DeviceStatus {
	s.lck.Lock()
	defer s.lck.Unlock()
	all := make([]DeviceStatus, 0, len(s.entries))
	for _, st := range s.entries {
		all = append(all, *st)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Address < all[j].Address })
	return all
}

// DeleteOlder drops devices that are no longer tracked and were not updated within maxAge
func (s *StatusStore) DeleteOlder(maxAge time.Duration) int {
	s.lck.Lock()
	defer s.lck.Unlock()
	tnow := time.Now()
	deleted := 0
	for addr, st := range s.entries {
		if !st.Tracked && st.Updated.Add(maxAge).Before(tnow) {
			delete(s.entries, addr)
			deleted++
		}
	}
	return deleted
}

// StartPruning periodically forgets removed devices until ctx is done
func (s *StatusStore) StartPruning(ctx context.Context, logger logrus.FieldLogger, cfg StoreConfig) {
	if cfg.PruneInterval <= 0 || cfg.ForgetDeviceDuration <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.PruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.DeleteOlder(cfg.ForgetDeviceDuration); n > 0 {
					logger.Debugf("Forgot %d removed devices", n)
				}
			}
		}
	}()
}
