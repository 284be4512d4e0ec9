package autoconnect

import (
	"context"
	"errors"
	"sync"
)

var errNotFound = errors.New("device not found")

type fakeDevice struct {
	addr     Address
	alias    string
	name     string
	hasName  bool
	trusted  bool
	trustErr error

	lck              sync.Mutex
	connected        bool
	connectedErr     error
	connectErrs      []error
	connectCalls     int
	isConnectedCalls int
}

var _ Device = &fakeDevice{}

func (d *fakeDevice) Address() Address { return d.addr }

func (d *fakeDevice) Alias() (string, error) { return d.alias, nil }

func (d *fakeDevice) Name() (string, bool, error) { return d.name, d.hasName, nil }

func (d *fakeDevice) IsTrusted(ctx context.Context) (bool, error) {
	return d.trusted, d.trustErr
}

func (d *fakeDevice) IsConnected(ctx context.Context) (bool, error) {
	d.lck.Lock()
	defer d.lck.Unlock()
	d.isConnectedCalls++
	if d.connectedErr != nil {
		return false, d.connectedErr
	}
	return d.connected, nil
}

func (d *fakeDevice) Connect(ctx context.Context) error {
	d.lck.Lock()
	defer d.lck.Unlock()
	d.connectCalls++
	if len(d.connectErrs) > 0 {
		err := d.connectErrs[0]
		d.connectErrs = d.connectErrs[1:]
		return err
	}
	d.connected = true
	return nil
}

func (d *fakeDevice) calls() (connect int, isConnected int) {
	d.lck.Lock()
	defer d.lck.Unlock()
	return d.connectCalls, d.isConnectedCalls
}

type fakeAdapter struct {
	events  chan DiscoveryEvent
	devices map[Address]*fakeDevice
}

var _ Adapter = &fakeAdapter{}

func newFakeAdapter(devices ...*fakeDevice) *fakeAdapter {
	a := &fakeAdapter{events: make(chan DiscoveryEvent, 16), devices: map[Address]*fakeDevice{}}
	for _, d := range devices {
		a.devices[d.addr] = d
	}
	return a
}

func (a *fakeAdapter) DiscoveryEvents(ctx context.Context) (<-chan DiscoveryEvent, error) {
	return a.events, nil
}

func (a *fakeAdapter) ResolveDevice(addr Address) (Device, error) {
	d, ok := a.devices[addr]
	if !ok {
		return nil, errNotFound
	}
	return d, nil
}

type recordingReporter struct {
	lck     sync.Mutex
	reports []Report
}

func (r *recordingReporter) Report(rep Report) {
	r.lck.Lock()
	defer r.lck.Unlock()
	r.reports = append(r.reports, rep)
}

func (r *recordingReporter) kinds(addr Address) []ReportKind {
	r.lck.Lock()
	defer r.lck.Unlock()
	kinds := []ReportKind{}
	for _, rep := range r.reports {
		if rep.Address == addr {
			kinds = append(kinds, rep.Kind)
		}
	}
	return kinds
}

func (r *recordingReporter) count(addr Address, kind ReportKind) int {
	n := 0
	for _, k := range r.kinds(addr) {
		if k == kind {
			n++
		}
	}
	return n
}

func drain(q *EventQueue) []Event {
	events := []Event{}
	for {
		ev, ok := q.Pop()
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}
