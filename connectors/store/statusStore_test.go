package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hannesrauhe/autoconnect/autoconnect"
	"gotest.tools/v3/assert"
)

const addr = autoconnect.Address("AA:BB:CC:DD:EE:FF")

func report(kind autoconnect.ReportKind, err error, ts time.Time) autoconnect.Report {
	return autoconnect.Report{Time: ts, Address: addr, Label: "[AA:BB:CC:DD:EE:FF] Speaker", Kind: kind, Err: err}
}

func TestStatusFollowsReports(t *testing.T) {
	s := NewStatusStore()
	now := time.Now()

	s.Report(report(autoconnect.ReportAdded, nil, now))
	s.Report(report(autoconnect.ReportConnecting, nil, now))
	s.Report(report(autoconnect.ReportConnectFailed, errors.New("page timeout"), now))
	s.Report(report(autoconnect.ReportConnecting, nil, now))
	s.Report(report(autoconnect.ReportConnected, nil, now))

	st, ok := s.Get(addr)
	assert.Assert(t, ok)
	assert.Equal(t, st.Tracked, true)
	assert.Equal(t, st.Connected, true)
	assert.Equal(t, st.Attempts, 2)
	assert.Equal(t, st.Failures, 1)
	assert.Equal(t, st.LastError, "")
	assert.Equal(t, st.LastEvent, autoconnect.ReportConnected)

	s.Report(report(autoconnect.ReportRemoved, nil, now))
	st, _ = s.Get(addr)
	assert.Equal(t, st.Tracked, false)
	assert.Equal(t, st.Connected, false)
}

func TestLateConnectAfterRemovalIsNotConnected(t *testing.T) {
	s := NewStatusStore()
	now := time.Now()

	s.Report(report(autoconnect.ReportAdded, nil, now))
	s.Report(report(autoconnect.ReportConnecting, nil, now))
	s.Report(report(autoconnect.ReportRemoved, nil, now))
	s.Report(report(autoconnect.ReportConnected, nil, now))

	st, _ := s.Get(addr)
	assert.Equal(t, st.Tracked, false)
	assert.Equal(t, st.Connected, false)

	s.Report(report(autoconnect.ReportAdded, nil, now))
	s.Report(report(autoconnect.ReportConnected, nil, now))
	s.Report(report(autoconnect.ReportStopped, nil, now))
	st, _ = s.Get(addr)
	assert.Equal(t, st.Connected, false)
}

func TestDeleteOlderOnlyForgetsRemovedDevices(t *testing.T) {
	s := NewStatusStore()
	old := time.Now().Add(-2 * time.Hour)

	s.Report(report(autoconnect.ReportAdded, nil, old))
	s.Report(autoconnect.Report{Time: old, Address: "11:22:33:44:55:66", Kind: autoconnect.ReportRemoved})
	s.Report(autoconnect.Report{Time: time.Now(), Address: "22:22:33:44:55:66", Kind: autoconnect.ReportRemoved})

	assert.Equal(t, s.DeleteOlder(time.Hour), 1)
	all := s.GetAll()
	assert.Equal(t, len(all), 2)
	assert.Equal(t, all[0].Address, autoconnect.Address("22:22:33:44:55:66"))
	assert.Equal(t, all[1].Address, addr)
}

func TestStatusJSON(t *testing.T) {
	s := NewStatusStore()
	s.Report(report(autoconnect.ReportConnectFailed, errors.New("busy"), time.Now()))

	st, _ := s.Get(addr)
	b, err := json.Marshal(st)
	assert.NilError(t, err)

	readable := ReadableDeviceStatus{}
	assert.NilError(t, json.Unmarshal(b, &readable))
	assert.Equal(t, readable.Address, string(addr))
	assert.Equal(t, readable.LastEvent, "connect_failed")
	assert.Equal(t, readable.LastError, "busy")
}
