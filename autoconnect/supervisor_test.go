package autoconnect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hannesrauhe/autoconnect/base"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"
)

func newTestSupervisor(logger logrus.FieldLogger) (*Supervisor, *recordingReporter, *base.Context) {
	rep := &recordingReporter{}
	s := NewSupervisor(logger, SupervisorConfig{RetryInterval: 10 * time.Millisecond}, NewEventQueue(), rep)
	return s, rep, base.NewContext(context.Background(), logger, "test")
}

func TestAtMostOneTaskPerDevice(t *testing.T) {
	s, _, ctx := newTestSupervisor(logrus.StandardLogger())
	dev := &fakeDevice{addr: addrA, connected: true}
	defer s.stopAll()

	s.handleEvent(ctx, Event{Type: DeviceAdded, Device: dev})
	first := s.tasks[addrA]
	s.handleEvent(ctx, Event{Type: DeviceAdded, Device: dev})
	s.handleEvent(ctx, Event{Type: DeviceAdded, Device: dev})

	assert.Equal(t, len(s.tasks), 1)
	assert.Equal(t, s.tasks[addrA], first)
}

func TestUnknownRemovedIsLogged(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	s, _, ctx := newTestSupervisor(logger)
	other := &fakeDevice{addr: "11:22:33:44:55:66", connected: true}
	defer s.stopAll()

	s.handleEvent(ctx, Event{Type: DeviceAdded, Device: other})
	s.handleEvent(ctx, Event{Type: DeviceRemoved, Device: &fakeDevice{addr: addrA}})

	assert.Equal(t, len(s.tasks), 1)
	_, ok := s.tasks[other.addr]
	assert.Assert(t, ok)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "[AA:BB:CC:DD:EE:FF]: unknown device received in Removed event" {
			warnings++
		}
	}
	assert.Equal(t, warnings, 1)
}

func TestRemovedCancelsTask(t *testing.T) {
	s, rep, ctx := newTestSupervisor(logrus.StandardLogger())
	dev := &fakeDevice{addr: addrA, connectErrs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}

	s.handleEvent(ctx, Event{Type: DeviceAdded, Device: dev})
	poll.WaitOn(t, func(t poll.LogT) poll.Result {
		if rep.count(addrA, ReportConnectFailed) == 0 {
			return poll.Continue("no attempt yet")
		}
		return poll.Success()
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(5*time.Millisecond))

	s.handleEvent(ctx, Event{Type: DeviceRemoved, Device: dev})
	assert.Equal(t, len(s.tasks), 0)
	assert.Equal(t, rep.count(addrA, ReportStopped), 1)

	connectCalls, _ := dev.calls()
	time.Sleep(50 * time.Millisecond)
	connectCallsLater, _ := dev.calls()
	assert.Equal(t, connectCalls, connectCallsLater)

	s.handleEvent(ctx, Event{Type: DeviceAdded, Device: dev})
	assert.Equal(t, len(s.tasks), 1)
	s.stopAll()
	assert.Equal(t, rep.count(addrA, ReportStopped), 2)
}

func TestRunConnectsTrustedDevices(t *testing.T) {
	trusted := &fakeDevice{addr: addrA, alias: "Speaker", trusted: true}
	untrusted := &fakeDevice{addr: "11:22:33:44:55:66", trusted: false}
	adapter := newFakeAdapter(trusted, untrusted)
	queue := NewEventQueue()
	rep := &recordingReporter{}
	w := NewTrustedWatcher(logrus.StandardLogger(), adapter, queue, rep)
	s := NewSupervisor(logrus.StandardLogger(), SupervisorConfig{RetryInterval: 10 * time.Millisecond}, queue, rep)

	result := make(chan error, 1)
	go func() {
		result <- s.Run(context.Background(), w)
	}()

	adapter.events <- discovered(untrusted.addr)
	adapter.events <- discovered(trusted.addr)
	poll.WaitOn(t, func(t poll.LogT) poll.Result {
		if rep.count(addrA, ReportConnected) == 0 {
			return poll.Continue("device not connected yet")
		}
		return poll.Success()
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(5*time.Millisecond))

	close(adapter.events)
	assert.ErrorIs(t, <-result, ErrDiscoveryEnded)

	assert.DeepEqual(t, rep.kinds(addrA), []ReportKind{ReportAdded, ReportConnecting, ReportConnected, ReportStopped})
	assert.Equal(t, len(rep.kinds(untrusted.addr)), 0)
	assert.Equal(t, len(s.tasks), 0)
}

func TestRunStopsWithContext(t *testing.T) {
	dev := &fakeDevice{addr: addrA, trusted: true, connected: true}
	adapter := newFakeAdapter(dev)
	queue := NewEventQueue()
	rep := &recordingReporter{}
	w := NewTrustedWatcher(logrus.StandardLogger(), adapter, queue, rep)
	s := NewSupervisor(logrus.StandardLogger(), SupervisorConfig{RetryInterval: 10 * time.Millisecond}, queue, rep)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- s.Run(ctx, w)
	}()

	adapter.events <- discovered(addrA)
	poll.WaitOn(t, func(t poll.LogT) poll.Result {
		if _, isConnectedCalls := dev.calls(); isConnectedCalls == 0 {
			return poll.Continue("task not started yet")
		}
		return poll.Success()
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(5*time.Millisecond))

	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)
	assert.Equal(t, rep.count(addrA, ReportStopped), 1)
	assert.ErrorIs(t, queue.Push(Event{Type: DeviceAdded, Device: dev}), ErrNoReceiver)
}
