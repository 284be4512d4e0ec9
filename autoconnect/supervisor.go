package autoconnect

import (
	"context"
	"time"

	"github.com/hannesrauhe/autoconnect/base"
	"github.com/sirupsen/logrus"
)

// SupervisorConfig configures the auto-connect supervisor
type SupervisorConfig struct {
	RetryInterval time.Duration
}

// DefaultSupervisorConfig retries every 10 seconds
var DefaultSupervisorConfig = SupervisorConfig{
	RetryInterval: 10 * time.Second,
}

type connectTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Supervisor runs one RetryConnect task per tracked device. The registry is only
// touched from the Run loop.
type Supervisor struct {
	config   SupervisorConfig
	queue    *EventQueue
	reporter Reporter
	log      logrus.FieldLogger
	tasks    map[Address]*connectTask
}

// NewSupervisor creates a supervisor that consumes events from queue
func NewSupervisor(logger logrus.FieldLogger, config SupervisorConfig, queue *EventQueue, reporter Reporter) *Supervisor {
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultSupervisorConfig.RetryInterval
	}
	if reporter == nil {
		reporter = Reporters{}
	}
	return &Supervisor{
		config:   config,
		queue:    queue,
		reporter: reporter,
		log:      logger.WithField("component", "supervisor"),
		tasks:    map[Address]*connectTask{},
	}
}

// Run starts the watcher and handles its events until the watcher ends or ctx is done.
// All tasks are stopped before Run returns. The result is the watcher's error or ctx.Err().
func (s *Supervisor) Run(ctx context.Context, w *TrustedWatcher) error {
	wctx, stopWatcher := context.WithCancel(ctx)
	defer stopWatcher()
	watcherDone := make(chan error, 1)
	go func() {
		watcherDone <- w.Start(wctx)
	}()

	bctx := base.NewContext(ctx, s.log, "supervisor")
	watcherFinished, err := s.loop(bctx, watcherDone)

	s.queue.Close()
	stopWatcher()
	if !watcherFinished {
		<-watcherDone
	}
	s.stopAll()
	return err
}

func (s *Supervisor) loop(ctx *base.Context, watcherDone <-chan error) (bool, error) {
	for {
		if ev, ok := s.queue.Pop(); ok {
			s.handleEvent(ctx, ev)
			continue
		}

		select {
		case err := <-watcherDone:
			s.log.Infof("Watcher stopped: %v", err)
			return true, err
		case <-ctx.Done():
			return false, ctx.Err()
		case <-s.queue.Wait():
		}
	}
}

func (s *Supervisor) handleEvent(ctx *base.Context, ev Event) {
	switch ev.Type {
	case DeviceAdded:
		s.startTask(ctx, ev.Device)
	case DeviceRemoved:
		s.stopTask(ev.Device)
	}
}

func (s *Supervisor) startTask(ctx *base.Context, dev Device) {
	addr := dev.Address()
	if _, ok := s.tasks[addr]; ok {
		s.log.Debugf("Auto-connect for %v is already running", addr)
		return
	}

	taskCtx, cancel := base.WithCancel(base.WithField(ctx, "device", addr.String()))
	task := &connectTask{cancel: cancel, done: make(chan struct{})}
	rc := NewRetryConnect(dev, s.config.RetryInterval, s.reporter)
	go func() {
		defer close(task.done)
		rc.Run(taskCtx)
	}()
	s.tasks[addr] = task
}

func (s *Supervisor) stopTask(dev Device) {
	addr := dev.Address()
	task, ok := s.tasks[addr]
	if !ok {
		s.log.WithField("device", addr).Warnf("%s: unknown device received in Removed event", PrettyLabel(dev))
		return
	}
	task.cancel()
	<-task.done
	delete(s.tasks, addr)
}

func (s *Supervisor) stopAll() {
	for _, task := range s.tasks {
		task.cancel()
	}
	for addr, task := range s.tasks {
		<-task.done
		delete(s.tasks, addr)
	}
}
