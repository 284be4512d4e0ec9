package autoconnect

import (
	"time"

	"github.com/hannesrauhe/autoconnect/base"
)

// RetryConnect keeps a single device connected by retrying on a fixed interval
type RetryConnect struct {
	device   Device
	label    string
	interval time.Duration
	reporter Reporter
}

// NewRetryConnect creates the task for device, the label is resolved once
func NewRetryConnect(device Device, interval time.Duration, reporter Reporter) *RetryConnect {
	if reporter == nil {
		reporter = Reporters{}
	}
	return &RetryConnect{device: device, label: PrettyLabel(device), interval: interval, reporter: reporter}
}

// Run tries to connect every interval until ctx is cancelled, it never gives up on its own
func (rc *RetryConnect) Run(ctx *base.Context) {
	ctx.GetLogger().Debugf("%s: auto-connect started", rc.label)
	timer := time.NewTimer(rc.interval)
	defer timer.Stop()

	for {
		rc.connectDevice(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(rc.interval)

		select {
		case <-ctx.Done():
			ctx.GetLogger().Debugf("%s: auto-connect stopped", rc.label)
			rc.reporter.Report(newReport(rc.device, rc.label, ReportStopped, nil))
			return
		case <-timer.C:
		}
	}
}

func (rc *RetryConnect) connectDevice(ctx *base.Context) {
	if ctx.Err() != nil {
		return
	}
	logger := ctx.GetLogger()
	connected, err := rc.device.IsConnected(ctx.GoContext)
	if err == nil && connected {
		return
	}

	logger.Infof("%s: attempting to connect", rc.label)
	rc.reporter.Report(newReport(rc.device, rc.label, ReportConnecting, nil))

	err = rc.device.Connect(ctx.GoContext)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Infof("%s: connection failed, reason=%v", rc.label, err)
		rc.reporter.Report(newReport(rc.device, rc.label, ReportConnectFailed, err))
		return
	}
	logger.Infof("%s: connected successfully", rc.label)
	rc.reporter.Report(newReport(rc.device, rc.label, ReportConnected, nil))
}
