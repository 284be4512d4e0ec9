package autoconnect

import "time"

// ReportKind describes what happened to a device
type ReportKind string

const (
	ReportAdded         ReportKind = "added"
	ReportRemoved       ReportKind = "removed"
	ReportConnecting    ReportKind = "connecting"
	ReportConnected     ReportKind = "connected"
	ReportConnectFailed ReportKind = "connect_failed"
	ReportStopped       ReportKind = "stopped"
)

// Report is sent for every lifecycle transition and connect attempt
type Report struct {
	Time    time.Time
	Address Address
	Label   string
	Kind    ReportKind
	Err     error
}

// Reporter receives reports concurrently from the watcher and all retry tasks
type Reporter interface {
	Report(r Report)
}

// Reporters fans a report out to all of its members
type Reporters []Reporter

var _ Reporter = Reporters{}

// Report forwards r to every reporter in order
func (rs Reporters) Report(r Report) {
	for _, rep := range rs {
		if rep != nil {
			rep.Report(r)
		}
	}
}

func newReport(d Device, label string, kind ReportKind, err error) Report {
	return Report{Time: time.Now(), Address: d.Address(), Label: label, Kind: kind, Err: err}
}
