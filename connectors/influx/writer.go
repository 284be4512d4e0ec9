package influx

import (
	"errors"

	"github.com/hannesrauhe/autoconnect/autoconnect"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

// Writer stores every device report as a point, writes are batched by the client
type Writer struct {
	config   InfluxConfig
	client   influxdb2.Client
	writeApi api.WriteAPI
	log      logrus.FieldLogger
}

var _ autoconnect.Reporter = &Writer{}

// NewWriter creates the client and logs asynchronous write errors
func NewWriter(logger logrus.FieldLogger, cfg InfluxConfig) (*Writer, error) {
	if cfg.URL == "" || cfg.Token == "" || cfg.Bucket == "" || cfg.Org == "" {
		return nil, errors.New("Failed to create InfluxDB client, settings are not complete")
	}
	if cfg.Measurement == "" {
		cfg.Measurement = DefaultInfluxConfig.Measurement
	}

	w := &Writer{config: cfg, log: logger.WithField("component", "influx")}
	influxOptions := influxdb2.DefaultOptions()
	w.client = influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, influxOptions)
	w.writeApi = w.client.WriteAPI(cfg.Org, cfg.Bucket)

	errorsCh := w.writeApi.Errors()
	go func() {
		for err := range errorsCh {
			w.log.Errorf("Write error: %v", err)
		}
	}()
	return w, nil
}

func reportToPoint(measurement string, r autoconnect.Report) *write.Point {
	tags := map[string]string{"address": string(r.Address), "event": string(r.Kind)}
	if r.Label != "" {
		tags["label"] = r.Label
	}
	fields := map[string]interface{}{"count": 1}
	switch r.Kind {
	case autoconnect.ReportConnected:
		fields["connected"] = true
	case autoconnect.ReportConnectFailed, autoconnect.ReportRemoved:
		fields["connected"] = false
	}
	if r.Err != nil {
		fields["error"] = r.Err.Error()
	}
	return influxdb2.NewPoint(measurement, tags, fields, r.Time)
}

// Report queues a point for r, it never blocks on the network
func (w *Writer) Report(r autoconnect.Report) {
	if w.writeApi == nil {
		return
	}
	w.writeApi.WritePoint(reportToPoint(w.config.Measurement, r))
}

// Shutdown flushes pending points and closes the client
func (w *Writer) Shutdown() {
	if w.writeApi != nil {
		w.writeApi.Flush()
	}
	if w.client != nil {
		w.client.Close()
	}
	w.client = nil
	w.writeApi = nil
}
