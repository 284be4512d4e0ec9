package influx

// InfluxConfig configures writing device reports to InfluxDB
type InfluxConfig struct {
	Enabled     bool
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// DefaultInfluxConfig is disabled
var DefaultInfluxConfig = InfluxConfig{
	Enabled:     false,
	URL:         "http://localhost:8086",
	Measurement: "bluetooth_autoconnect",
}
