package mqtt

import "time"

// MqttConfig configures publishing of device reports
type MqttConfig struct {
	Enabled        bool
	Server         string // The full url of the MQTT server to connect to ex: tcp://127.0.0.1:1883
	Username       string // A username to authenticate to the MQTT server
	Password       string // Password to match username
	TopicPrefix    string // reports are published to <TopicPrefix>/<address>
	Qos            int
	Retain         bool
	PublishTimeout time.Duration
}

// DefaultMqttConfig is disabled
var DefaultMqttConfig = MqttConfig{
	Enabled:        false,
	Server:         "tcp://localhost:1883",
	TopicPrefix:    "autoconnect/devices",
	Qos:            0,
	Retain:         true,
	PublishTimeout: time.Second,
}
