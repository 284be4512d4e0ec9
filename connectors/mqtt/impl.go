package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/hannesrauhe/autoconnect/autoconnect"
	log "github.com/sirupsen/logrus"
)

// Publisher sends every device report to the broker
type Publisher struct {
	client     MQTT.Client
	config     MqttConfig
	mqttlogger log.FieldLogger
}

var _ autoconnect.Reporter = &Publisher{}

type reportMessage struct {
	Address string
	Label   string
	Event   string
	Error   string `json:",omitempty"`
	Time    time.Time
}

// NewPublisher creates the client and connects in the background
func NewPublisher(logger log.FieldLogger, cfg MqttConfig) (*Publisher, error) {
	mqttlogger := logger.WithField("component", "mqtt")

	if cfg.Server == "" {
		return nil, fmt.Errorf("no server given in the config file")
	}

	hostname, _ := os.Hostname()
	clientid := "autoconnect-" + hostname + strconv.Itoa(time.Now().Second())
	p := &Publisher{config: cfg, mqttlogger: mqttlogger}

	connOpts := MQTT.NewClientOptions().AddBroker(cfg.Server).SetClientID(clientid).SetCleanSession(true).SetOrderMatters(false)
	if cfg.Username != "" {
		connOpts.SetUsername(cfg.Username)
		if cfg.Password != "" {
			connOpts.SetPassword(cfg.Password)
		}
	}
	tlsConfig := &tls.Config{InsecureSkipVerify: true, ClientAuth: tls.NoClientCert}
	connOpts.SetTLSConfig(tlsConfig)
	connOpts.SetAutoReconnect(true)
	connOpts.SetConnectRetry(true)
	connOpts.OnConnect = func(c MQTT.Client) {
		mqttlogger.Infof("Connected to %s", cfg.Server)
	}
	connOpts.OnConnectionLost = func(c MQTT.Client, err error) {
		mqttlogger.Warnf("Connection to %s lost: %v", cfg.Server, err)
	}

	p.client = MQTT.NewClient(connOpts)
	go func() {
		if token := p.client.Connect(); token.Wait() && token.Error() != nil {
			mqttlogger.Errorf("Error when connecting to %s: %v", cfg.Server, token.Error())
		}
	}()
	return p, nil
}

func (p *Publisher) topic(addr autoconnect.Address) string {
	return strings.TrimSuffix(p.config.TopicPrefix, "/") + "/" + strings.ReplaceAll(string(addr), ":", "")
}

// Report publishes r as JSON without waiting for the broker, reports are dropped while disconnected
func (p *Publisher) Report(r autoconnect.Report) {
	msg := reportMessage{Address: string(r.Address), Label: r.Label, Event: string(r.Kind), Time: r.Time}
	if r.Err != nil {
		msg.Error = r.Err.Error()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		p.mqttlogger.Errorf("Cannot encode report for %v: %v", r.Address, err)
		return
	}

	if err := p.publish(p.topic(r.Address), payload); err != nil {
		p.mqttlogger.Debugf("Publishing report for %v failed: %v", r.Address, err)
	}
}

func (p *Publisher) publish(topic string, payload []byte) error {
	if p.client == nil {
		return fmt.Errorf("MQTT client is uninitialized")
	}
	if !p.client.IsConnectionOpen() {
		return fmt.Errorf("not connected to %v", p.config.Server)
	}
	token := p.client.Publish(topic, byte(p.config.Qos), p.config.Retain, payload)
	go p.watchToken(topic, token)
	return nil
}

// watchToken logs the outcome of a publish, the caller never waits for it
func (p *Publisher) watchToken(topic string, token MQTT.Token) {
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			p.mqttlogger.Debugf("Publishing to %v failed: %v", topic, err)
		}
	case <-time.After(p.config.PublishTimeout):
		p.mqttlogger.Debugf("Publishing to %v timed out after %v", topic, p.config.PublishTimeout)
	}
}

// Shutdown disconnects from the broker
func (p *Publisher) Shutdown() {
	if p.client == nil {
		return
	}
	p.client.Disconnect(100)
	p.client = nil
}
