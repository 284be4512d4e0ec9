package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	logrus "github.com/sirupsen/logrus"

	"github.com/hannesrauhe/autoconnect/autoconnect"
	"github.com/hannesrauhe/autoconnect/connectors/bluetooth"
	"github.com/hannesrauhe/autoconnect/connectors/influx"
	"github.com/hannesrauhe/autoconnect/connectors/mqtt"
	"github.com/hannesrauhe/autoconnect/connectors/store"
	"github.com/hannesrauhe/autoconnect/listen"
	"github.com/hannesrauhe/autoconnect/utils"
)

var verbose bool

type loggingConfig struct {
	Level            logrus.Level
	DisableTimestamp bool
	DisableQuote     bool
}

func configureLogging(cr *utils.ConfigReader, logger *logrus.Logger) {
	loggingConfig := loggingConfig{Level: logrus.InfoLevel, DisableTimestamp: false, DisableQuote: false}
	if err := cr.ReadSectionWithDefaults("logging", &loggingConfig); err != nil {
		logger.Errorf("Cannot read logging config: %v", err)
	}
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: loggingConfig.DisableTimestamp,
		DisableQuote:     loggingConfig.DisableQuote,
	})
	logger.SetLevel(loggingConfig.Level)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
}

func readSection(logger *logrus.Logger, cr *utils.ConfigReader, name string, cfg interface{}) {
	if err := cr.ReadSectionWithDefaults(name, cfg); err != nil {
		logger.Fatal(err)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	var configpath string
	flag.StringVar(&configpath, "c", utils.GetDefaultPath("autoconnect"), "Specify config file to use")
	flag.BoolVar(&verbose, "v", false, "Verbose output")
	flag.Parse()

	logger := logrus.StandardLogger()
	cr, err := utils.NewConfigReader(logger.WithField("component", "config"), configpath)
	if err != nil {
		logger.Fatal(err)
	}
	configureLogging(cr, logger)
	logger.Debugf("Version %v", utils.BuildFullVersion())

	btConfig := bluetooth.DefaultBluetoothConfig
	supervisorConfig := autoconnect.DefaultSupervisorConfig
	storeConfig := store.DefaultStoreConfig
	mqttConfig := mqtt.DefaultMqttConfig
	influxConfig := influx.DefaultInfluxConfig
	httpConfig := listen.DefaultHttpConfig
	readSection(logger, cr, "bluetooth", &btConfig)
	readSection(logger, cr, "autoconnect", &supervisorConfig)
	readSection(logger, cr, "store", &storeConfig)
	readSection(logger, cr, "mqtt", &mqttConfig)
	readSection(logger, cr, "influx", &influxConfig)
	readSection(logger, cr, "http", &httpConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapter, err := bluetooth.PowerOn(ctx, logger, btConfig)
	if err != nil {
		logger.Errorf("Cannot power on adapter: %v", err)
		return 1
	}
	defer adapter.Shutdown()

	adapterAddress, err := adapter.Address()
	if err != nil {
		logger.Errorf("Cannot read address of adapter %v: %v", adapter.Name(), err)
		return 1
	}
	logger.Printf("Discovering on Bluetooth adapter %v with address %v", adapter.Name(), adapterAddress)

	statusStore := store.NewStatusStore()
	statusStore.StartPruning(ctx, logger.WithField("component", "store"), storeConfig)
	reporters := autoconnect.Reporters{statusStore}

	if mqttConfig.Enabled {
		publisher, err := mqtt.NewPublisher(logger, mqttConfig)
		if err != nil {
			logger.Errorf("MQTT not started: %v", err)
		} else {
			defer publisher.Shutdown()
			reporters = append(reporters, publisher)
		}
	}
	if influxConfig.Enabled {
		writer, err := influx.NewWriter(logger, influxConfig)
		if err != nil {
			logger.Errorf("InfluxDB not started: %v", err)
		} else {
			defer writer.Shutdown()
			reporters = append(reporters, writer)
		}
	}
	if httpConfig.Enabled {
		http := listen.NewStatusHttp(logger, httpConfig, statusStore)
		http.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			http.Shutdown(shutdownCtx)
		}()
	}

	queue := autoconnect.NewEventQueue()
	watcher := autoconnect.NewTrustedWatcher(logger, adapter, queue, reporters)
	supervisor := autoconnect.NewSupervisor(logger, supervisorConfig, queue, reporters)

	err = supervisor.Run(ctx, watcher)
	if errors.Is(err, context.Canceled) {
		logger.Printf("Shutting down")
		return 0
	}
	logger.Errorf("Stopped: %v", err)
	return 1
}
