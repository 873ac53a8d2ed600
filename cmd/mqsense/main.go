package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"mqsense/pkg/adc"
	"mqsense/pkg/clock"
	"mqsense/pkg/config"
	"mqsense/pkg/report"
	"mqsense/pkg/station"
)

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., /dev/ttyUSB0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Use mocked device instead of serial port")
		listenFlag   = flag.String("listen-address", "", "Metrics listen address override (e.g., :9105)")
		intervalFlag = flag.Duration("interval", time.Second, "Measurement cycle interval")
		skipBaseline = flag.Bool("skip-baseline", false, "Skip clean-air baseline calibration at boot")
	)
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *listenFlag != "" {
		cfg.Report.Metrics.ListenAddress = *listenFlag
	}

	var device adc.Device
	if *mockFlag {
		device = adc.NewMock(&cfg.Mock, cfg.ADC.FullScale)
	} else {
		device = adc.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.ADC.FullScale)
	}

	if err := device.Connect(); err != nil {
		log.Fatalf("Failed to connect to device: %v", err)
	}
	defer func() {
		if err := device.Close(); err != nil {
			log.Errorf("Failed to close device: %v", err)
		}
	}()

	st := station.New(cfg, device, clock.Real())
	st.AddReporter(report.Log{})

	if cfg.Report.MQTT.Broker != "" {
		m := report.NewMQTT(cfg.Report.MQTT)
		if err := m.Connect(); err != nil {
			log.Errorf("MQTT connect failed, continuing without it: %v", err)
		} else {
			defer m.Disconnect()
			st.AddReporter(m)
		}
	}

	if addr := cfg.Report.Metrics.ListenAddress; addr != "" {
		st.AddReporter(report.NewPrometheus(prometheus.DefaultRegisterer))
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Errorf("Metrics endpoint failed: %v", err)
			}
		}()
		log.Infof("Serving metrics on %s/metrics", addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *skipBaseline {
		log.Warn("Skipping baseline calibration; channels keep the fallback Ro")
	} else {
		log.Info("Calibrating clean-air baselines, keep the sensors in clean air")
		st.CalibrateBaselines()
	}

	log.Infof("Measurement loop started (interval %s)", *intervalFlag)
	st.Run(ctx, *intervalFlag)
	log.Info("Shutting down")
}
