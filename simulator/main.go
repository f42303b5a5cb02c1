// Command simulator publishes synthetic parking sensor readings to an
// MQTT broker, one topic per zone, for exercising the ingestion path.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pun33th45/spotmate/core/model"
)

type simConfig struct {
	Broker   string
	ClientID string
	Zones    string
	Day      int
	Interval time.Duration
	Seed     int64
	Verbose  bool
}

func main() {
	cfg := parseFlags()
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli, err := connectBroker(cfg.Broker, cfg.ClientID)
	if err != nil {
		log.Fatalf("mqtt connect: %v", err)
	}
	defer cli.Disconnect(250)

	var sensors []*sensor
	for _, spec := range strings.Split(cfg.Zones, ",") {
		s, err := newSensor(strings.TrimSpace(spec), cfg.Seed)
		if err != nil {
			log.Fatalf("zone %q: %v", spec, err)
		}
		sensors = append(sensors, s)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	hour := time.Now().Hour()
	for {
		for _, s := range sensors {
			if err := s.publish(cli, cfg.Day, hour); err != nil {
				log.Printf("publish %s: %v", s.zoneID, err)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hour = (hour + 1) % 24
		}
	}
}

func parseFlags() simConfig {
	var cfg simConfig
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&cfg.ClientID, "client-id", "spotmate-sim", "MQTT client id")
	flag.StringVar(&cfg.Zones, "zones", defaultZones(), "comma separated id:type pairs")
	flag.IntVar(&cfg.Day, "day", 1, "day index to publish readings for")
	flag.DurationVar(&cfg.Interval, "interval", 5*time.Second, "publish interval, one simulated hour per tick")
	flag.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "random seed")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()
	return cfg
}

func defaultZones() string {
	return "Z1:" + string(model.ZoneOffice) +
		",Z2:" + string(model.ZoneMall) +
		",Z3:" + string(model.ZoneResidential) +
		",Z4:" + string(model.ZoneHospital) +
		",Z5:" + string(model.ZoneStation)
}
