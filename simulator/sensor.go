package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/core/model"
)

func connectBroker(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetKeepAlive(30 * time.Second).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return cli, nil
}

// sensor emits readings for one zone, drawing occupancy from the same
// diurnal profiles the dataset generator uses.
type sensor struct {
	zoneID string
	typ    model.ZoneType
	gen    *dataset.Generator
}

// newSensor parses an "id:type" spec.
func newSensor(spec string, seed int64) (*sensor, error) {
	id, typ, ok := strings.Cut(spec, ":")
	if !ok || id == "" {
		return nil, fmt.Errorf("want id:type, got %q", spec)
	}
	zt, err := model.ParseZoneType(typ)
	if err != nil {
		return nil, err
	}
	gen, err := dataset.NewGenerator(dataset.GeneratorConfig{
		Seed:  seed + int64(len(id)) + int64(id[0]),
		Zones: map[string]string{id: typ},
	})
	if err != nil {
		return nil, err
	}
	return &sensor{zoneID: id, typ: zt, gen: gen}, nil
}

func (s *sensor) publish(cli paho.Client, day, hour int) error {
	reading := model.OccupancyReading{
		ZoneID:    s.zoneID,
		Day:       day,
		Hour:      hour,
		Occupancy: s.gen.Sample(s.typ, day, hour),
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("parking/zone/%s/occupancy", s.zoneID)
	token := cli.Publish(topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("%s day=%d hour=%d occupancy=%.0f", topic, day, hour, reading.Occupancy)
	return nil
}
