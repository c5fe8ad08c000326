// Package publish fans output changes and input events out to the
// optional external publishers: the MQTT broker and InfluxDB history.
//
// Both are best-effort. A missing broker or history server drops the
// update; panel operations never block on or fail from publishing.
package publish

import (
	"encoding/json"
	"time"

	"github.com/nerrad567/outpost/internal/control"
	"github.com/nerrad567/outpost/internal/hardware"
	"github.com/nerrad567/outpost/internal/infrastructure/influxdb"
	"github.com/nerrad567/outpost/internal/infrastructure/mqtt"
)

// Logger defines the logging interface used by the Publisher.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Publisher implements control.Notifier and consumes the hardware
// input event stream. Either client may be nil.
type Publisher struct {
	mqtt   *mqtt.Client
	influx *influxdb.Client
	logger Logger
}

// New creates a publisher. mqttClient and influxClient may each be nil
// when the corresponding integration is disabled.
func New(mqttClient *mqtt.Client, influxClient *influxdb.Client, logger Logger) *Publisher {
	return &Publisher{
		mqtt:   mqttClient,
		influx: influxClient,
		logger: logger,
	}
}

// outputPayload is the JSON shape published for output state changes.
type outputPayload struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// inputPayload is the JSON shape published for input transitions.
type inputPayload struct {
	Name      string    `json:"name"`
	Value     bool      `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// OutputChanged publishes a state change to the broker (retained, so
// reconnecting subscribers see current state) and records it in the
// history bucket.
func (p *Publisher) OutputChanged(name string, value control.Value) {
	if p.mqtt != nil {
		payload, err := json.Marshal(outputPayload{
			Name:      name,
			Kind:      string(value.Kind),
			Value:     value.Interface(),
			Timestamp: time.Now().UTC(),
		})
		if err == nil {
			if err := p.mqtt.PublishRetained(mqtt.Topics{}.OutputState(name), payload); err != nil {
				p.logger.Debug("output state publish dropped", "output", name, "error", err)
			}
		}
	}

	if p.influx != nil {
		p.influx.WriteOutputState(name, string(value.Kind), value.Interface())
	}
}

// HandleInput publishes one hardware input transition. The event
// channel has a single consumer, so the fan-out loop in main owns the
// drain and calls HandleInput per event.
func (p *Publisher) HandleInput(evt hardware.Event) {
	p.logger.Debug("input transition", "input", evt.Name, "value", evt.Value)

	if p.mqtt != nil {
		payload, err := json.Marshal(inputPayload{
			Name:      evt.Name,
			Value:     evt.Value,
			Timestamp: evt.Time,
		})
		if err == nil {
			if err := p.mqtt.PublishRetained(mqtt.Topics{}.InputEvent(evt.Name), payload); err != nil {
				p.logger.Debug("input event publish dropped", "input", evt.Name, "error", err)
			}
		}
	}

	if p.influx != nil {
		p.influx.WriteInputEvent(evt.Name, evt.Value, evt.Time)
	}
}
