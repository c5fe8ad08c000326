package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteOutputState records an output value change.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Boolean values are recorded as 0/1 so they graph alongside integers;
// text values are recorded as a string field.
//
// Example:
//
//	client.WriteOutputState("output01", "boolean", true)
//	client.WriteOutputState("brightness", "integer", int64(128))
func (c *Client) WriteOutputState(name string, kind string, value any) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{}
	switch v := value.(type) {
	case bool:
		n := 0
		if v {
			n = 1
		}
		fields["value"] = n
	case int64:
		fields["value"] = v
	case string:
		fields["text"] = v
	default:
		return
	}

	point := write.NewPoint(
		"output_state",
		map[string]string{
			"output": name,
			"kind":   kind,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteInputEvent records an input line transition.
func (c *Client) WriteInputEvent(name string, value bool, at time.Time) {
	if !c.IsConnected() {
		return
	}

	n := 0
	if value {
		n = 1
	}

	point := write.NewPoint(
		"input_event",
		map[string]string{
			"input": name,
		},
		map[string]interface{}{
			"value": n,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}
