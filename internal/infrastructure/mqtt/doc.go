// Package mqtt provides MQTT client connectivity for Outpost.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing output state and input events under outpost/
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// The broker is optional infrastructure: Outpost publishes state
// changes so dashboards and other services can observe the panel, but
// nothing subscribes back into the request path. A disconnected broker
// drops updates; it never fails a panel operation.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    // broker unreachable: run without publishing
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.OutputState("output01")
//	client.PublishRetained(topic, []byte(`{"value":true}`))
package mqtt
