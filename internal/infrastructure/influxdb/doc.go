// Package influxdb provides time-series history recording for Outpost.
//
// This package manages:
//   - Connection to an InfluxDB v2 server with token auth
//   - Non-blocking batched writes of output state and input events
//   - Connection health monitoring
//
// History recording is optional infrastructure. When disabled in
// configuration, Connect returns ErrDisabled and the panel runs
// without history; when a write fails, the error surfaces through the
// async error callback and the point is dropped. Nothing in the
// request path ever blocks on InfluxDB.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // ErrDisabled or unreachable server: run without history
//	}
//	defer client.Close()
//
//	client.WriteOutputState("output01", "boolean", true)
package influxdb
