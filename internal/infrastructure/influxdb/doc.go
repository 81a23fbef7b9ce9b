// Package influxdb writes pipeline outcome metrics to InfluxDB v2.
//
// Each processed message becomes one point in the supplement_pipeline
// measurement, tagged with the last stage it reached and whether that
// stage succeeded. Dashboards derive throughput and failure rates from the
// count field and latency from duration_ms.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics off
//	}
//	defer client.Close()
//
//	client.WritePipelineEvent("publish", "ok", elapsed, time.Now())
//
// Writes are batched and asynchronous; register SetOnError to log failures.
package influxdb
