package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// PipelineMeasurement is the measurement pipeline outcomes are written to.
const PipelineMeasurement = "supplement_pipeline"

// WritePipelineEvent records one processed message.
//
// Tags are the final stage reached and its status; fields are a count of
// one and the processing time in milliseconds. No request data is written.
// The write is non-blocking and dropped when the client is closed.
func (c *Client) WritePipelineEvent(stage, status string, duration time.Duration, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(pipelinePoint(stage, status, duration, at))
}

// pipelinePoint builds the point written by WritePipelineEvent.
func pipelinePoint(stage, status string, duration time.Duration, at time.Time) *write.Point {
	if at.IsZero() {
		at = time.Now()
	}
	return write.NewPoint(
		PipelineMeasurement,
		map[string]string{
			"stage":  stage,
			"status": status,
		},
		map[string]interface{}{
			"count":       int64(1),
			"duration_ms": float64(duration) / float64(time.Millisecond),
		},
		at,
	)
}
