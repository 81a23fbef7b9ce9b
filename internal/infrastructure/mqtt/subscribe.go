package mqtt

import (
	"context"
	"fmt"
)

// Subscribe registers a handler for messages matching the topic filter.
//
// Filters may use MQTT wildcards:
//   - + (single-level)
//   - # (multi-level), e.g. "BRE/calculateWinterSupplementInput/#"
//
// The subscription lives only as long as the current session. Callers that
// enable auto-reconnect re-subscribe from their on-connect callback.
func (c *Client) Subscribe(ctx context.Context, filter string, qos byte, handler MessageHandler) error {
	if filter == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	pc := c.current()
	if pc == nil || !pc.IsConnectionOpen() {
		return ErrNotConnected
	}

	if err := waitToken(ctx, pc.Subscribe(filter, qos, c.wrapHandler(handler)), defaultOperationTimeout); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}
