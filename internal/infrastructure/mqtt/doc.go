// Package mqtt provides MQTT client connectivity for the rules engine.
//
// This package manages:
//   - Sessions with the broker, one fresh client identity per Connect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Topic naming for the winter supplement request/result exchange
//
// # Delivery model
//
// The paho client runs with ordered delivery disabled, so every inbound
// message is handed to its handler on its own goroutine. Handlers are
// wrapped with panic recovery; a failure while handling one message never
// affects the next.
//
// # Reconnection
//
// Auto-reconnect is off unless mqtt.reconnect.enabled is set. When it is
// on, subscriptions are not replayed by this package; the owner subscribes
// again from its on-connect callback.
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT)
//	client.SetOnConnect(func() {
//	    _ = client.Subscribe(ctx, mqtt.Topics{Namespace: "BRE"}.InputFilter(), 1, handle)
//	})
//	if err := client.Connect(ctx, mqtt.ConnectOptions{ClientID: id, CleanSession: true}); err != nil {
//	    return err
//	}
//	defer client.Disconnect()
package mqtt
