// Package service runs the winter supplement pipeline over MQTT.
//
// A Manager owns the broker session. Start connects with a fresh client
// identity; once the broker accepts the session the Manager subscribes to
// the namespace's input filter. Every delivered message is then decoded,
// evaluated, encoded, and published to the output topic derived from the
// topic it arrived on.
//
// Lifecycle:
//
//	Disconnected -> Connecting -> Connected -> Subscribed
//	      ^                                        |
//	      +------------- Stop / broker drop -------+
//
// A connect failure is returned from Start. A subscribe failure leaves the
// Manager Connected. Decode, encode, and publish failures are logged per
// message and never stop the next delivery from being processed.
//
// Service wraps a Manager for the HTTP trigger surface.
package service
