package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/rules-engine/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for the rules engine.
//
// A Client is created unconnected. Every call to Connect builds a fresh
// paho client with the identifier supplied by the caller, so one Client can
// be started and stopped any number of times.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Connect/Disconnect are expected to be serialised by the owner.
type Client struct {
	cfg config.MQTTConfig

	client   pahomqtt.Client
	clientMu sync.RWMutex

	// Callbacks for connection events (optional, set via SetOnConnect/SetOnDisconnect).
	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	// logger for error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked in separate goroutines by the paho library because
// the client is configured without ordered delivery.
//
// Returns:
//   - error: Logged but does not affect message acknowledgment
type MessageHandler func(topic string, payload []byte) error

// ConnectOptions carries the per-connection session parameters.
type ConnectOptions struct {
	// ClientID identifies this session to the broker. Required.
	ClientID string

	// CleanSession asks the broker to discard any state held for ClientID.
	CleanSession bool
}

// New creates an unconnected Client for the given broker configuration.
func New(cfg config.MQTTConfig) *Client {
	return &Client{cfg: cfg}
}

// Connect establishes a session with the broker.
//
// Any previous session held by this Client is discarded first. The call
// blocks until the broker acknowledges the connection, the connect timeout
// elapses, or ctx is done.
//
// The on-connect callback fires asynchronously after the broker accepts the
// session, and again after every automatic reconnect when enabled.
func (c *Client) Connect(ctx context.Context, opts ConnectOptions) error {
	if opts.ClientID == "" {
		return fmt.Errorf("%w: client id is required", ErrConnectionFailed)
	}

	pahoOpts := buildClientOptions(c.cfg, opts)
	pahoOpts.SetOnConnectHandler(func(from pahomqtt.Client) {
		c.handleConnect(from)
	})
	pahoOpts.SetConnectionLostHandler(func(from pahomqtt.Client, err error) {
		c.handleDisconnect(from, err)
	})

	pc := pahomqtt.NewClient(pahoOpts)

	c.clientMu.Lock()
	previous := c.client
	c.client = pc
	c.clientMu.Unlock()

	// A previous client waiting on auto-reconnect reports a closed
	// connection but is still alive; Disconnect stops its retry loop too.
	if previous != nil {
		previous.Disconnect(defaultDisconnectQuiesce)
	}

	if err := waitToken(ctx, pc.Connect(), defaultConnectTimeout); err != nil {
		pc.Disconnect(0)
		c.clientMu.Lock()
		if c.client == pc {
			c.client = nil
		}
		c.clientMu.Unlock()
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return nil
}

// handleConnect is called by paho when a session is established. Events
// from a client that has since been replaced or disconnected are dropped.
func (c *Client) handleConnect(from pahomqtt.Client) {
	if from != c.current() {
		return
	}
	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called by paho when the connection is lost unexpectedly.
// A client-initiated Disconnect does not trigger it. Events from a replaced
// client are dropped.
func (c *Client) handleDisconnect(from pahomqtt.Client, err error) {
	if from != c.current() {
		return
	}
	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// Disconnect closes the current session, waiting up to the quiesce period
// for in-flight work. Disconnecting a Client that never connected is not an
// error.
func (c *Client) Disconnect() error {
	c.clientMu.Lock()
	pc := c.client
	c.client = nil
	c.clientMu.Unlock()

	if pc == nil {
		return nil
	}

	pc.Disconnect(defaultDisconnectQuiesce)
	return nil
}

// HealthCheck verifies the MQTT connection is alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected reports whether the current session is open.
func (c *Client) IsConnected() bool {
	pc := c.current()
	return pc != nil && pc.IsConnectionOpen()
}

// current returns the active paho client (may be nil).
func (c *Client) current() pahomqtt.Client {
	c.clientMu.RLock()
	defer c.clientMu.RUnlock()
	return c.client
}

// SetOnConnect sets a callback to be invoked when a session is established.
// This is called on initial connect and on every automatic reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback to be invoked when the connection is lost.
// The error parameter describes why the connection was lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for handler errors and recovered panics.
// If not set, they are silently dropped.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and optional logging.
// A panic in one delivery never unregisters the handler for later ones.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}

// waitToken blocks until the token completes, the timeout elapses, or ctx
// is done, whichever comes first.
func waitToken(ctx context.Context, token pahomqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
}
