package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/rules-engine/internal/infrastructure/mqtt"
	"github.com/nerrad567/rules-engine/internal/supplement"
)

// Broker is the subset of the MQTT client the Manager drives.
// *mqtt.Client satisfies it.
type Broker interface {
	Connect(ctx context.Context, opts mqtt.ConnectOptions) error
	Subscribe(ctx context.Context, filter string, qos byte, handler mqtt.MessageHandler) error
	Publish(ctx context.Context, topic string, payload []byte, qos byte, retained bool) error
	Disconnect() error
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
}

// Logger is the structured logger the Manager writes to.
// *logging.Logger and *slog.Logger satisfy it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Manager.
type Options struct {
	// Topics supplies the input filter and output topic derivation.
	Topics mqtt.Topics

	// QoS is used for both the subscription and every published result.
	QoS byte

	// ClientIDPrefix is prepended to the random identifier of each session.
	ClientIDPrefix string

	// StrictValidation rejects requests failing supplement.Request.Validate.
	StrictValidation bool

	// Reconnect must match the broker client's auto-reconnect setting. When
	// true a dropped session stays wanted and is re-subscribed on reconnect.
	Reconnect bool

	// Logger defaults to slog.Default().
	Logger Logger

	// Observers are notified once per processed message.
	Observers []Observer
}

// Manager owns the broker session and runs the evaluation pipeline for
// every message delivered on the input filter.
//
// Thread Safety:
//   - Start and Stop are serialised; concurrent calls take turns.
//   - State may be read at any time.
//   - Message handling runs on broker delivery goroutines, concurrently
//     with other messages and with Start/Stop.
type Manager struct {
	broker    Broker
	topics    mqtt.Topics
	qos       byte
	idPrefix  string
	strict    bool
	reconnect bool
	logger    Logger
	observers []Observer

	// opMu serialises Start and Stop.
	opMu sync.Mutex

	// stateMu guards state and wanted.
	stateMu sync.RWMutex
	state   State
	// wanted is true between a successful Start and the matching Stop, or
	// until the broker drops a session that will not be re-established.
	wanted bool
}

// NewManager creates a Manager for broker and registers its connection
// callbacks on it.
func NewManager(broker Broker, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		broker:    broker,
		topics:    opts.Topics,
		qos:       opts.QoS,
		idPrefix:  opts.ClientIDPrefix,
		strict:    opts.StrictValidation,
		reconnect: opts.Reconnect,
		logger:    logger,
		observers: opts.Observers,
		state:     StateDisconnected,
	}

	broker.SetOnConnect(m.handleConnected)
	broker.SetOnDisconnect(m.handleConnectionLost)

	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// Start connects to the broker with a fresh client identity and a clean
// session. The subscription is made from the on-connect callback, so Start
// may return before the Manager reaches StateSubscribed.
//
// Starting an already connected Manager is a no-op. A failed connect
// leaves the Manager Disconnected and returns an error wrapping
// ErrConnection.
func (m *Manager) Start(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.stateMu.Lock()
	if current := m.state; current.IsConnected() {
		m.stateMu.Unlock()
		m.logger.Info("mqtt service already running", "state", current)
		return nil
	}
	m.state = StateConnecting
	m.wanted = true
	m.stateMu.Unlock()

	clientID := m.idPrefix + uuid.NewString()
	m.logger.Info("connecting to MQTT broker", "client_id", clientID)

	err := m.broker.Connect(ctx, mqtt.ConnectOptions{
		ClientID:     clientID,
		CleanSession: true,
	})
	if err != nil {
		m.stateMu.Lock()
		m.state = StateDisconnected
		m.wanted = false
		m.stateMu.Unlock()

		m.logger.Error("failed to connect to MQTT broker", "client_id", clientID, "error", err)
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	// The on-connect callback may already have advanced the state.
	m.stateMu.Lock()
	if m.state == StateConnecting {
		m.state = StateConnected
	}
	m.stateMu.Unlock()

	m.logger.Info("connected to MQTT broker", "client_id", clientID)
	return nil
}

// Stop disconnects from the broker. It is a no-op unless the Manager is
// connected or waiting on an automatic reconnect. Messages already being
// processed are not cancelled; their publish may fail and be logged.
func (m *Manager) Stop(_ context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.stateMu.Lock()
	prev := m.state
	wanted := m.wanted
	if !prev.IsConnected() && !wanted {
		m.stateMu.Unlock()
		m.logger.Debug("mqtt service not running, nothing to stop", "state", prev)
		return nil
	}
	m.wanted = false
	m.state = StateDisconnected
	m.stateMu.Unlock()

	if err := m.broker.Disconnect(); err != nil {
		m.logger.Warn("error while disconnecting from MQTT broker", "error", err)
	}

	m.logger.Info("disconnected from MQTT broker", "previous_state", prev)
	return nil
}

// handleConnected runs on the broker client's goroutine after every
// successful connect, including automatic reconnects.
func (m *Manager) handleConnected() {
	m.stateMu.Lock()
	if !m.wanted {
		m.stateMu.Unlock()
		return
	}
	if m.state != StateSubscribed {
		m.state = StateConnected
	}
	m.stateMu.Unlock()

	filter := m.topics.InputFilter()
	if err := m.broker.Subscribe(context.Background(), filter, m.qos, m.handleMessage); err != nil {
		m.logger.Error("failed to subscribe to input topic",
			"filter", filter,
			"error", fmt.Errorf("%w: %w", ErrSubscription, err),
		)
		return
	}

	m.stateMu.Lock()
	subscribed := m.wanted && m.state == StateConnected
	if subscribed {
		m.state = StateSubscribed
	}
	m.stateMu.Unlock()

	if subscribed {
		m.logger.Info("subscribed to input topic", "filter", filter, "qos", m.qos)
	}
}

// handleConnectionLost runs when the broker drops the session.
func (m *Manager) handleConnectionLost(err error) {
	m.stateMu.Lock()
	m.state = StateDisconnected
	if !m.reconnect {
		m.wanted = false
	}
	m.stateMu.Unlock()

	m.logger.Warn("disconnected from MQTT broker", "error", err, "auto_reconnect", m.reconnect)
}

// handleMessage runs the pipeline for one delivery. It never returns an
// error: every failure is logged and reported to observers at its stage.
func (m *Manager) handleMessage(topic string, payload []byte) error {
	began := time.Now()
	stage := StageDecode
	requestID := ""

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("recovered panic while processing message",
				"topic", topic,
				"stage", stage,
				"panic", r,
			)
			m.notify(Event{Topic: topic, RequestID: requestID, Stage: stage, Status: StatusFailed,
				Err: fmt.Errorf("panic: %v", r), Duration: time.Since(began)})
		}
	}()

	req, err := supplement.Decode(payload)
	if err != nil {
		m.logger.Warn("failed to deserialize input data", "topic", topic, "error", err)
		m.notify(Event{Topic: topic, Stage: stage, Status: StatusFailed, Err: err, Duration: time.Since(began)})
		return nil
	}
	requestID = req.ID

	if m.strict {
		stage = StageValidate
		if err := req.Validate(); err != nil {
			m.logger.Warn("rejected invalid request", "topic", topic, "request_id", requestID, "error", err)
			m.notify(Event{Topic: topic, RequestID: requestID, Stage: stage, Status: StatusFailed,
				Err: err, Duration: time.Since(began)})
			return nil
		}
	}

	stage = StageEvaluate
	result := supplement.Evaluate(req)
	m.logger.Debug("evaluated request",
		"request_id", requestID,
		"eligible", result.IsEligible,
		"supplement_amount", result.SupplementAmount,
	)

	stage = StageEncode
	body, err := supplement.Encode(result)
	if err != nil {
		m.logger.Error("failed to encode result", "topic", topic, "request_id", requestID, "error", err)
		m.notify(Event{Topic: topic, RequestID: requestID, Stage: stage, Status: StatusFailed,
			Err: err, Duration: time.Since(began)})
		return nil
	}

	stage = StagePublish
	outTopic := m.topics.OutputTopic(topic)
	if err := m.broker.Publish(context.Background(), outTopic, body, m.qos, false); err != nil {
		err = fmt.Errorf("%w: %w", ErrPublish, err)
		m.logger.Error("failed to publish result", "topic", outTopic, "request_id", requestID, "error", err)
		m.notify(Event{Topic: topic, RequestID: requestID, Stage: stage, Status: StatusFailed,
			Err: err, Duration: time.Since(began)})
		return nil
	}

	m.logger.Info("published result", "topic", outTopic, "request_id", requestID)
	m.notify(Event{Topic: topic, RequestID: requestID, Stage: stage, Status: StatusOK, Duration: time.Since(began)})
	return nil
}

// notify delivers e to every observer, logging their failures.
func (m *Manager) notify(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	ctx := context.Background()
	for _, o := range m.observers {
		m.observe(ctx, o, e)
	}
}

// observe calls one observer, containing its errors and panics.
func (m *Manager) observe(ctx context.Context, o Observer, e Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("pipeline observer panic recovered", "stage", e.Stage, "panic", r)
		}
	}()

	if err := o.Observe(ctx, e); err != nil {
		m.logger.Error("pipeline observer failed", "stage", e.Stage, "error", err)
	}
}
