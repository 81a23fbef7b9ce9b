package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/rules-engine/internal/infrastructure/mqtt"
)

// MockBroker implements Broker for testing.
type MockBroker struct {
	mu sync.Mutex

	connectErr   error
	subscribeErr error
	publishErr   error
	publishPanic bool

	connects      []mqtt.ConnectOptions
	subscriptions []mockSubscription
	published     []mockPublish
	disconnects   int
	connected     bool

	handler      mqtt.MessageHandler
	onConnect    func()
	onDisconnect func(err error)
}

type mockSubscription struct {
	Filter string
	QoS    byte
}

type mockPublish struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

func NewMockBroker() *MockBroker {
	return &MockBroker{}
}

func (b *MockBroker) Connect(_ context.Context, opts mqtt.ConnectOptions) error {
	b.mu.Lock()
	b.connects = append(b.connects, opts)
	if b.connectErr != nil {
		err := b.connectErr
		b.mu.Unlock()
		return fmt.Errorf("%w: %w", mqtt.ErrConnectionFailed, err)
	}
	b.connected = true
	cb := b.onConnect
	b.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

func (b *MockBroker) Subscribe(_ context.Context, filter string, qos byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = append(b.subscriptions, mockSubscription{Filter: filter, QoS: qos})
	if b.subscribeErr != nil {
		return fmt.Errorf("%w: %w", mqtt.ErrSubscribeFailed, b.subscribeErr)
	}
	b.handler = handler
	return nil
}

func (b *MockBroker) Publish(_ context.Context, topic string, payload []byte, qos byte, retained bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishPanic {
		panic("publish exploded")
	}
	if b.publishErr != nil {
		return fmt.Errorf("%w: %w", mqtt.ErrPublishFailed, b.publishErr)
	}
	b.published = append(b.published, mockPublish{
		Topic:    topic,
		Payload:  payload,
		QoS:      qos,
		Retained: retained,
	})
	return nil
}

func (b *MockBroker) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnects++
	b.connected = false
	return nil
}

func (b *MockBroker) SetOnConnect(cb func()) {
	b.mu.Lock()
	b.onConnect = cb
	b.mu.Unlock()
}

func (b *MockBroker) SetOnDisconnect(cb func(err error)) {
	b.mu.Lock()
	b.onDisconnect = cb
	b.mu.Unlock()
}

func (b *MockBroker) setPublishErr(err error) {
	b.mu.Lock()
	b.publishErr = err
	b.mu.Unlock()
}

func (b *MockBroker) setPublishPanic(v bool) {
	b.mu.Lock()
	b.publishPanic = v
	b.mu.Unlock()
}

func (b *MockBroker) GetConnects() []mqtt.ConnectOptions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]mqtt.ConnectOptions(nil), b.connects...)
}

func (b *MockBroker) GetSubscriptions() []mockSubscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]mockSubscription(nil), b.subscriptions...)
}

func (b *MockBroker) GetPublished() []mockPublish {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]mockPublish(nil), b.published...)
}

func (b *MockBroker) Disconnects() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disconnects
}

func (b *MockBroker) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// SimulateMessage delivers a message to the subscribed handler.
func (b *MockBroker) SimulateMessage(topic string, payload []byte) {
	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	if h != nil {
		_ = h(topic, payload)
	}
}

// SimulateConnectionLost drops the session as the broker would.
func (b *MockBroker) SimulateConnectionLost(err error) {
	b.mu.Lock()
	b.connected = false
	cb := b.onDisconnect
	b.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

// SimulateReconnect re-establishes the session as auto-reconnect would.
func (b *MockBroker) SimulateReconnect() {
	b.mu.Lock()
	b.connected = true
	cb := b.onConnect
	b.mu.Unlock()
	if cb != nil {
		cb()
	}
}

type logEntry struct {
	Level string
	Msg   string
	Args  []any
}

// recordingLogger implements Logger and keeps every entry.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{Level: level, Msg: msg, Args: args})
	l.mu.Unlock()
}

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (l *recordingLogger) has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Level == level && e.Msg == msg {
			return true
		}
	}
	return false
}

// hasArg reports whether an entry with level and msg carries key=value.
func (l *recordingLogger) hasArg(level, msg, key string, value any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Level != level || e.Msg != msg {
			continue
		}
		for i := 0; i+1 < len(e.Args); i += 2 {
			if e.Args[i] == key && e.Args[i+1] == value {
				return true
			}
		}
	}
	return false
}

func (l *recordingLogger) reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// recordingObserver keeps every event it sees.
type recordingObserver struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (o *recordingObserver) Observe(_ context.Context, e Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
	return o.err
}

func (o *recordingObserver) Events() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Event(nil), o.events...)
}
