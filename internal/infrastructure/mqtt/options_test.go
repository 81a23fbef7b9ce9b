package mqtt

import (
	"testing"
	"time"

	"github.com/nerrad567/rules-engine/internal/infrastructure/config"
)

func optionsTestConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host: "test.mosquitto.org",
			Port: 1883,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			Enabled:  false,
			MaxDelay: 30,
		},
	}
}

func TestBuildClientOptions_Defaults(t *testing.T) {
	opts := buildClientOptions(optionsTestConfig(), ConnectOptions{ClientID: "abc", CleanSession: true})

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://test.mosquitto.org:1883" {
		t.Errorf("Servers = %v, want [tcp://test.mosquitto.org:1883]", opts.Servers)
	}
	if opts.ClientID != "abc" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "abc")
	}
	if !opts.CleanSession {
		t.Error("CleanSession = false, want true")
	}
	if opts.Order {
		t.Error("Order = true, want false (concurrent delivery)")
	}
	if opts.AutoReconnect {
		t.Error("AutoReconnect = true, want false when reconnect is disabled")
	}
	if opts.ConnectRetry {
		t.Error("ConnectRetry = true, want false")
	}
	if opts.Username != "" {
		t.Errorf("Username = %q, want empty", opts.Username)
	}
	if opts.TLSConfig != nil {
		t.Error("TLSConfig set without TLS enabled")
	}
	if opts.WillEnabled {
		t.Error("WillEnabled = true, want no last will")
	}
}

func TestBuildClientOptions_ReconnectEnabled(t *testing.T) {
	cfg := optionsTestConfig()
	cfg.Reconnect.Enabled = true

	opts := buildClientOptions(cfg, ConnectOptions{ClientID: "abc"})

	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
	if opts.ConnectRetry {
		t.Error("ConnectRetry = true, want false so the first connect fails fast")
	}
	if opts.MaxReconnectInterval != 30*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 30s", opts.MaxReconnectInterval)
	}
}

func TestBuildClientOptions_AuthAndTLS(t *testing.T) {
	cfg := optionsTestConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883
	cfg.Auth = config.MQTTAuthConfig{Username: "user", Password: "secret"}

	opts := buildClientOptions(cfg, ConnectOptions{ClientID: "abc"})

	if opts.Servers[0].String() != "ssl://test.mosquitto.org:8883" {
		t.Errorf("Servers[0] = %v, want ssl://test.mosquitto.org:8883", opts.Servers[0])
	}
	if opts.Username != "user" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want user/secret", opts.Username, opts.Password)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLSConfig missing or below minimum version")
	}
}
