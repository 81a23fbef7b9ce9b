package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes content to a temporary config.yaml and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
service:
  namespace: "TEST"
  strict_validation: true
mqtt:
  broker:
    host: "localhost"
    port: 1884
    client_id_prefix: "rules-"
  qos: 2
api:
  host: "127.0.0.1"
  port: 9090
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Namespace != "TEST" {
		t.Errorf("Service.Namespace = %q, want %q", cfg.Service.Namespace, "TEST")
	}
	if !cfg.Service.StrictValidation {
		t.Error("Service.StrictValidation = false, want true")
	}
	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
	if cfg.MQTT.Broker.ClientIDPrefix != "rules-" {
		t.Errorf("MQTT.Broker.ClientIDPrefix = %q, want %q", cfg.MQTT.Broker.ClientIDPrefix, "rules-")
	}
	if cfg.MQTT.QoS != 2 {
		t.Errorf("MQTT.QoS = %d, want 2", cfg.MQTT.QoS)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
}

func TestLoad_KeepsDefaultsForOmittedSections(t *testing.T) {
	configPath := writeConfig(t, `
api:
  port: 8081
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Namespace != "BRE" {
		t.Errorf("Service.Namespace = %q, want %q", cfg.Service.Namespace, "BRE")
	}
	if cfg.MQTT.BrokerAddress() != "test.mosquitto.org:1883" {
		t.Errorf("MQTT.BrokerAddress() = %q, want %q", cfg.MQTT.BrokerAddress(), "test.mosquitto.org:1883")
	}
	if cfg.MQTT.Reconnect.Enabled {
		t.Error("MQTT.Reconnect.Enabled = true, want false by default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
service:
  namespace: "BRE/nested"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error for nested namespace, got nil")
	}
	if !strings.Contains(err.Error(), "service.namespace") {
		t.Errorf("Load() error = %v, want mention of service.namespace", err)
	}
}

func TestLoad_InvalidPortOverride(t *testing.T) {
	configPath := writeConfig(t, "api:\n  port: 8080\n")
	t.Setenv("RULESENGINE_MQTT_PORT", "not-a-number")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for non-numeric RULESENGINE_MQTT_PORT, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty namespace",
			mutate:  func(c *Config) { c.Service.Namespace = "" },
			wantErr: true,
		},
		{
			name:    "wildcard namespace",
			mutate:  func(c *Config) { c.Service.Namespace = "BRE#" },
			wantErr: true,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "broker port out of range",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "reconnect without max delay",
			mutate: func(c *Config) {
				c.MQTT.Reconnect = MQTTReconnectConfig{Enabled: true, MaxDelay: 0}
			},
			wantErr: true,
		},
		{
			name: "reconnect delay ignored when disabled",
			mutate: func(c *Config) {
				c.MQTT.Reconnect = MQTTReconnectConfig{Enabled: false, MaxDelay: 0}
			},
			wantErr: false,
		},
		{
			name:    "invalid api port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "journal enabled without path",
			mutate:  func(c *Config) { c.Database = DatabaseConfig{Enabled: true} },
			wantErr: true,
		},
		{
			name:    "journal disabled without path",
			mutate:  func(c *Config) { c.Database = DatabaseConfig{Enabled: false} },
			wantErr: false,
		},
		{
			name:    "influxdb enabled without url",
			mutate:  func(c *Config) { c.InfluxDB = InfluxDBConfig{Enabled: true, Org: "o", Bucket: "b"} },
			wantErr: true,
		},
		{
			name: "influxdb fully configured",
			mutate: func(c *Config) {
				c.InfluxDB = InfluxDBConfig{Enabled: true, URL: "http://127.0.0.1:8086", Org: "o", Bucket: "b"}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIConfig_GetTimeouts(t *testing.T) {
	cfg := APIConfig{
		Timeouts: APITimeoutConfig{
			Read:  30,
			Write: 45,
			Idle:  60,
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	t.Setenv("RULESENGINE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("RULESENGINE_MQTT_PORT", "8883")
	t.Setenv("RULESENGINE_MQTT_USERNAME", "testuser")
	t.Setenv("RULESENGINE_MQTT_PASSWORD", "testpass")
	t.Setenv("RULESENGINE_API_HOST", "192.168.1.1")
	t.Setenv("RULESENGINE_DATABASE_PATH", "/custom/path.db")
	t.Setenv("RULESENGINE_INFLUXDB_TOKEN", "secret-token")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Service.Namespace != "BRE" {
		t.Errorf("Default Service.Namespace = %q, want %q", cfg.Service.Namespace, "BRE")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("Default MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("Default MQTT.QoS = %d, want 1 (at-least-once)", cfg.MQTT.QoS)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Default API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Database.Enabled || cfg.InfluxDB.Enabled {
		t.Error("Default should leave journal and metrics disabled")
	}
}
