// Rules Engine - Winter Supplement Calculator
//
// This is the main entry point for the rules engine service. It listens on
// an MQTT broker for eligibility requests, evaluates the winter supplement
// rules, and publishes one result per request. The broker session is
// started and stopped through the HTTP trigger endpoints.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	_ "github.com/nerrad567/rules-engine/migrations"

	"github.com/nerrad567/rules-engine/internal/api"
	"github.com/nerrad567/rules-engine/internal/infrastructure/config"
	"github.com/nerrad567/rules-engine/internal/infrastructure/database"
	"github.com/nerrad567/rules-engine/internal/infrastructure/influxdb"
	"github.com/nerrad567/rules-engine/internal/infrastructure/logging"
	"github.com/nerrad567/rules-engine/internal/infrastructure/mqtt"
	"github.com/nerrad567/rules-engine/internal/journal"
	"github.com/nerrad567/rules-engine/internal/service"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// startupHealthTimeout bounds the health checks run once everything is wired.
const startupHealthTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component, serves until ctx is cancelled, then tears
// everything down in reverse order.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting rules engine",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	var observers []service.Observer
	checks := make(map[string]api.HealthChecker)

	// Pipeline event journal (optional)
	var journalRepo journal.Repository
	if cfg.Database.Enabled {
		db, dbErr := database.Open(ctx, database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening database: %w", dbErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database connected", "path", db.Path())
		checks["database"] = db

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database migrations complete")

		repo := journal.NewSQLiteRepository(db.DB)
		journalRepo = repo
		observers = append(observers, repo)
	} else {
		log.Info("pipeline journal disabled")
	}

	// Pipeline metrics (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		observers = append(observers, metricsObserver(influxClient))
		checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// Broker session and pipeline
	mqttClient := mqtt.New(cfg.MQTT)
	mqttClient.SetLogger(log)

	manager := service.NewManager(mqttClient, service.Options{
		Topics:           mqtt.Topics{Namespace: cfg.Service.Namespace},
		QoS:              byte(cfg.MQTT.QoS), //nolint:gosec // validated 0-2 by config
		ClientIDPrefix:   cfg.MQTT.Broker.ClientIDPrefix,
		StrictValidation: cfg.Service.StrictValidation,
		Reconnect:        cfg.MQTT.Reconnect.Enabled,
		Logger:           log,
		Observers:        observers,
	})
	svc := service.New(manager, log)
	defer func() {
		log.Info("stopping broker session")
		if stopErr := manager.Stop(context.Background()); stopErr != nil {
			log.Error("error stopping broker session", "error", stopErr)
		}
	}()
	log.Info("rules engine ready",
		"broker", cfg.MQTT.BrokerAddress(),
		"input_filter", mqtt.Topics{Namespace: cfg.Service.Namespace}.InputFilter(),
	)

	// HTTP trigger surface
	apiServer, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		Lifecycle: svc,
		Journal:   journalRepo,
		Version:   version,
		Broker:    mqttClient,
		Checks:    checks,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	startupChecks := map[string]api.HealthChecker{"api": apiServer}
	for name, c := range checks {
		startupChecks[name] = c
	}
	if healthErr := healthCheck(ctx, startupChecks); healthErr != nil {
		return fmt.Errorf("startup health check: %w", healthErr)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// healthCheck runs every check under startupHealthTimeout and reports the
// first failure.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	ctx, cancel := context.WithTimeout(ctx, startupHealthTimeout)
	defer cancel()

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := checks[name].HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// metricsObserver forwards pipeline outcomes to InfluxDB.
func metricsObserver(c *influxdb.Client) service.Observer {
	return service.ObserverFunc(func(_ context.Context, e service.Event) error {
		c.WritePipelineEvent(string(e.Stage), string(e.Status), e.Duration, e.At)
		return nil
	})
}

// getConfigPath returns the configuration file path.
// Checks RULESENGINE_CONFIG environment variable first, then uses default.
func getConfigPath() string {
	if path := os.Getenv("RULESENGINE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
