// Outpost - Embedded Device Control Panel
//
// This is the main entry point for the Outpost panel service. Outpost
// drives a small set of wall-panel outputs (relays, dimmer levels,
// display text) from a single-admin web API, persisting every value in
// SQLite so state survives restarts and applying configured power-up
// defaults at boot.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/outpost/migrations"

	"github.com/nerrad567/outpost/internal/api"
	"github.com/nerrad567/outpost/internal/control"
	"github.com/nerrad567/outpost/internal/hardware"
	"github.com/nerrad567/outpost/internal/infrastructure/config"
	"github.com/nerrad567/outpost/internal/infrastructure/database"
	"github.com/nerrad567/outpost/internal/infrastructure/influxdb"
	"github.com/nerrad567/outpost/internal/infrastructure/logging"
	"github.com/nerrad567/outpost/internal/infrastructure/mqtt"
	"github.com/nerrad567/outpost/internal/msglog"
	"github.com/nerrad567/outpost/internal/publish"
	"github.com/nerrad567/outpost/internal/schedule"
	"github.com/nerrad567/outpost/internal/session"
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

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Outpost",
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

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// A missing database file means this is a first boot; worth a
	// message-log entry once the store is up.
	_, statErr := os.Stat(cfg.Database.Path)
	freshDatabase := os.IsNotExist(statErr)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Load the output/input registry. An empty registry is fatal: a
	// panel with nothing to control is misconfigured, not degraded.
	registry, err := control.LoadRegistry(cfg.Registry.File)
	if err != nil {
		return fmt.Errorf("loading output registry: %w", err)
	}
	log.Info("output registry loaded",
		"outputs", registry.Len(),
		"inputs", len(registry.Inputs()),
	)

	// Seed store rows for every configured output and the admin
	// credential. Existing rows are left untouched.
	ctrlRepo := control.NewSQLiteRepository(db.DB)
	if err := ctrlRepo.Seed(ctx, registry.Outputs()); err != nil {
		return fmt.Errorf("seeding output state: %w", err)
	}

	sessRepo := session.NewSQLiteRepository(db.DB)
	passwordHash, err := session.HashPassword(cfg.Session.DefaultPassword)
	if err != nil {
		return fmt.Errorf("hashing default password: %w", err)
	}
	if err := sessRepo.Ensure(ctx, cfg.Session.Username, passwordHash); err != nil {
		return fmt.Errorf("seeding admin credential: %w", err)
	}

	messages := msglog.NewSQLiteLog(db.DB)
	sessions := session.NewCoordinator(sessRepo, messages, cfg.CooldownWindow())
	sessions.SetLogger(log)

	// Hardware is best-effort: any failure here degrades the panel to
	// store-only mode rather than stopping it.
	drv := setupHardware(cfg, registry, log)
	defer func() {
		if closeErr := drv.Close(); closeErr != nil {
			log.Error("error closing hardware", "error", closeErr)
		}
	}()

	resolver := control.NewResolver(registry, ctrlRepo, drv)
	resolver.SetLogger(log)

	// Apply power-up values before any request is served.
	if err := resolver.ApplyPowerUp(ctx); err != nil {
		return fmt.Errorf("applying power-up values: %w", err)
	}

	if freshDatabase {
		if err := messages.Append(ctx, "new database created"); err != nil {
			log.Warn("message append failed", "error", err)
		}
	}
	if err := messages.Append(ctx, "service started"); err != nil {
		log.Warn("message append failed", "error", err)
	}

	// External publishers are optional infrastructure. Connection
	// failures are logged and the panel runs without them.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("MQTT unavailable, state publishing disabled", "error", err)
			mqttClient = nil
		} else {
			mqttClient.SetLogger(log)
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
		}
	}

	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
		influxClient = nil
	case err != nil:
		log.Warn("InfluxDB unavailable, history recording disabled", "error", err)
		influxClient = nil
	default:
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	publisher := publish.New(mqttClient, influxClient, log)
	hub := api.NewHub(log)

	// Every output write fans out to the broker, history and connected
	// panel clients.
	resolver.SetNotifier(multiNotifier{publisher, hub})

	// Input edges have a single consumer on the driver channel; this
	// loop owns the drain and fans out from here.
	go func() {
		for evt := range drv.Events() {
			publisher.HandleInput(evt)
			hub.InputChanged(evt)
			if err := messages.Append(context.Background(), fmt.Sprintf("%s changed to %t", evt.Name, evt.Value)); err != nil {
				log.Warn("message append failed", "error", err)
			}
		}
	}()

	loop := schedule.New(resolver, publisher, messages, schedule.DefaultInterval, log)
	go loop.Run(ctx)

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Session:  cfg.Session,
		Panel:    cfg.Panel,
		Logger:   log,
		Resolver: resolver,
		Sessions: sessions,
		Messages: messages,
		Hardware: drv,
		DB:       db,
		Hub:      hub,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// setupHardware opens the GPIO chip and claims every configured line.
// Any failure falls back to the null driver: the panel keeps serving
// from the store and hardware reads report unavailable.
func setupHardware(cfg *config.Config, registry *control.Registry, log *logging.Logger) hardware.Driver {
	if !cfg.Hardware.Enabled {
		log.Info("hardware disabled, running store-only")
		return hardware.NewNull()
	}

	gpio := hardware.NewGPIO(cfg.Hardware.Chip)

	for _, def := range registry.Outputs() {
		if def.Hardware == nil {
			continue
		}
		if err := gpio.ClaimOutput(def.Hardware.Line); err != nil {
			log.Warn("output line unavailable, store-only for this output",
				"output", def.Name, "line", def.Hardware.Line, "error", err)
		}
	}

	for _, input := range registry.Inputs() {
		if err := gpio.WatchInput(input.Name, input.Line, input.PullUp); err != nil {
			log.Warn("input line unavailable",
				"input", input.Name, "line", input.Line, "error", err)
		}
	}

	log.Info("hardware initialised", "chip", cfg.Hardware.Chip)
	return gpio
}

// multiNotifier fans one output change out to several notifiers.
type multiNotifier []control.Notifier

func (m multiNotifier) OutputChanged(name string, value control.Value) {
	for _, n := range m {
		n.OutputChanged(name, value)
	}
}

// getConfigPath returns the configuration file path.
// Uses OUTPOST_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("OUTPOST_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
