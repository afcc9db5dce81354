package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pondwatch/internal/handlers"
	"pondwatch/internal/logger"
	"pondwatch/internal/realtime"
	"pondwatch/internal/repository"
	"pondwatch/internal/server"
	"pondwatch/internal/service"

	"github.com/spf13/viper"
)

const (
	sweepTick      = 1 * time.Hour
	defaultSimTick = 1 * time.Second
)

func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	hub := realtime.NewHub()
	sink := service.NewHubDesktopSink(hub, viper.GetBool("desktop.permitted"))
	cfg := alertingConfig()
	services := service.NewService(repos, hub, sink, cfg, log)
	apiHandler := handlers.NewHandler(services, hub, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// evaluation loop: poll the latest reading on the alert cadence
	go services.Alerting.Run(ctx, cfg.RateLimit)

	// retention sweeper: once at start, then hourly
	go services.Retention.Run(ctx, sweepTick)

	// optional device stand-in
	if viper.GetBool("simulator.enabled") {
		go services.Simulator.Run(ctx, defaultSimTick)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")

	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("desktop.permitted", true)
	viper.SetDefault("simulator.enabled", false)
	viper.SetDefault("alerting.rate_limit", "10s")
	viper.SetDefault("alerting.emit_mode", service.EmitModePeriodic)
	viper.SetDefault("alerting.ttl", "24h")
	viper.SetDefault("alerting.limit", 99)

	return viper.ReadInConfig()
}

// alertingConfig builds the service policy from config, starting from the
// canonical defaults so a sparse config file stays valid.
func alertingConfig() service.Config {
	cfg := service.DefaultConfig()
	if d := viper.GetDuration("alerting.rate_limit"); d > 0 {
		cfg.RateLimit = d
	}
	if mode := viper.GetString("alerting.emit_mode"); mode != "" {
		cfg.EmitMode = mode
	}
	if d := viper.GetDuration("alerting.ttl"); d > 0 {
		cfg.TTL = d
	}
	if n := viper.GetInt("alerting.limit"); n > 0 {
		cfg.NotificationLimit = n
	}
	cfg.Bands = bandsFromConfig(cfg.Bands)
	return cfg
}

// bandsFromConfig overlays configured thresholds onto the defaults.
// Keys follow bands.<metric>.<display|safety>.<min|max>.
func bandsFromConfig(base service.Bands) service.Bands {
	overlay := func(b service.Band, key string) service.Band {
		if viper.IsSet(key + ".min") {
			b.Min = viper.GetFloat64(key + ".min")
		}
		if viper.IsSet(key + ".max") {
			b.Max = viper.GetFloat64(key + ".max")
		}
		return b
	}
	base.Temperature.Display = overlay(base.Temperature.Display, "bands.temperature.display")
	base.Temperature.Safety = overlay(base.Temperature.Safety, "bands.temperature.safety")
	base.PH.Display = overlay(base.PH.Display, "bands.ph.display")
	base.PH.Safety = overlay(base.PH.Safety, "bands.ph.safety")
	base.WaterLevel.Display = overlay(base.WaterLevel.Display, "bands.water_level.display")
	base.WaterLevel.Safety = overlay(base.WaterLevel.Safety, "bands.water_level.safety")
	return base
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "pondwatch.db")
		dbPath = "pondwatch.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
