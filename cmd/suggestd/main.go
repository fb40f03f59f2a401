// suggestd is the query suggestion daemon. It loads the tool registry,
// builds the intent engine, and serves the HTTP API. Redis-backed
// conversation context and Postgres-backed history are optional: the
// daemon runs without either, it just answers every query stateless.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eda-copilot/internal/common/config"
	"eda-copilot/internal/common/database"
	"eda-copilot/internal/common/logger"
	"eda-copilot/internal/contextstore"
	"eda-copilot/internal/executor"
	"eda-copilot/internal/history"
	"eda-copilot/internal/intent"
	"eda-copilot/internal/registry"
	"eda-copilot/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: search ./configs)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting suggestd", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	reg, err := loadRegistry(cfg.Registry.Path)
	if err != nil {
		log.Error("loading tool registry failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	log.Info("tool registry loaded", map[string]interface{}{
		"tools":   reg.Len(),
		"version": reg.Version,
	})

	engine, err := intent.New(reg, log, intent.WithThreshold(cfg.Engine.ConfidenceThreshold))
	if err != nil {
		log.Error("building intent engine failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	opts := server.Options{
		ExecTimeout: config.GetDuration(cfg.Executor.Timeout),
		DryRunOnly:  cfg.Executor.DryRunOnly,
		Runner:      executor.NewExecRunner(config.GetDuration(cfg.Executor.Timeout), log),
	}

	var closers []func() error

	if cfg.Database.Redis.Enabled() {
		rdb, err := connectRedis(cfg.Database.Redis, log)
		if err != nil {
			log.Error("redis unavailable", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		closers = append(closers, rdb.Close)
		opts.Contexts = contextstore.New(rdb.Client, config.GetDuration(cfg.Engine.ContextTTL), log)
		log.Info("conversation context enabled", map[string]interface{}{
			"address": cfg.Database.Redis.Address,
		})
	} else {
		log.Warn("redis not configured, conversation context disabled", nil)
	}

	if cfg.Database.Postgres.Enabled() {
		pg, err := connectPostgres(cfg.Database.Postgres, log)
		if err != nil {
			log.Error("postgres unavailable", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		closers = append(closers, pg.Close)

		store := history.New(pg.DB, log)
		if err := store.EnsureSchema(context.Background()); err != nil {
			log.Error("history schema setup failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		opts.Histories = store
		log.Info("query history enabled", map[string]interface{}{
			"host": cfg.Database.Postgres.Host,
		})
	} else {
		log.Warn("postgres not configured, query history disabled", nil)
	}

	srv := server.New(engine, reg, log, opts)
	httpSrv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		log.Info("listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warn("closing connection failed", map[string]interface{}{"error": err.Error()})
		}
	}
	log.Info("stopped", nil)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func loadRegistry(path string) (*registry.Registry, error) {
	if path != "" {
		return registry.Load(path)
	}
	return registry.Default()
}

// connectRedis pings with backoff so a daemon racing its database in a
// fresh deployment settles instead of crash-looping.
func connectRedis(cfg config.RedisConfig, log logger.Logger) (*database.RedisClient, error) {
	rdb, err := database.NewRedis(cfg)
	if err != nil {
		return nil, err
	}
	if err := retryPing(rdb.Ping, log, "redis"); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func connectPostgres(cfg config.PostgresConfig, log logger.Logger) (*database.PostgresClient, error) {
	pg, err := database.NewPostgres(cfg)
	if err != nil {
		return nil, err
	}
	if err := retryPing(pg.Ping, log, "postgres"); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return pg, nil
}

func retryPing(ping func(context.Context) error, log logger.Logger, name string) error {
	const attempts = 5
	var err error
	for i := 1; i <= attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		log.Warn("connection attempt failed", map[string]interface{}{
			"target":  name,
			"attempt": i,
			"error":   err.Error(),
		})
		time.Sleep(time.Duration(i) * time.Second)
	}
	return err
}
