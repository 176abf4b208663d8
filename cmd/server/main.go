/*
main.go - Server entry point

PURPOSE:
  Wires configuration, dataset provider, cache backend and the HTTP
  router, then runs the server with graceful shutdown on SIGINT/SIGTERM.

USAGE:
  server [-config config.yaml] [-port 8080]

SEE ALSO:
  - config/config.go: Configuration precedence
  - api/server.go: Router assembly
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warp/sales-analytics/api"
	"github.com/warp/sales-analytics/config"
	"github.com/warp/sales-analytics/dataset"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Dataset provider.
	var (
		provider dataset.Provider
		demo     *dataset.Memory
	)
	switch cfg.Provider.Driver {
	case "", "memory":
		demo = dataset.NewMemory()
		provider = demo
		log.Printf("provider: in-memory (demo scenarios enabled)")
	default:
		sqlProvider, err := dataset.OpenSQL(cfg.Provider.Driver, cfg.Provider.DSN)
		if err != nil {
			log.Fatalf("provider: %v", err)
		}
		defer sqlProvider.Close()
		provider = sqlProvider
		log.Printf("provider: %s", cfg.Provider.Driver)
	}

	// Cache backend.
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	var source dataset.RowSource
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		source = dataset.NewRedisCache(client, provider, ttl)
		log.Printf("cache: redis at %s, ttl %s", cfg.Cache.RedisAddr, ttl)
	default:
		source = dataset.NewCache(provider, ttl)
		log.Printf("cache: in-process, ttl %s", ttl)
	}

	// Optional background cache warming.
	if cfg.Cache.RefreshMinutes > 0 {
		refresher := dataset.NewRefresher(source,
			[]string{cfg.Datasets.DashboardSummary, cfg.Datasets.Analytics},
			time.Duration(cfg.Cache.RefreshMinutes)*time.Minute)
		refresher.Start()
		defer refresher.Stop()
	}

	handler := api.NewHandler(source, cfg.Datasets.DashboardSummary, cfg.Datasets.Analytics, demo)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
