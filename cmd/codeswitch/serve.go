package main

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/codeswitch/internal/server"
)

var (
	serveAddr      string
	serveCORS      bool
	serveCacheSize int
	serveDebug     bool

	serveRedisAddr string
	serveRedisDB   int
	serveRedisTTL  time.Duration
)

func newServeCmd() *cobra.Command {
	defaults := server.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve detection over HTTP",
		Long:  "Serve POST /detect and /api/detectLanguage, health checks and Prometheus metrics at /metrics. With --redis-addr results are also cached in Redis; the password is read from REDIS_PASSWORD.",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	addDetectorFlags(cmd)
	cmd.Flags().StringVar(&serveAddr, "addr", defaults.Addr, "listen address")
	cmd.Flags().BoolVar(&serveCORS, "cors", defaults.CORS, "allow cross-origin requests from any origin")
	cmd.Flags().IntVar(&serveCacheSize, "cache-size", defaults.CacheSize, "number of cached results (0 disables)")
	cmd.Flags().BoolVar(&serveDebug, "debug", false, "run the router in debug mode")
	cmd.Flags().StringVar(&serveRedisAddr, "redis-addr", "", "Redis address for a shared result cache")
	cmd.Flags().IntVar(&serveRedisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().DurationVar(&serveRedisTTL, "redis-ttl", defaults.RedisTTL, "expiry of results cached in Redis")
	return cmd
}

func serveConfig(cmd *cobra.Command) (server.Config, error) {
	sc := fileCfg.Serve
	applyStringConfig(cmd, "addr", &serveAddr, sc.Addr)
	applyBoolConfig(cmd, "cors", &serveCORS, sc.CORS)
	applyIntConfig(cmd, "cache-size", &serveCacheSize, sc.CacheSize)
	applyStringConfig(cmd, "redis-addr", &serveRedisAddr, sc.RedisAddr)
	applyIntConfig(cmd, "redis-db", &serveRedisDB, sc.RedisDB)
	if sc.RedisTTL != nil && !cmd.Flags().Changed("redis-ttl") {
		ttl, err := time.ParseDuration(*sc.RedisTTL)
		if err != nil {
			return server.Config{}, fmt.Errorf("invalid [serve] redis-ttl: %w", err)
		}
		serveRedisTTL = ttl
	}

	cfg := server.DefaultConfig()
	cfg.Addr = serveAddr
	cfg.CORS = serveCORS
	cfg.CacheSize = serveCacheSize
	cfg.Debug = serveDebug
	cfg.RedisAddr = serveRedisAddr
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = serveRedisDB
	cfg.RedisTTL = serveRedisTTL
	return cfg, nil
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := serveConfig(cmd)
	if err != nil {
		return err
	}
	d, err := loadDetector(cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	srv, err := server.New(d, cfg, logger, reg)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return srv.Run(cmd.Context())
}
