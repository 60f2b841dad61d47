// Package server exposes detection over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verte-zerg/codeswitch/internal/detect"
	"github.com/verte-zerg/codeswitch/internal/model"
)

const (
	serviceName     = "language-detector"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 5 * time.Second

	redisPingTimeout = 2 * time.Second
)

// Config configures the HTTP server.
type Config struct {
	Addr         string
	CORS         bool
	CacheSize    int
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool

	// RedisAddr enables a Redis result cache shared between instances.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

// DefaultConfig listens on :8000 with CORS and a 1024-entry cache.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8000",
		CORS:         true,
		CacheSize:    1024,
		MaxBodyBytes: 1 << 20,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		RedisTTL:     time.Hour,
	}
}

type cacheKey struct {
	text      string
	threshold float64
}

// Server serves detection requests with a shared Detector.
type Server struct {
	cfg      Config
	detector *detect.Detector
	logger   *slog.Logger
	engine   *gin.Engine
	cache    *lru.Cache[cacheKey, model.Result]
	remote   *remoteCache
	metrics  *Metrics
}

// New builds the router. A nil registry gets a private one; CacheSize <= 0
// disables caching.
func New(d *detect.Detector, cfg Config, logger *slog.Logger, reg *prometheus.Registry) (*Server, error) {
	if d == nil {
		return nil, errors.New("server: detector is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	s := &Server{cfg: cfg, detector: d, logger: logger, metrics: metrics, remote: newRemoteCache(cfg)}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[cacheKey, model.Result](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		s.cache = cache
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	if cfg.CORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", requestIDHeader}
		engine.Use(cors.New(corsConfig))
	}

	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)
	engine.GET("/api/health", s.handleHealth)
	engine.POST("/detect", s.handleDetect)
	engine.POST("/api/detect", s.handleDetect)
	engine.POST("/api/detectLanguage", s.handleDetect)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Close releases the Redis connection pool, if any.
func (s *Server) Close() error {
	if s.remote == nil {
		return nil
	}
	return s.remote.close()
}

// Run listens on cfg.Addr until ctx is cancelled, then drains in-flight
// requests. An unreachable Redis is logged and detection falls back to the
// local cache.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Warn("close redis", "error", err)
		}
	}()
	if s.remote != nil {
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		if err := s.remote.ping(pingCtx); err != nil {
			s.logger.Warn("redis unavailable", "addr", s.cfg.RedisAddr, "error", err)
		}
		cancel()
	}
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// detect classifies text through the local cache, then Redis.
func (s *Server) detect(ctx context.Context, text string, threshold float64) model.Result {
	start := time.Now()
	key := cacheKey{text: text, threshold: threshold}
	if s.cache != nil {
		if res, ok := s.cache.Get(key); ok {
			s.metrics.cacheLookup(cacheHit)
			s.metrics.observe(res.Verdict(), time.Since(start))
			return res
		}
		s.metrics.cacheLookup(cacheMiss)
	}
	if s.remote != nil {
		res, ok, err := s.remote.get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("remote cache lookup failed", "error", err)
		case ok:
			s.metrics.cacheLookup(cacheRemoteHit)
			if s.cache != nil {
				s.cache.Add(key, res)
			}
			s.metrics.observe(res.Verdict(), time.Since(start))
			return res
		}
	}

	res := s.detector.Detect(text, threshold)
	if s.cache != nil {
		s.cache.Add(key, res)
	}
	if s.remote != nil {
		if err := s.remote.set(ctx, key, res); err != nil {
			s.logger.Warn("remote cache store failed", "error", err)
		}
	}
	s.metrics.observe(res.Verdict(), time.Since(start))
	return res
}
