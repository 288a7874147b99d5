// Command redis-fault-proxy runs a transparent RESP proxy that sits in front
// of a Redis/Valkey instance and injects delays, synthetic errors, and
// dropped connections according to a live, HTTP-managed fault registry.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Toyota-Connected-India/red-monkey-go/internal/analyticsredis"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/config"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/controlplane"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultstore"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/logging"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/proxysession"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/telemetry"
	"github.com/Toyota-Connected-India/red-monkey-go/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info")
		bootLogger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	logger := logging.New(cfg.LogLevel)
	logger.Debug().Interface("config", cfg).Msg("loaded config")

	shutdownTracer, err := telemetry.InitTracer("redis-fault-proxy")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init tracer")
	}
	metrics := telemetry.NewMetrics()

	registry := faultstore.New()

	connector, err := upstream.New(cfg.RedisAddress, cfg.IsRedisTLSConn)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure upstream connector")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.AnalyticsRedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.AnalyticsRedisAddress})
		mirror := analyticsredis.NewMirror(client)
		go analyticsredis.RunReporter(ctx, mirror, registry, 10*time.Second, logger)
	}

	proxyAddr := net.JoinHostPort("", cfg.ProxyPort)
	listener, err := net.Listen("tcp", proxyAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", proxyAddr).Msg("failed to bind proxy listener")
	}
	logger.Info().Str("addr", proxyAddr).Msg("proxy listening")

	adapter := controlplane.NewAdapter(registry)
	controlAddr := net.JoinHostPort("", cfg.FaultConfigServerPort)
	controlServer := controlplane.NewServer(controlAddr, adapter, logger, metrics)

	go func() {
		logger.Info().Str("addr", controlAddr).Msg("fault config server listening")
		if err := controlServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("fault config server stopped unexpectedly")
		}
	}()

	go acceptLoop(ctx, listener, registry, connector, logger, metrics)

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	_ = listener.Close()
	_ = controlServer.Shutdown(shutdownCtx)
	if shutdownTracer != nil {
		_ = shutdownTracer(shutdownCtx)
	}
}

// acceptLoop accepts client connections until the listener is closed (on
// shutdown) or ctx is canceled, spawning one proxysession per connection.
func acceptLoop(ctx context.Context, listener net.Listener, registry *faultstore.Registry, connector *upstream.Connector, logger zerolog.Logger, metrics *telemetry.Metrics) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			logger.Error().Err(err).Msg("accept failed")
			return
		}

		go func() {
			sess := proxysession.New(conn, registry, logger, metrics)
			if err := sess.Run(ctx, connector); err != nil {
				logger.Debug().Str("session_id", sess.ID().String()).Err(err).Msg("session ended")
			}
		}()
	}
}
