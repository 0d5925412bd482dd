// Package metrics exposes a Prometheus /metrics endpoint reporting
// the sshd server's active-session count and authentication outcomes,
// grounded on the teacher's internal/mux.Hub.registerMetrics pattern
// but standing on its own http.ServeMux rather than a Connect hub.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ActiveSessionsFunc reports how many SSH connections are currently
// established. internal/sshd.Server.ActiveConnections satisfies this.
type ActiveSessionsFunc func() int

// Server serves Prometheus metrics over HTTP and satisfies
// internal/transport.Listener, so it composes with internal/sshd.Server
// under a single transport.Serve call in cmd/shenron.
type Server struct {
	addr   string
	http   *http.Server
	authOK metric.Int64Counter
}

// New builds a metrics Server listening on addr. activeSessions is
// polled on every scrape to populate the active-session gauge.
func New(addr string, activeSessions ActiveSessionsFunc) (*Server, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter("shenron")

	if _, err := meter.Int64ObservableGauge(
		"shenron_active_sessions",
		metric.WithDescription("Number of established SSH connections"),
		metric.WithInt64Callback(func(_ context.Context, obs metric.Int64Observer) error {
			obs.Observe(int64(activeSessions()))
			return nil
		}),
	); err != nil {
		return nil, err
	}

	authOK, err := meter.Int64Counter(
		"shenron_auth_attempts_total",
		metric.WithDescription("Authentication attempts, labelled by outcome"),
	)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		addr:   addr,
		http:   &http.Server{Addr: addr, Handler: mux},
		authOK: authOK,
	}, nil
}

// RecordAuthAttempt increments the authentication-attempts counter,
// tagged by outcome. It satisfies internal/sshd.Server's AuthRecorder,
// the consumer-defined interface sshd wires its PasswordCallback and
// PublicKeyCallback through so it never needs to import this package.
func (s *Server) RecordAuthAttempt(ok bool) {
	if s.authOK == nil {
		return
	}
	s.authOK.Add(context.Background(), 1, metric.WithAttributes(outcomeAttr(ok)))
}

// Start begins serving metrics and blocks until the listener stops or
// fails, satisfying internal/transport.Listener.
func (s *Server) Start(_ context.Context) error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the metrics HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func outcomeAttr(ok bool) attribute.KeyValue {
	return attribute.Bool("ok", ok)
}
