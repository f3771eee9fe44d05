package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/logging"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/klauspost/compress/gzhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/encoding/protojson"
)

const (
	swaggerFile   = "railbooking.swagger.json"
	probeInterval = 15 * time.Second
)

// Check probes one dependency; a non-nil error marks the service as not serving.
type Check func(ctx context.Context) error

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	healthConn *grpc.ClientConn
	checks     map[string]Check
	logger     *slog.Logger
}

// Run starts the gRPC health server and the HTTP server (API, health gateway, swagger) and blocks
// until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, api http.Handler, checks map[string]Check, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := newServers(cfg, api, checks, logger)
	if err != nil {
		return err
	}
	defer s.healthConn.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	probeCtx, stopProbe := context.WithCancel(ctx)
	defer stopProbe()
	go s.probe(probeCtx)

	logger.Info("servers started", slog.String("http", cfg.HTTP.Address), slog.String("grpc", cfg.GRPC.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, api http.Handler, checks map[string]Check, logger *slog.Logger) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC health: %w", err)
	}

	mux := runtime.NewServeMux()
	if err := mux.HandlePath(http.MethodGet, "/healthz", healthzHandler(grpc_health_v1.NewHealthClient(conn))); err != nil {
		conn.Close()
		return nil, fmt.Errorf("register healthz: %w", err)
	}

	handler := http.NewServeMux()
	handler.Handle("/healthz", mux)
	handler.Handle("/", api)

	if cfg.HTTP.SwaggerDir != "" {
		fs := http.FileServer(http.Dir(cfg.HTTP.SwaggerDir))
		handler.Handle("/swagger/", http.StripPrefix("/swagger/", fs))
		handler.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerFile)))
		if _, err := os.Stat(filepath.Join(cfg.HTTP.SwaggerDir, swaggerFile)); err != nil {
			logger.Warn("swagger document not found", slog.String("dir", cfg.HTTP.SwaggerDir))
		}
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           gzhttp.GzipHandler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
		health:     healthSrv,
		healthConn: conn,
		checks:     checks,
		logger:     logger,
	}, nil
}

// healthzHandler reports the gRPC health status as JSON.
func healthzHandler(client grpc_health_v1.HealthClient) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
		if err != nil {
			resp = &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_UNKNOWN}
		}
		body, err := protojson.MarshalOptions{EmitUnpopulated: true}.Marshal(resp)
		if err != nil {
			http.Error(w, "failed to encode health status", http.StatusInternalServerError)
			return
		}

		status := http.StatusOK
		if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}

// probe runs the dependency checks on a ticker and publishes the result on the health server.
func (s *Servers) probe(ctx context.Context) {
	s.runChecks(ctx)
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runChecks(ctx)
		}
	}
}

func (s *Servers) runChecks(ctx context.Context) {
	status := evaluate(ctx, s.checks, s.logger)
	s.health.SetServingStatus("", status)
}

func evaluate(ctx context.Context, checks map[string]Check, logger *slog.Logger) grpc_health_v1.HealthCheckResponse_ServingStatus {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := check(checkCtx)
		cancel()
		if err != nil {
			logging.LogError(logger, "dependency check failed", err, slog.String("dependency", name))
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	return status
}
