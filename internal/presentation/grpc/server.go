package grpc

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server wraps a gRPC server with the loan engine handler registered.
type Server struct {
	gs     *grpclib.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler *Handler, logger *slog.Logger) *Server {
	gs := grpclib.NewServer()

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	if os.Getenv("GRPC_REFLECTION") == "true" {
		reflection.Register(gs)
	}

	RegisterLoanEngineServer(gs, handler)
	return &Server{gs: gs, logger: logger}
}

// Serve starts the gRPC server on the address. Blocks until Stop.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.logger.Info("gRPC server listening", "addr", addr)
	return s.gs.Serve(lis)
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	s.gs.GracefulStop()
}
