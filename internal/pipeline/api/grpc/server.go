package grpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/nemanja-m/stylize/internal/shared/config"
	"github.com/nemanja-m/stylize/internal/shared/logging"
)

// PipelineService is the health service name reported for the transformation
// pipeline. The empty name reports overall server health.
const PipelineService = "stylize.Pipeline"

type Server struct {
	addr       string
	grpcServer *grpc.Server
	health     *health.Server
	logger     logging.Logger
}

func NewServer(cfg config.GRPCConfig, logger logging.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             cfg.KeepaliveMinTime,
			PermitWithoutStream: true,
		}),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(PipelineService, healthpb.HealthCheckResponse_NOT_SERVING)

	if cfg.EnableReflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		addr:       cfg.Addr,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}
}

// SetServing flips the pipeline health status.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(PipelineService, status)
	s.logger.Debug("Health status changed", "service", PipelineService, "status", status.String())
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health server listening", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// Stop reports NOT_SERVING to watchers and drains open streams.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
