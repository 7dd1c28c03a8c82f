package grpc_control

import (
	"fmt"
	"net"

	"market-dashboard/src/logger"

	"google.golang.org/grpc"
)

const defaultGrpcPort = 50051

// ControlServer serves ControlService over gRPC.
type ControlServer struct {
	Addr    string
	Logger  *logger.Logger
	server  *grpc.Server
	service *ControlService
}

// -----------------------------------------------------------------------------

func NewControlServer(host string, port int, service *ControlService, log *logger.Logger) *ControlServer {
	if port == 0 {
		port = defaultGrpcPort
	}
	if log == nil {
		log = logger.NewNop("ControlServer")
	}

	grpcServer := grpc.NewServer()
	RegisterDashboardControlServer(grpcServer, service)

	return &ControlServer{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Logger:  log,
		server:  grpcServer,
		service: service,
	}
}

// -----------------------------------------------------------------------------

// Start listens on Addr and blocks until Stop.
func (s *ControlServer) Start() error {
	lis, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	return s.Serve(lis)
}

// -----------------------------------------------------------------------------

// Serve runs the server on an existing listener.
func (s *ControlServer) Serve(lis net.Listener) error {
	s.Logger.Info("Starting gRPC Control Server on %s", lis.Addr())
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *ControlServer) Stop() error {
	s.server.GracefulStop()
	s.Logger.Info("gRPC Control Server stopped")
	return nil
}
