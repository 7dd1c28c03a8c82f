package main

import (
	"market-dashboard/src/analysis"
	"market-dashboard/src/config"
	datasource "market-dashboard/src/data_source"
	pb "market-dashboard/src/grpc_control"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/server"
)

// -----------------------------------------------------------------------------

// startServers starts the HTTP/WebSocket server and the gRPC control server
func startServers(
	conf *config.Config,
	configPath string,
	renderer *analysis.Renderer,
	multiSource *datasource.MultiSourceManager,
	networkManager interfaces.INetworkManager,
	store interfaces.ISnapshotStore,
	appLogger *logger.Logger,
) []interfaces.IDataExchanger {

	// 1. Dashboard server
	srv := server.NewDashboardServer(conf.MConfig, renderer, logger.NewLogger(conf.MConfig, "DashboardServer"))

	// 2. gRPC Control Server
	grpcHost := conf.GrpcHost
	if grpcHost == "" {
		grpcHost = conf.Host
	}
	controlService := pb.NewControlService(conf, renderer, multiSource, configPath, logger.NewLogger(conf.MConfig, "ControlService"), networkManager, store)
	grpcServer := pb.NewControlServer(grpcHost, conf.GrpcPort, controlService, logger.NewLogger(conf.MConfig, "ControlServer"))

	servers := []interfaces.IDataExchanger{srv, grpcServer}
	for _, s := range servers {
		go func(s interfaces.IDataExchanger) {
			if err := s.Start(); err != nil {
				appLogger.Error("Server failed: %v", err)
			}
		}(s)
	}
	return servers
}

// -----------------------------------------------------------------------------

func stopServers(servers []interfaces.IDataExchanger, appLogger *logger.Logger) {
	for _, s := range servers {
		if err := s.Stop(); err != nil {
			appLogger.Error("Error stopping server: %v", err)
		}
	}
}
