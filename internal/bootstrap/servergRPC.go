package bootstrap

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
)

// ServerGRPC represents the gRPC server for the storage control service.
type ServerGRPC struct {
	listener     *net.Listener
	server       *grpc.Server
	protoAddress string
	mlog.Logger
}

// ProtoAddress is a convenience method to return the proto server address.
func (s *ServerGRPC) ProtoAddress() string {
	return s.protoAddress
}

// NewServerGRPC creates an instance of the gRPC Server.
func NewServerGRPC(cfg *Config, server *grpc.Server, logger mlog.Logger) *ServerGRPC {
	listener, err := net.Listen("tcp4", cfg.ProtoAddress)
	if err != nil {
		fmt.Println(err.Error())
	}

	return &ServerGRPC{
		listener:     &listener,
		server:       server,
		protoAddress: cfg.ProtoAddress,
		Logger:       logger,
	}
}

// Run starts the gRPC server.
func (s *ServerGRPC) Run(l *common.Launcher) error {
	err := s.server.Serve(*s.listener)
	if err != nil {
		return errors.Wrap(err, "failed to run the gRPC server")
	}

	info := s.server.GetServiceInfo()
	fmt.Print(info)

	return nil
}
