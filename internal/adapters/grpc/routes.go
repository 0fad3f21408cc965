package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
)

// NewRouterGRPC registers the RPC transport's services onto a grpc.Server,
// mirroring the REST transport's middleware order: telemetry, then access
// logging, then bearer auth, then the tracing span close.
func NewRouterGRPC(lg mlog.Logger, tl *mopentelemetry.Telemetry, staticAdminKey string, lookup libhttp.KeyLookup, cmd *command.UseCase, qry *query.UseCase) *grpc.Server {
	tlMid := libhttp.NewTelemetryMiddleware(tl)

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			tlMid.WithTelemetryInterceptor(tl),
			libhttp.WithGrpcLogging(libhttp.WithCustomLogger(lg)),
			withAPIKeyAuthInterceptor(staticAdminKey, lookup),
			tlMid.EndTracingSpansInterceptor(),
		),
	)

	reflection.Register(server)

	RegisterStorageControlServer(server, &StorageControlService{Command: cmd, Query: qry})

	return server
}
