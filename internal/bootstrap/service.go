package bootstrap

import (
	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
)

// Service is the application glue where every top-level component is
// wired together to be launched.
type Service struct {
	*Server
	ServerGRPC *ServerGRPC
	mlog.Logger
}

// Run starts both the REST and the RPC transport. This is the only code a
// main.go needs once Service is assembled.
func (app *Service) Run() {
	common.NewLauncher(
		common.WithLogger(app.Logger),
		common.RunApp("server", app.Server),
		common.RunApp("serverGRPC", app.ServerGRPC),
	).Run()
}
