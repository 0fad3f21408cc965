package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mmongo"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mpostgres"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mrabbitmq"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mredis"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mzap"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/grpc"
	in "github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/http/in"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/mongodb/audit"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/apikey"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/branch"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/bucket"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/file"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/project"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/settings"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/snapshot"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/table"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/rabbitmq"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/bootstrap"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/branchoverlay"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/idempotency"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/importexport"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/pathresolver"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/snapshotsettings"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/tablelock"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
)

func main() {
	common.InitLocalEnvConfig()

	cfg := bootstrap.NewConfig()

	logger := mzap.InitializeLogger()

	telemetry := &mopentelemetry.Telemetry{
		LibraryName:               cfg.OtelLibraryName,
		ServiceName:               cfg.OtelServiceName,
		ServiceVersion:            cfg.OtelServiceVersion,
		DeploymentEnv:             cfg.OtelDeploymentEnv,
		CollectorExporterEndpoint: cfg.OtelColExporterEndpoint,
	}

	postgresSourcePrimary := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.PrimaryDBHost, cfg.PrimaryDBUser, cfg.PrimaryDBPassword, cfg.PrimaryDBName, cfg.PrimaryDBPort)

	postgresSourceReplica := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.ReplicaDBHost, cfg.ReplicaDBUser, cfg.ReplicaDBPassword, cfg.ReplicaDBName, cfg.ReplicaDBPort)

	postgresConnection := &mpostgres.PostgresConnection{
		ConnectionStringPrimary: postgresSourcePrimary,
		ConnectionStringReplica: postgresSourceReplica,
		PrimaryDBName:           cfg.PrimaryDBName,
		ReplicaDBName:           cfg.ReplicaDBName,
	}

	mongoSource := fmt.Sprintf("mongodb://%s:%s@%s:%s", cfg.MongoDBUser, cfg.MongoDBPassword, cfg.MongoDBHost, cfg.MongoDBPort)

	mongoConnection := &mmongo.MongoConnection{
		ConnectionStringSource: mongoSource,
		Database:               cfg.MongoDBName,
	}

	rabbitSource := fmt.Sprintf("amqp://%s:%s@%s:%s", cfg.RabbitMQUser, cfg.RabbitMQPass, cfg.RabbitMQHost, cfg.RabbitMQPortAMQP)

	rabbitMQConnection := &mrabbitmq.RabbitMQConnection{
		ConnectionStringSource: rabbitSource,
		Exchange:               cfg.RabbitMQExchange,
		Logger:                 logger,
	}

	projectRepo := project.NewPostgreSQLRepository(postgresConnection)
	branchRepo := branch.NewPostgreSQLRepository(postgresConnection)
	bucketRepo := bucket.NewPostgreSQLRepository(postgresConnection)
	tableRepo := table.NewPostgreSQLRepository(postgresConnection)
	fileRepo := file.NewPostgreSQLRepository(postgresConnection)
	snapshotRepo := snapshot.NewPostgreSQLRepository(postgresConnection)
	settingsRepo := settings.NewPostgreSQLRepository(postgresConnection)
	apiKeyRepo := apikey.NewPostgreSQLRepository(postgresConnection)
	auditRepo := audit.NewMongoDBRepository(mongoConnection)
	auditPublisher := rabbitmq.NewProducerRabbitMQ(rabbitMQConnection)

	resolver := pathresolver.New(cfg.DataRootDir, bucketRepo, branchRepo)
	locks := tablelock.NewManager(logger)
	files := enginefile.New(logger, cfg.StagingRootDir)

	overlay := &branchoverlay.Overlay{
		Resolver: resolver,
		Locks:    locks,
		Files:    files,
		Branches: branchRepo,
	}

	pipeline := importexport.New(overlay, files, locks)

	snapshots := snapshotsettings.New(resolver, locks, files, snapshotRepo, cfg.SnapshotRootDir, logger)

	if _, err := snapshotsettings.StartSweeper(snapshots, time.Now); err != nil {
		panic(err)
	}

	idempotencyBackend := idempotencyBackendFor(cfg, logger)
	idempotencyStore := idempotency.New(idempotencyBackend, time.Duration(cfg.IdempotencyTTLSeconds)*time.Second)

	cmd := &command.UseCase{
		ProjectRepo:    projectRepo,
		BranchRepo:     branchRepo,
		BucketRepo:     bucketRepo,
		TableRepo:      tableRepo,
		FileRepo:       fileRepo,
		SnapshotRepo:   snapshotRepo,
		SettingsRepo:   settingsRepo,
		APIKeyRepo:     apiKeyRepo,
		AuditRepo:      auditRepo,
		AuditPublisher: auditPublisher,
		Idempotency:    idempotencyStore,
		Resolver:       resolver,
		Locks:          locks,
		Files:          files,
		Overlay:        overlay,
		ImportExport:   pipeline,
		Snapshots:      snapshots,
	}

	qry := &query.UseCase{
		ProjectRepo:  projectRepo,
		BranchRepo:   branchRepo,
		BucketRepo:   bucketRepo,
		TableRepo:    tableRepo,
		FileRepo:     fileRepo,
		SnapshotRepo: snapshotRepo,
		SettingsRepo: settingsRepo,
		APIKeyRepo:   apiKeyRepo,
		AuditRepo:    auditRepo,
		Resolver:     resolver,
		Locks:        locks,
		Files:        files,
		Overlay:      overlay,
	}

	keyLookup := func(ctx context.Context, keyHash string) (libhttp.Principal, bool, error) {
		key, err := apiKeyRepo.FindByHash(ctx, keyHash)

		var notFound common.UnauthenticatedError
		if errors.As(err, &notFound) {
			return libhttp.Principal{}, false, nil
		}

		if err != nil {
			return libhttp.Principal{}, false, err
		}

		principal := libhttp.Principal{IsAdmin: key.IsAdmin, KeyID: key.ID}
		if key.ProjectID != nil {
			principal.ProjectID = *key.ProjectID
		}

		return principal, true, nil
	}

	httpApp := in.NewRouter(logger, telemetry, cfg.AdminAPIKey, keyLookup, cmd, qry)
	server := bootstrap.NewServer(cfg, httpApp, logger)

	grpcServer := grpc.NewRouterGRPC(logger, telemetry, cfg.AdminAPIKey, keyLookup, cmd, qry)
	serverGRPC := bootstrap.NewServerGRPC(cfg, grpcServer, logger)

	service := &bootstrap.Service{
		Server:     server,
		ServerGRPC: serverGRPC,
		Logger:     logger,
	}

	service.Run()
}

func idempotencyBackendFor(cfg *bootstrap.Config, logger mlog.Logger) idempotency.Backend {
	ttl := time.Duration(cfg.IdempotencyTTLSeconds) * time.Second

	if !cfg.RedisEnabled {
		return idempotency.NewLocalBackend(ttl)
	}

	redisSource := fmt.Sprintf("redis://%s:%s@%s:%s", cfg.RedisUser, cfg.RedisPassword, cfg.RedisHost, cfg.RedisPort)

	redisConnection := &mredis.RedisConnection{
		ConnectionStringSource: redisSource,
		Logger:                 logger,
	}

	client, err := redisConnection.GetDB(context.Background())
	if err != nil {
		return idempotency.NewLocalBackend(ttl)
	}

	return &idempotency.RedisBackend{Client: client}
}
