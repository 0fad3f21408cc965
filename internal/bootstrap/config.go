package bootstrap

import (
	"github.com/padak/keboola-storage-duckdb-sub001/common"
)

// Config is the top level configuration struct for the entire application.
type Config struct {
	EnvName       string `env:"ENV_NAME"`
	ServerAddress string `env:"SERVER_ADDRESS"`
	ProtoAddress  string `env:"PROTO_ADDRESS"`
	LogLevel      string `env:"LOG_LEVEL"`

	PrimaryDBHost     string `env:"DB_HOST"`
	PrimaryDBUser     string `env:"DB_USER"`
	PrimaryDBPassword string `env:"DB_PASSWORD"`
	PrimaryDBName     string `env:"DB_NAME"`
	PrimaryDBPort     string `env:"DB_PORT"`
	ReplicaDBHost     string `env:"DB_REPLICA_HOST"`
	ReplicaDBUser     string `env:"DB_REPLICA_USER"`
	ReplicaDBPassword string `env:"DB_REPLICA_PASSWORD"`
	ReplicaDBName     string `env:"DB_REPLICA_NAME"`
	ReplicaDBPort     string `env:"DB_REPLICA_PORT"`

	MongoDBHost     string `env:"MONGO_HOST"`
	MongoDBName     string `env:"MONGO_NAME"`
	MongoDBUser     string `env:"MONGO_USER"`
	MongoDBPassword string `env:"MONGO_PASSWORD"`
	MongoDBPort     string `env:"MONGO_PORT"`

	RabbitMQHost     string `env:"RABBITMQ_HOST"`
	RabbitMQPortAMQP string `env:"RABBITMQ_PORT_AMPQ"`
	RabbitMQUser     string `env:"RABBITMQ_DEFAULT_USER"`
	RabbitMQPass     string `env:"RABBITMQ_DEFAULT_PASS"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE"`

	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT"`
	RedisUser     string `env:"REDIS_USER"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisEnabled  bool   `env:"REDIS_ENABLED"`

	OtelServiceName         string `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelLibraryName         string `env:"OTEL_LIBRARY_NAME"`
	OtelServiceVersion      string `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelDeploymentEnv       string `env:"OTEL_RESOURCE_DEPLOYMENT_ENVIRONMENT"`
	OtelColExporterEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// DataRootDir is where every project's engine files live, laid out
	// <root>/<project>/<bucket>/<table>.duckdb on the default branch and
	// <root>/<project>_branch_<branch>/<bucket>/<table>.duckdb on others.
	DataRootDir string `env:"DATA_ROOT_DIR"`

	// StagingRootDir holds files uploaded or imported but not yet promoted.
	StagingRootDir string `env:"STAGING_ROOT_DIR"`

	// SnapshotRootDir holds columnar snapshot artifacts.
	SnapshotRootDir string `env:"SNAPSHOT_ROOT_DIR"`

	// AdminAPIKey is the static, constant-time-compared bearer token that
	// authorizes project creation and other system-wide operations.
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// IdempotencyTTLSeconds bounds how long a cached response is replayed
	// for a reused idempotency key.
	IdempotencyTTLSeconds int `env:"IDEMPOTENCY_TTL_SECONDS"`

	// RetentionSweepCron is read from the environment but nothing consumes
	// it: the snapshot retention sweeper runs on its own fixed hourly
	// schedule, and no job expires staging files.
	RetentionSweepCron string `env:"RETENTION_SWEEP_CRON"`
}

// NewConfig creates an instance of Config, populated from the environment.
func NewConfig() *Config {
	cfg := &Config{}

	if err := common.SetConfigFromEnvVars(cfg); err != nil {
		panic(err)
	}

	if cfg.IdempotencyTTLSeconds <= 0 {
		cfg.IdempotencyTTLSeconds = 600
	}

	if cfg.RetentionSweepCron == "" {
		cfg.RetentionSweepCron = "@hourly"
	}

	return cfg
}
