package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Treasury TreasuryConfig
	Payment  PaymentConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type TreasuryConfig struct {
	// Deployer is the identity authorized to execute payouts. It is fixed at
	// first boot, when the ledger snapshot is created.
	Deployer string `env:"DEPLOYER_ADDRESS"`
	// Threshold is the cumulative contribution, in base units, that makes a
	// member a stakeholder.
	Threshold int64 `env:"STAKEHOLDER_THRESHOLD, default=1000"`
	// VotingWindow is how long after creation a proposal accepts votes.
	VotingWindow time.Duration `env:"VOTING_WINDOW, default=5m"`
	// JournalBuffer is the action journal's channel capacity.
	JournalBuffer int `env:"JOURNAL_BUFFER, default=256"`
}

type PaymentConfig struct {
	URL     string        `env:"PAYMENT_URL, default=http://localhost:9090/transfers"`
	Timeout time.Duration `env:"PAYMENT_TIMEOUT, default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=commonfund_treasury"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
