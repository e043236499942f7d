package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	API   APIConfig
	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// APIConfig points the client at the remote authentication backend.
type APIConfig struct {
	BaseURL string        `env:"AUTH_API_URL,     default=http://localhost:5000/api"`
	Timeout time.Duration `env:"AUTH_API_TIMEOUT, default=30s"`
}

// StoreConfig controls where the client persists its credential pair.
type StoreConfig struct {
	// Path of the JSON credential file used by the file store.
	Path string `env:"CREDENTIAL_FILE, default=.servicelens/credentials.json"`
	// TestAccounts enables the built-in test identities. Off by default;
	// never enable in a production build.
	TestAccounts bool `env:"AUTH_TEST_ACCOUNTS, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=servicelens"`
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
