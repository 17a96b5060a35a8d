// Package config holds the settings shared by the launchpad binaries.
// Values come from the environment (optionally a .env file) and can be
// overridden by command-line flags bound to the same fields.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"token-launchpad/internal/launchpad"
	"token-launchpad/internal/pinning"
)

// Pinner backends.
const (
	PinnerPinata = "pinata"
	PinnerGCS    = "gcs"
	PinnerMemory = "memory"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config contains everything needed to build a launchpad service.
type Config struct {
	// Solana
	RPCEndpoint string
	WSEndpoint  string // optional; confirmation polls without it

	// Storage
	UseMemory     bool
	PostgresDSN   string
	ClickhouseDSN string
	RedisURL      string // optional; pending transactions stay in memory without it

	// Pinning
	Pinner           string
	PinataJWT        string
	PinataJWTSecret  string // Secret Manager name, used when PinataJWT is empty
	PinataAPIURL     string
	PinataGatewayURL string
	GCSBucket        string
	GCSPrefix        string
	GCSPublicBaseURL string

	// Wallet (CLI only)
	KeypairPath   string
	KeypairSecret string // Secret Manager name, used when KeypairPath is empty

	// GCP
	GCPProject string

	// Workflow
	ConfirmTimeout time.Duration
	PendingTTL     time.Duration

	// HTTP (server only)
	HTTPAddr         string
	MetricsNamespace string
}

// LoadEnvFile loads variables from a .env file without overriding ones that
// are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv returns a Config populated from environment variables, with
// defaults for everything that has one.
func FromEnv() Config {
	return Config{
		RPCEndpoint:      os.Getenv("SOLANA_RPC_ENDPOINT"),
		WSEndpoint:       os.Getenv("SOLANA_WS_ENDPOINT"),
		UseMemory:        envBool("USE_MEMORY", false),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN:    os.Getenv("CLICKHOUSE_DSN"),
		RedisURL:         os.Getenv("REDIS_URL"),
		Pinner:           envString("PINNER", PinnerPinata),
		PinataJWT:        os.Getenv("PINATA_JWT"),
		PinataJWTSecret:  os.Getenv("PINATA_JWT_SECRET"),
		PinataAPIURL:     envString("PINATA_API_URL", pinning.DefaultPinataAPIURL),
		PinataGatewayURL: envString("PINATA_GATEWAY_URL", pinning.DefaultPinataGatewayURL),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCSPrefix:        os.Getenv("GCS_PREFIX"),
		GCSPublicBaseURL: envString("GCS_PUBLIC_BASE_URL", pinning.DefaultGCSPublicBaseURL),
		KeypairPath:      os.Getenv("SOLANA_KEYPAIR"),
		KeypairSecret:    os.Getenv("SOLANA_KEYPAIR_SECRET"),
		GCPProject:       envString("GOOGLE_CLOUD_PROJECT", os.Getenv("GCP_PROJECT")),
		ConfirmTimeout:   envDuration("CONFIRM_TIMEOUT", launchpad.DefaultConfirmTimeout),
		PendingTTL:       envDuration("PENDING_TTL", launchpad.DefaultPendingTTL),
		HTTPAddr:         envString("HTTP_ADDR", ":8080"),
		MetricsNamespace: envString("METRICS_NAMESPACE", "token_launchpad"),
	}
}

// Validate checks the settings every binary needs.
func (c *Config) Validate() error {
	if c.RPCEndpoint == "" {
		return fmt.Errorf("%w: --rpc-endpoint is required", ErrInvalid)
	}
	if !c.UseMemory && (c.PostgresDSN == "" || c.ClickhouseDSN == "") {
		return fmt.Errorf("%w: --postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)", ErrInvalid)
	}
	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("%w: confirm timeout must be positive", ErrInvalid)
	}
	if c.PendingTTL <= 0 {
		return fmt.Errorf("%w: pending ttl must be positive", ErrInvalid)
	}

	switch c.Pinner {
	case PinnerPinata:
		if c.PinataJWT == "" && c.PinataJWTSecret == "" {
			return fmt.Errorf("%w: pinata needs PINATA_JWT or PINATA_JWT_SECRET", ErrInvalid)
		}
	case PinnerGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("%w: gcs pinner needs --gcs-bucket", ErrInvalid)
		}
	case PinnerMemory:
	default:
		return fmt.Errorf("%w: unknown pinner %q (want %s, %s or %s)", ErrInvalid, c.Pinner, PinnerPinata, PinnerGCS, PinnerMemory)
	}

	for _, name := range c.secretNames() {
		if c.GCPProject == "" && !strings.HasPrefix(name, "projects/") {
			return fmt.Errorf("%w: secret %q needs GOOGLE_CLOUD_PROJECT or a full projects/... name", ErrInvalid, name)
		}
	}
	return nil
}

// ValidateWallet checks that the CLI has a keypair source.
func (c *Config) ValidateWallet() error {
	if c.KeypairPath == "" && c.KeypairSecret == "" {
		return fmt.Errorf("%w: --keypair or --keypair-secret is required", ErrInvalid)
	}
	return nil
}

// NeedsSecretManager reports whether any setting must be read from Secret Manager.
func (c *Config) NeedsSecretManager() bool {
	return len(c.secretNames()) > 0
}

// secretNames returns the Secret Manager names that will actually be read.
func (c *Config) secretNames() []string {
	var names []string
	if c.Pinner == PinnerPinata && c.PinataJWT == "" && c.PinataJWTSecret != "" {
		names = append(names, c.PinataJWTSecret)
	}
	if c.KeypairPath == "" && c.KeypairSecret != "" {
		names = append(names, c.KeypairSecret)
	}
	return names
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
