// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"
)

// Record store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
)

// Object store drivers.
const (
	ObjectStoreS3     = "s3"
	ObjectStoreMemory = "memory"
)

// Config holds runtime settings for the CapacitaNet server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses of the REST API and the gRPC health endpoint.
//   - RecordStoreDriver: one of memory, sqlite, postgres, dynamodb.
//   - DatabaseDSN: DSN for the sqlite/postgres drivers.
//   - UsersTable / CoursesTable: record table names.
//   - Dynamo*: DynamoDB region, endpoint override and static credentials.
//   - ObjectStoreDriver: s3 or memory.
//   - S3*: object storage settings; S3UsePathStyle is needed for MinIO.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default in prod.
//   - AccessTokenValidityDuration: lifetime of issued tokens.
//   - ResourceURLTTL: lifetime of presigned resource download URLs.
//   - BcryptCost: work factor for password hashes.
//   - AllowedDomains: corporate username suffixes accepted at registration.
//   - OptimisticUpdates / MaxUpdateAttempts: versioned read-modify-write, off by default.
type Config struct {
	EndpointAddrHTTP            string        `env:"HTTP_ADDR"`
	EndpointAddrGRPC            string        `env:"GRPC_ADDR"`
	LogLevel                    string        `env:"LOG_LEVEL"`
	RecordStoreDriver           string        `env:"RECORD_STORE_DRIVER"`
	DatabaseDSN                 string        `env:"DATABASE_DSN"`
	UsersTable                  string        `env:"USERS_TABLE"`
	CoursesTable                string        `env:"COURSES_TABLE"`
	DynamoRegion                string        `env:"DYNAMO_REGION"`
	DynamoEndpoint              string        `env:"DYNAMO_ENDPOINT"`
	DynamoAccessKeyID           string        `env:"AWS_ACCESS_KEY_ID_DYNAMO"`
	DynamoSecretAccessKey       string        `env:"AWS_SECRET_ACCESS_KEY_DYNAMO"`
	ObjectStoreDriver           string        `env:"OBJECT_STORE_DRIVER"`
	S3RootUser                  string        `env:"AWS_ACCESS_KEY_ID_S3"`
	S3RootPassword              string        `env:"AWS_SECRET_ACCESS_KEY_S3"`
	S3Bucket                    string        `env:"S3_BUCKET"`
	S3Region                    string        `env:"S3_REGION"`
	S3BaseEndpoint              string        `env:"S3_BASE_ENDPOINT"`
	S3UsePathStyle              bool          `env:"S3_USE_PATH_STYLE"`
	SecretKey                   string        `env:"SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"ACCESS_TOKEN_VALIDITY_DURATION"`
	ResourceURLTTL              time.Duration `env:"RESOURCE_URL_TTL"`
	BcryptCost                  int           `env:"BCRYPT_COST"`
	AllowedDomains              []string      `env:"ALLOWED_DOMAINS" envSeparator:","`
	CORSAllowedOrigins          []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	OptimisticUpdates           bool          `env:"OPTIMISTIC_UPDATES"`
	MaxUpdateAttempts           int           `env:"MAX_UPDATE_ATTEMPTS"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.LogLevel = "info"
	c.RecordStoreDriver = DriverMemory
	c.DatabaseDSN = "file:capacitanet.db"
	c.UsersTable = "capacitanet_users"
	c.CoursesTable = "capacitanet_courses"
	c.DynamoRegion = "us-east-1"
	c.DynamoEndpoint = ""
	c.ObjectStoreDriver = ObjectStoreMemory
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "capacitanet-resource"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.ResourceURLTTL = 5 * time.Minute
	c.BcryptCost = 10
	c.AllowedDomains = []string{"@corp.com"}
	c.CORSAllowedOrigins = []string{"http://localhost:3000"}
	c.OptimisticUpdates = false
	c.MaxUpdateAttempts = 3
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret key must not be empty")
	}
	if !slices.Contains([]string{DriverMemory, DriverSQLite, DriverPostgres, DriverDynamoDB}, c.RecordStoreDriver) {
		return fmt.Errorf("unknown record store driver %q", c.RecordStoreDriver)
	}
	if !slices.Contains([]string{ObjectStoreS3, ObjectStoreMemory}, c.ObjectStoreDriver) {
		return fmt.Errorf("unknown object store driver %q", c.ObjectStoreDriver)
	}
	if c.AccessTokenValidityDuration <= 0 {
		return errors.New("access token validity must be positive")
	}
	if c.ResourceURLTTL <= 0 {
		return errors.New("resource url ttl must be positive")
	}
	if c.MaxUpdateAttempts < 1 {
		return errors.New("max update attempts must be at least 1")
	}
	if len(c.AllowedDomains) == 0 {
		return errors.New("at least one allowed domain is required")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, environment variables and finally command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	args := os.Args[1:]
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
