package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/capacitanet/internal/flagx"
	"github.com/dmitrijs2005/capacitanet/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	LogLevel                    string         `json:"log_level"`
	RecordStoreDriver           string         `json:"record_store_driver"`
	DatabaseDSN                 string         `json:"database_dsn"`
	UsersTable                  string         `json:"users_table"`
	CoursesTable                string         `json:"courses_table"`
	DynamoRegion                string         `json:"dynamo_region"`
	DynamoEndpoint              string         `json:"dynamo_endpoint"`
	DynamoAccessKeyID           string         `json:"dynamo_access_key_id"`
	DynamoSecretAccessKey       string         `json:"dynamo_secret_access_key"`
	ObjectStoreDriver           string         `json:"object_store_driver"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	S3UsePathStyle              bool           `json:"s3_use_path_style"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ResourceURLTTL              timex.Duration `json:"resource_url_ttl"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	AllowedDomains              []string       `json:"allowed_domains"`
	CORSAllowedOrigins          []string       `json:"cors_allowed_origins"`
	OptimisticUpdates           bool           `json:"optimistic_updates"`
	MaxUpdateAttempts           int            `json:"max_update_attempts"`
}

// parseJson loads the file named by -c/-config (if any) over config.
// Keys missing from the file keep their current values.
func parseJson(config *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	fromJson(config, c)
	return nil
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:            c.EndpointAddrHTTP,
		EndpointAddrGRPC:            c.EndpointAddrGRPC,
		LogLevel:                    c.LogLevel,
		RecordStoreDriver:           c.RecordStoreDriver,
		DatabaseDSN:                 c.DatabaseDSN,
		UsersTable:                  c.UsersTable,
		CoursesTable:                c.CoursesTable,
		DynamoRegion:                c.DynamoRegion,
		DynamoEndpoint:              c.DynamoEndpoint,
		DynamoAccessKeyID:           c.DynamoAccessKeyID,
		DynamoSecretAccessKey:       c.DynamoSecretAccessKey,
		ObjectStoreDriver:           c.ObjectStoreDriver,
		S3RootUser:                  c.S3RootUser,
		S3RootPassword:              c.S3RootPassword,
		S3Bucket:                    c.S3Bucket,
		S3Region:                    c.S3Region,
		S3BaseEndpoint:              c.S3BaseEndpoint,
		S3UsePathStyle:              c.S3UsePathStyle,
		SecretKey:                   c.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: c.AccessTokenValidityDuration},
		ResourceURLTTL:              timex.Duration{Duration: c.ResourceURLTTL},
		BcryptCost:                  c.BcryptCost,
		AllowedDomains:              c.AllowedDomains,
		CORSAllowedOrigins:          c.CORSAllowedOrigins,
		OptimisticUpdates:           c.OptimisticUpdates,
		MaxUpdateAttempts:           c.MaxUpdateAttempts,
	}
}

func fromJson(config *Config, c *JsonConfig) {
	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.LogLevel = c.LogLevel
	config.RecordStoreDriver = c.RecordStoreDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.UsersTable = c.UsersTable
	config.CoursesTable = c.CoursesTable
	config.DynamoRegion = c.DynamoRegion
	config.DynamoEndpoint = c.DynamoEndpoint
	config.DynamoAccessKeyID = c.DynamoAccessKeyID
	config.DynamoSecretAccessKey = c.DynamoSecretAccessKey
	config.ObjectStoreDriver = c.ObjectStoreDriver
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3UsePathStyle = c.S3UsePathStyle
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.ResourceURLTTL = c.ResourceURLTTL.Duration
	config.BcryptCost = c.BcryptCost
	config.AllowedDomains = c.AllowedDomains
	config.CORSAllowedOrigins = c.CORSAllowedOrigins
	config.OptimisticUpdates = c.OptimisticUpdates
	config.MaxUpdateAttempts = c.MaxUpdateAttempts
}
