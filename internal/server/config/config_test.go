package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, DriverMemory, c.RecordStoreDriver)
	assert.Equal(t, "capacitanet_users", c.UsersTable)
	assert.Equal(t, "capacitanet_courses", c.CoursesTable)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 5*time.Minute, c.ResourceURLTTL)
	assert.Equal(t, []string{"@corp.com"}, c.AllowedDomains)
	assert.Equal(t, "capacitanet-resource", c.S3Bucket)
	assert.False(t, c.OptimisticUpdates)
	assert.Equal(t, 3, c.MaxUpdateAttempts)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty secret", func(c *Config) { c.SecretKey = "" }},
		{"unknown driver", func(c *Config) { c.RecordStoreDriver = "mongo" }},
		{"unknown object store", func(c *Config) { c.ObjectStoreDriver = "gcs" }},
		{"zero token ttl", func(c *Config) { c.AccessTokenValidityDuration = 0 }},
		{"negative url ttl", func(c *Config) { c.ResourceURLTTL = -time.Second }},
		{"zero attempts", func(c *Config) { c.MaxUpdateAttempts = 0 }},
		{"no domains", func(c *Config) { c.AllowedDomains = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
}

func TestLoadConfig_PrecedenceJsonEnvFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, t.TempDir(), "cfg.json", map[string]any{
		"secret_key":          "from-json",
		"s3_bucket":           "json-bucket",
		"record_store_driver": "sqlite",
	})
	t.Setenv("S3_BUCKET", "env-bucket")
	t.Setenv("ALLOWED_DOMAINS", "@corp.com,@corp.co")

	os.Args = []string{"testbin", "-c", path, "-s", "from-flag"}

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-flag", c.SecretKey)
	assert.Equal(t, "env-bucket", c.S3Bucket)
	assert.Equal(t, DriverSQLite, c.RecordStoreDriver)
	assert.Equal(t, []string{"@corp.com", "@corp.co"}, c.AllowedDomains)
}

func TestLoadConfig_InvalidResultIsRejected(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-driver", "mongo"}

	_, err := LoadConfig()
	require.Error(t, err)
}
