package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/capacitanet/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string       HTTP bind address (e.g. ":8080")
//	-grpc string    gRPC health bind address (e.g. ":50051")
//	-driver string  record store driver
//	-d string       database DSN
//	-s string       JWT HMAC secret key
//	-t int          access token validity, minutes
//	-u string       S3 access key
//	-p string       S3 secret key
//	-b string       S3 bucket name
//	-g string       S3 region
//	-e string       S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-l string       log level
//	-optimistic     enable versioned read-modify-write
//
// Flags not listed above are ignored so the config file flag and test flags
// can share os.Args.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "address and port to run the gRPC health server")
	fs.StringVar(&config.RecordStoreDriver, "driver", config.RecordStoreDriver, "record store driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.OptimisticUpdates, "optimistic", config.OptimisticUpdates, "enable optimistic updates")

	if err := flagx.ParseKnown(fs, args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		}
	})
	return nil
}
