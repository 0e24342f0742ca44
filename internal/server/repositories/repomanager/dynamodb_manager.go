package repomanager

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dmitrijs2005/capacitanet/internal/server/config"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/records"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newDynamoClientFromConfig = func(cfg aws.Config, optFns ...func(*dynamodb.Options)) records.DynamoAPI {
		return dynamodb.NewFromConfig(cfg, optFns...)
	}
)

// DynamoRepositoryManager stores records in DynamoDB. Tables are provisioned
// outside the service.
type DynamoRepositoryManager struct {
	base
}

func NewDynamoRepositoryManager(ctx context.Context, cfg *config.Config) (*DynamoRepositoryManager, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.DynamoRegion)}
	if cfg.DynamoAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.DynamoAccessKeyID,
			cfg.DynamoSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newDynamoClientFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})

	return &DynamoRepositoryManager{base: newBase(records.NewDynamoRepository(client), cfg)}, nil
}

func (m *DynamoRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *DynamoRepositoryManager) Close() error { return nil }
