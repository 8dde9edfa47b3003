package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Config selects the DynamoDB table and how to reach it.
type Config struct {
	Region    string `mapstructure:"region"`
	Table     string `mapstructure:"table"`
	Endpoint  string `mapstructure:"endpoint"`   // e.g. http://localhost:8000 for DynamoDB Local
	AccessKey string `mapstructure:"access_key"` // empty uses the default credential chain
	SecretKey string `mapstructure:"secret_key"`
}

// NewClient builds a DynamoDB client from cfg. Static credentials are used
// when both keys are set.
func NewClient(ctx context.Context, cfg Config) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
