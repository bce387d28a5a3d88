package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/tabdeck/internal/config"
	"github.com/vango-dev/tabdeck/pkg/documents"
)

// newOpener reads local paths from disk and s3:// paths through the
// default AWS credential chain.
func newOpener(ctx context.Context, cfg *config.Config) (documents.Opener, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3.PathStyle
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
	})

	return documents.MultiOpener{
		Local: documents.FileOpener{},
		Schemes: map[string]documents.Opener{
			"s3": documents.NewS3Opener(client, cfg.S3.MaxSize),
		},
	}, nil
}
