package cli

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"portalimg/internal/compression/service"
	"portalimg/internal/config"
	"portalimg/internal/core/domain"
	"portalimg/internal/core/ports"
	"portalimg/internal/device"
	"portalimg/internal/pkg/imagecodec"
	"portalimg/internal/pkg/imagecodec/webp"
	"portalimg/internal/storage"
	s3store "portalimg/internal/storage/s3"
	"portalimg/internal/upload"
)

// backend is everything the remote commands need from AWS.
type backend struct {
	store    storage.Store
	verify   func(ctx context.Context) error
	identity func(ctx context.Context) (string, error)
	folders  func() []string
}

type workstation interface {
	upload.WorkstationProvider
	WorkerCount() int
}

// Swapped out in tests.
var (
	openBackend = newAWSBackend
	newDevice   = func() workstation { return device.New() }
)

func newAWSBackend(ctx context.Context, c *config.Config) (*backend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Storage.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	store := s3store.NewClient(awsCfg, c.Storage.Bucket,
		s3store.WithPrefixes(c.Storage.ImagePrefix, c.Storage.MetadataPrefix),
		s3store.WithCategory(domain.Category(c.Upload.Category)),
	)

	identity := func(ctx context.Context) (string, error) {
		out, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return "", fmt.Errorf("failed to get caller identity: %w", err)
		}
		return aws.ToString(out.Arn), nil
	}

	return &backend{
		store:    store,
		verify:   store.Verify,
		identity: identity,
		folders:  store.Folders,
	}, nil
}

func newCompressor() ports.Compressor {
	return service.NewService(imagecodec.New(webp.NewEncoder()))
}

func uploadOptions(c *config.Config, workers int) upload.Options {
	return upload.Options{
		Compression: c.Compression,
		Workers:     workers,
	}
}
