package cmd

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/docload/blobstore"
	bsminio "github.com/hupe1980/docload/blobstore/minio"
	bss3 "github.com/hupe1980/docload/blobstore/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// newPool opens PoolSize independent handles to the configured backend.
// The memory backend shares a single store between all handles.
func newPool(ctx context.Context, c config) (*blobstore.Pool, error) {
	var shared blobstore.Writer
	if c.Backend == backendMemory {
		shared = blobstore.NewMemoryStore()
	}

	handles := make([]blobstore.Writer, 0, c.PoolSize)
	for range c.PoolSize {
		w := shared
		if w == nil {
			var err error
			if w, err = newStore(ctx, c); err != nil {
				return nil, err
			}
		}

		if c.Latency > 0 {
			w = blobstore.Latency(w, c.Latency)
		}
		if c.HandleRate > 0 {
			w = blobstore.RateLimited(w, c.HandleRate, max(int(c.HandleRate), 1))
		}
		handles = append(handles, w)
	}

	return blobstore.NewPool(handles...)
}

func newStore(ctx context.Context, c config) (blobstore.Writer, error) {
	encoding := c.Codec.ContentEncoding()

	switch c.Backend {
	case backendLocal:
		return blobstore.NewLocalStore(c.Bucket), nil

	case backendMinio:
		client, err := minio.New(c.Endpoint(), &minio.Options{
			Creds:  miniocreds.NewStaticV4(c.AccessKey, c.SecretKey, ""),
			Secure: c.Secure,
			Region: c.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return bsminio.NewStore(client, c.Bucket, c.Prefix, bsminio.WithContentEncoding(encoding)), nil

	case backendS3:
		cfg, err := awsConfig(ctx, c)
		if err != nil {
			return nil, err
		}
		client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(c.URL())
			o.UsePathStyle = true
		})
		return bss3.NewStore(client, c.Bucket, c.Prefix, func(u *bss3.UploadConfig) {
			u.ContentEncoding = encoding
		}), nil

	case backendDynamoDB:
		cfg, err := awsConfig(ctx, c)
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(c.URL())
		})
		return bss3.NewDynamoStore(client, c.Table).WithContentEncoding(encoding), nil

	default:
		return blobstore.NewMemoryStore(), nil
	}
}

func awsConfig(ctx context.Context, c config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.Region),
	}
	if c.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("aws config: %w", err)
	}
	return cfg, nil
}
