package s3

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/docload/blobstore"
)

// Client is the subset of *s3.Client used by Store.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
}

// Store implements blobstore.Store for S3.
//
// S3 has no multi-object write call, so PutBatch uploads the entries of a
// batch in parallel and reports the batch as one result.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	cfg      UploadConfig
	uploader *manager.Uploader
}

// NewStore creates a new S3 document store.
// rootPrefix is prepended to all keys (e.g. "loadtest/").
func NewStore(client Client, bucket, rootPrefix string, optFns ...func(*UploadConfig)) *Store {
	cfg := DefaultUploadConfig()
	for _, fn := range optFns {
		fn(&cfg)
	}
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   rootPrefix,
		cfg:      cfg,
		uploader: newUploader(client, cfg),
	}
}

func (s *Store) key(name string) string {
	return strings.TrimPrefix(path.Join(s.prefix, name), "/")
}

// Put writes a document atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if int64(len(data)) >= s.cfg.PartSize {
		return putLarge(ctx, s.uploader, s.bucket, s.key(name), data, s.cfg)
	}
	return putSmall(ctx, s.client, s.bucket, s.key(name), data, s.cfg)
}

// PutBatch uploads all entries, in parallel up to BatchConcurrency.
func (s *Store) PutBatch(ctx context.Context, entries []blobstore.Entry) error {
	return blobstore.PutConcurrent(ctx, s, entries, s.cfg.BatchConcurrency)
}

// List returns all document names with the given prefix.
// Returned names carry a leading slash, matching the names written by a load run.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)
	if strings.HasSuffix(prefix, "/") && !strings.HasSuffix(fullPrefix, "/") {
		fullPrefix += "/"
	}
	root := strings.Trim(s.prefix, "/")

	var names []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(fullPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), root)
			names = append(names, "/"+strings.TrimPrefix(rel, "/"))
		}
	}

	sort.Strings(names)
	return names, nil
}
