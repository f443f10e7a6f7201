package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/docload/blobstore"
	"github.com/minio/minio-go/v7"
)

// Client is the subset of *minio.Client used by Store.
type Client interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Option configures a Store.
type Option func(*Store)

// WithContentType sets the Content-Type recorded for every object.
func WithContentType(contentType string) Option {
	return func(s *Store) { s.contentType = contentType }
}

// WithContentEncoding sets the Content-Encoding recorded for every object.
func WithContentEncoding(encoding string) Option {
	return func(s *Store) { s.contentEncoding = encoding }
}

// WithBatchConcurrency sets how many objects of one batch are uploaded in parallel.
func WithBatchConcurrency(n int) Option {
	return func(s *Store) { s.concurrency = n }
}

// Store implements blobstore.Store for MinIO and S3-compatible storage.
//
// S3 has no multi-object write call, so PutBatch uploads the entries of a
// batch in parallel and reports the batch as one result.
type Store struct {
	client          Client
	bucket          string
	prefix          string
	contentType     string
	contentEncoding string
	concurrency     int
}

// NewStore creates a new MinIO document store.
// bucket is the MinIO bucket name.
// rootPrefix is prepended to all keys (e.g. "loadtest/").
func NewStore(client Client, bucket, rootPrefix string, optFns ...Option) *Store {
	s := &Store{
		client:      client,
		bucket:      bucket,
		prefix:      rootPrefix,
		contentType: "application/xml",
		concurrency: blobstore.DefaultBatchConcurrency,
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return strings.TrimPrefix(path.Join(s.prefix, name), "/")
}

// Put writes a document atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:     s.contentType,
		ContentEncoding: s.contentEncoding,
	})
	return err
}

// PutBatch uploads all entries, in parallel up to the configured concurrency.
func (s *Store) PutBatch(ctx context.Context, entries []blobstore.Entry) error {
	return blobstore.PutConcurrent(ctx, s, entries, s.concurrency)
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
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// Strip our root prefix
		name := strings.TrimPrefix(obj.Key, root)
		name = "/" + strings.TrimPrefix(name, "/")
		if name != "/" {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}
