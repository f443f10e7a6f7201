// Package blobstore provides the document store abstraction a load run writes to.
//
// The load driver only needs two capabilities from a backend:
//
//	type Writer interface {
//	    Put(ctx, name, data) error          // single document write
//	}
//
//	type BatchWriter interface {
//	    PutBatch(ctx, entries) error        // one call for many documents
//	}
//
// BatchWriter is optional; [PutBatch] falls back to sequential Put calls.
// Implementations must be safe for concurrent use: a single handle is shared
// by every round that is in flight.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory store for tests and dry runs
//   - LocalStore: local filesystem, atomic writes
//   - minio.Store: MinIO and other S3-compatible object stores
//   - s3.Store: Amazon S3
//   - s3.DynamoStore: Amazon DynamoDB with native batch writes
//
// # Decorators
//
//   - RateLimited: caps document writes per second
//   - Latency: adds a fixed delay per call to simulate a remote backend
package blobstore
