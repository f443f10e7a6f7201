// Package minio provides a document store implementation using the MinIO client.
//
// MinIO is a high-performance, S3-compatible object storage system. This package
// uses the official MinIO Go client library and therefore also works against
// other S3-compatible systems like Ceph, SeaweedFS and Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "docs", "loadtest/")
//
// Object keys are the document names with the leading slash removed, so the
// document "/performance/restbatch/0/1.xml" becomes
// "loadtest/performance/restbatch/0/1.xml".
package minio
