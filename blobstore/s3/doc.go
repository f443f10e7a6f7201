// Package s3 provides AWS-backed document stores.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion("us-east-1"))
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "loadtest/")
//
//	table := s3.NewDynamoStore(dynamodb.NewFromConfig(cfg), "documents")
//
// # Features
//
//   - CRC32C integrity checksums on every small put
//   - Multipart uploads (feature/s3/manager) for documents above the part size
//   - Automatic pagination for listing
//   - DynamoDB BatchWriteItem for native batch writes
package s3
