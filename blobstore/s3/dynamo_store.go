package s3

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/docload/blobstore"
)

// MaxBatchWriteItems is the DynamoDB limit of put requests per BatchWriteItem call.
const MaxBatchWriteItems = 25

// ErrUnprocessed is reported for batch entries DynamoDB returned as unprocessed.
// They are not retried.
var ErrUnprocessed = errors.New("dynamodb left items unprocessed")

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	dynamodb.ScanAPIClient
}

// DynamoStore implements blobstore.Store on a DynamoDB table, one item per document.
//
// Table schema:
//   - Partition key: uri (string) - the document name
//   - content (binary) - the document payload
//   - content_encoding (string) - optional payload encoding
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name documents \
//	  --attribute-definitions AttributeName=uri,AttributeType=S \
//	  --key-schema AttributeName=uri,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
type DynamoStore struct {
	client          DDBClient
	table           string
	contentEncoding string
}

// NewDynamoStore creates a document store backed by the given table.
func NewDynamoStore(client DDBClient, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// WithContentEncoding records encoding on every item.
func (s *DynamoStore) WithContentEncoding(encoding string) *DynamoStore {
	s.contentEncoding = encoding
	return s
}

func (s *DynamoStore) item(name string, data []byte) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"uri":     &types.AttributeValueMemberS{Value: name},
		"content": &types.AttributeValueMemberB{Value: data},
	}
	if s.contentEncoding != "" {
		item["content_encoding"] = &types.AttributeValueMemberS{Value: s.contentEncoding}
	}
	return item
}

// Put writes a single document.
func (s *DynamoStore) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      s.item(name, data),
	})
	return err
}

// PutBatch writes entries with BatchWriteItem, MaxBatchWriteItems at a time
// and in order. Every group is attempted even if an earlier one failed.
func (s *DynamoStore) PutBatch(ctx context.Context, entries []blobstore.Entry) error {
	var (
		failed []string
		first  error
	)

	for start := 0; start < len(entries); start += MaxBatchWriteItems {
		group := entries[start:min(start+MaxBatchWriteItems, len(entries))]

		requests := make([]types.WriteRequest, 0, len(group))
		for _, e := range group {
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: s.item(e.Name, e.Data)},
			})
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: requests},
		})
		if err != nil {
			for _, e := range group {
				failed = append(failed, e.Name)
			}
			if first == nil {
				first = err
			}
			continue
		}

		for _, req := range out.UnprocessedItems[s.table] {
			if req.PutRequest == nil {
				continue
			}
			if uri, ok := req.PutRequest.Item["uri"].(*types.AttributeValueMemberS); ok {
				failed = append(failed, uri.Value)
			}
			if first == nil {
				first = ErrUnprocessed
			}
		}
	}

	if first != nil {
		return blobstore.NewBatchError(failed, len(entries), first)
	}
	return nil
}

// List scans the table for documents with the given prefix.
func (s *DynamoStore) List(ctx context.Context, prefix string) ([]string, error) {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(s.table),
		ProjectionExpression: aws.String("uri"),
	}
	if prefix != "" {
		input.FilterExpression = aws.String("begins_with(uri, :p)")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: prefix},
		}
	}

	var names []string

	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if uri, ok := item["uri"].(*types.AttributeValueMemberS); ok && strings.HasPrefix(uri.Value, prefix) {
				names = append(names, uri.Value)
			}
		}
	}

	sort.Strings(names)
	return names, nil
}
