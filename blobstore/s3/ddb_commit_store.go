package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/symgo/blobstore"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DDBCommitStore implements blobstore.CommitStore on DynamoDB.
//
// DynamoDB conditional writes supply the atomic compare-and-swap that S3
// itself lacks: each publish writes a new version row, and the condition
// rejects the write if another publisher already claimed that version.
// Snapshot and manifest objects live in S3; DynamoDB holds only the commit
// log pointing at them.
//
// Table schema:
//   - Partition key: base_uri (string) - namespace for one table's snapshots
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name symgo-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	client    DDBClient
	tableName string
	baseURI   string // partition key, e.g. "s3://bucket/prefix"
}

// NewDDBCommitStore creates a DynamoDB-backed commit store.
// The baseURI should be the "s3://bucket/prefix" the snapshots live under;
// it keys the commit log so many tables can share one DynamoDB table.
func NewDDBCommitStore(client DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		client:    client,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Commit records a version with a conditional write. If another publisher
// already committed this version, returns blobstore.ErrConcurrentModification.
func (s *DDBCommitStore) Commit(ctx context.Context, version uint64, key string) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":      &types.AttributeValueMemberS{Value: s.baseURI},
			"version":       &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"manifest_path": &types.AttributeValueMemberS{Value: key},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return blobstore.ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}
	return nil
}

// Current returns the latest committed version and its manifest key.
// Version 0 with a nil error means nothing has been committed yet.
func (s *DDBCommitStore) Current(ctx context.Context) (uint64, string, error) {
	resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in DynamoDB")
	}
	pathAttr, ok := item["manifest_path"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid manifest_path attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	return version, pathAttr.Value, nil
}

// PruneBelow deletes commit records with versions strictly below version.
func (s *DDBCommitStore) PruneBelow(ctx context.Context, version uint64) error {
	var startKey map[string]types.AttributeValue
	for {
		resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("base_uri = :uri AND version < :v"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uri": &types.AttributeValueMemberS{Value: s.baseURI},
				":v":   &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return fmt.Errorf("failed to query DynamoDB: %w", err)
		}

		for _, item := range resp.Items {
			versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
			if !ok {
				return errors.New("invalid version attribute in DynamoDB")
			}
			_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(s.tableName),
				Key: map[string]types.AttributeValue{
					"base_uri": &types.AttributeValueMemberS{Value: s.baseURI},
					"version":  versionAttr,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to delete version %s: %w", versionAttr.Value, err)
			}
		}

		if len(resp.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = resp.LastEvaluatedKey
	}
}
