package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// Key constants for the single-table design.
const (
	runPKPrefix = "RUN#"
	genPKPrefix = "GEN#"
	skMeta      = "META"
)

// DynamoStore implements RunStore using AWS DynamoDB.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

var _ RunStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table. The client
// should be initialized from the shared AWS config.
func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

// expiresAt returns the Unix epoch timestamp for record expiration.
func expiresAt() int64 {
	return time.Now().Add(RecordTTL).Unix()
}

// putItem marshals a domain object and writes it with PK, SK, and TTL.
// Fields derived from the keys carry dynamodbav:"-".
func (s *DynamoStore) putItem(ctx context.Context, pk string, data interface{}) error {
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: skMeta}
	item["expiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt(), 10)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s: %w", pk, err)
	}
	return nil
}

// getItem reads one item into out. Returns false if the item does not
// exist (out is not modified).
func (s *DynamoStore) getItem(ctx context.Context, pk string, out interface{}) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
	})
	if err != nil {
		return false, fmt.Errorf("GetItem PK=%s: %w", pk, err)
	}
	if result.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("unmarshal PK=%s: %w", pk, err)
	}
	return true, nil
}

// PutRun creates or replaces a run record.
func (s *DynamoStore) PutRun(ctx context.Context, run *RunRecord) error {
	now := time.Now().Unix()
	if run.CreatedAt == 0 {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	if err := s.putItem(ctx, runPKPrefix+run.RunID, run); err != nil {
		return err
	}
	log.Debug().Str("runId", run.RunID).Str("status", run.Status).Msg("Run record stored")
	return nil
}

// GetRun retrieves a run record. Returns nil, nil if not found.
func (s *DynamoStore) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	var run RunRecord
	found, err := s.getItem(ctx, runPKPrefix+runID, &run)
	if err != nil || !found {
		return nil, err
	}
	run.RunID = runID
	return &run, nil
}

// UpdateRunStatus updates only the status, error, and updatedAt fields.
func (s *DynamoStore) UpdateRunStatus(ctx context.Context, runID, status, errMsg string) error {
	return s.updateStatus(ctx, runPKPrefix+runID, map[string]types.AttributeValue{
		":status":    &types.AttributeValueMemberS{Value: status},
		":error":     &types.AttributeValueMemberS{Value: errMsg},
		":updatedAt": &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
	}, "SET #status = :status, #error = :error, updatedAt = :updatedAt")
}

// PutGeneration creates or replaces a generation job record.
func (s *DynamoStore) PutGeneration(ctx context.Context, job *GenerationJob) error {
	now := time.Now().Unix()
	if job.CreatedAt == 0 {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	if err := s.putItem(ctx, genPKPrefix+job.ID, job); err != nil {
		return err
	}
	log.Debug().Str("generationId", job.ID).Str("status", job.Status).Msg("Generation record stored")
	return nil
}

// GetGeneration retrieves a generation job. Returns nil, nil if not found.
func (s *DynamoStore) GetGeneration(ctx context.Context, id string) (*GenerationJob, error) {
	var job GenerationJob
	found, err := s.getItem(ctx, genPKPrefix+id, &job)
	if err != nil || !found {
		return nil, err
	}
	job.ID = id
	return &job, nil
}

// UpdateGenerationStatus updates status, video URL, error, and updatedAt.
func (s *DynamoStore) UpdateGenerationStatus(ctx context.Context, id, status, videoURL, errMsg string) error {
	return s.updateStatus(ctx, genPKPrefix+id, map[string]types.AttributeValue{
		":status":    &types.AttributeValueMemberS{Value: status},
		":videoUrl":  &types.AttributeValueMemberS{Value: videoURL},
		":error":     &types.AttributeValueMemberS{Value: errMsg},
		":updatedAt": &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
	}, "SET #status = :status, videoUrl = :videoUrl, #error = :error, updatedAt = :updatedAt")
}

// updateStatus runs a partial UpdateItem. "status" and "error" are
// DynamoDB reserved words, hence the expression attribute names.
func (s *DynamoStore) updateStatus(ctx context.Context, pk string, values map[string]types.AttributeValue, expr string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		UpdateExpression: aws.String(expr),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
			"#error":  "error",
		},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("UpdateItem PK=%s: %w", pk, err)
	}
	return nil
}
