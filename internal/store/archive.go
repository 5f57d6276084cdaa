package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

const archiveContentType = "application/gzip"

// Archiver stores full analysis results as gzipped JSON objects in S3.
// DynamoDB records reference these objects by key.
type Archiver struct {
	client *s3.Client
	bucket string
}

// NewArchiver creates an Archiver for the given bucket.
func NewArchiver(client *s3.Client, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket}
}

// ArchiveKey is the S3 key for a run's archived result.
func ArchiveKey(runID string) string {
	return fmt.Sprintf("results/%s.json.gz", runID)
}

// Save marshals v to JSON, gzips it, and uploads it. Returns the object
// key.
func (a *Archiver) Save(ctx context.Context, runID string, v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return "", fmt.Errorf("compress result: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("compress result: %w", err)
	}

	key := ArchiveKey(runID)
	contentType := archiveContentType
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload result archive: %w", err)
	}

	log.Info().
		Str("runId", runID).
		Str("key", key).
		Int("raw_bytes", len(payload)).
		Int("compressed_bytes", buf.Len()).
		Msg("Analysis result archived")
	return key, nil
}

// Load fetches and decompresses an archived result into out.
func (a *Archiver) Load(ctx context.Context, key string, out interface{}) error {
	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("fetch result archive %s: %w", key, err)
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("open result archive %s: %w", key, err)
	}
	defer gz.Close()

	payload, err := io.ReadAll(gz)
	if err != nil {
		return fmt.Errorf("read result archive %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode result archive %s: %w", key, err)
	}
	return nil
}
