// Package storage archives payment receipt uploads in S3 so the operator
// has a copy outside the email thread.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"pinnaclepm/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type ReceiptStorage struct {
	client S3API
	bucket string
}

func NewReceiptStorage(client S3API, bucket string) *ReceiptStorage {
	return &ReceiptStorage{client: client, bucket: bucket}
}

// UploadReceipt stores the decoded receipt under a key derived from the
// confirmation code and returns that key.
func (s *ReceiptStorage) UploadReceipt(ctx context.Context, confirmationCode string, receipt *types.Receipt) (string, error) {
	data, err := base64.StdEncoding.DecodeString(receipt.Content)
	if err != nil {
		return "", fmt.Errorf("failed to decode receipt content: %w", err)
	}

	key := fmt.Sprintf("receipts/%s%s", confirmationCode, extensionFor(receipt.Type))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(receipt.Type),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}

	return key, nil
}

// DeleteReceipt removes an archived receipt.
func (s *ReceiptStorage) DeleteReceipt(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}

	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}
