package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/foodeasy/backend/config"
	"github.com/foodeasy/backend/internal/types"
)

// objectPutter is satisfied by *s3.Client.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ReportArchiver uploads rollover summaries as JSON objects.
type S3ReportArchiver struct {
	client objectPutter
	bucket string
	log    *zap.SugaredLogger
}

func NewS3ReportArchiver(s3Config *config.S3Config, log *zap.SugaredLogger) *S3ReportArchiver {
	return &S3ReportArchiver{client: s3Config.Client, bucket: s3Config.BucketName, log: log}
}

// ReportKey is the object key a summary is stored under.
func ReportKey(summary *types.RolloverSummary) string {
	return fmt.Sprintf("rollover/%s/%d.json", summary.RunDate, summary.StartedAt.Unix())
}

// ArchiveSummary uploads the summary to rollover/<run date>/<start unix>.json.
func (a *S3ReportArchiver) ArchiveSummary(ctx context.Context, summary *types.RolloverSummary) error {
	body, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rollover summary: %w", err)
	}

	key := ReportKey(summary)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload rollover summary: %w", err)
	}

	a.log.Infow("archived rollover summary", "bucket", a.bucket, "key", key)
	return nil
}

var _ ReportArchiver = (*S3ReportArchiver)(nil)
