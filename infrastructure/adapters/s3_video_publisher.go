package adapters

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/config"
	"generate-video-lambda/domain"
)

type s3VideoPublisher struct {
	logger        outbound.LoggerPort
	s3Svc         *s3.S3
	storageConfig *config.StorageConfig
}

func NewS3VideoPublisher(logger outbound.LoggerPort, s3Svc *s3.S3, storageConfig *config.StorageConfig) outbound.VideoPublisherPort {
	return &s3VideoPublisher{
		logger:        logger,
		s3Svc:         s3Svc,
		storageConfig: storageConfig,
	}
}

// Publish uploads the artifact under a fresh 128-bit identifier and returns
// its public URL. The local file is left in place; the orchestrator owns
// artifact cleanup.
func (s *s3VideoPublisher) Publish(ctx context.Context, req outbound.PublishVideoRequest) (*outbound.PublishVideoResponse, error) {
	itemKey := fmt.Sprintf("%s/%s.mp4", s.storageConfig.Folder, uuid.NewString())

	file, err := os.Open(req.VideoFileName)
	if err != nil {
		s.logger.Error(err, "Failed to open video file")
		return nil, &domain.PublishError{Err: err}
	}

	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			s.logger.Error(err, "Failed to close video file")
		}
	}(file)

	putInput := &s3.PutObjectInput{
		Bucket:      aws.String(s.storageConfig.BucketName),
		Key:         aws.String(itemKey),
		Body:        file,
		ContentType: aws.String("video/mp4"),
	}

	_, err = s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload object to S3", map[string]interface{}{
			"job_id": req.JobID,
			"key":    itemKey,
		})
		return nil, &domain.PublishError{Err: err}
	}

	return &outbound.PublishVideoResponse{
		VideoURL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.storageConfig.BucketName, s.storageConfig.Region, itemKey),
		VideoKey: itemKey,
	}, nil
}
