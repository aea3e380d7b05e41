package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/config"
	"generate-video-lambda/domain"
)

type dynamoJobItem struct {
	JobID       string `dynamodbav:"job_id"`
	Status      string `dynamodbav:"status"`
	FailedStage string `dynamodbav:"failed_stage,omitempty"`
	VideoURL    string `dynamodbav:"video_url,omitempty"`
	CreatedAt   int64  `dynamodbav:"created_at"`
	TTL         int64  `dynamodbav:"ttl"`
}

type dynamoJobStore struct {
	logger       outbound.LoggerPort
	dynamoSvc    *dynamodb.DynamoDB
	dynamoConfig *config.DynamoConfig
}

func NewDynamoJobStore(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB, dynamoConfig *config.DynamoConfig) outbound.JobRecordSaverPort {
	return &dynamoJobStore{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
	}
}

func (d *dynamoJobStore) Save(ctx context.Context, record domain.JobRecord) error {
	item := dynamoJobItem{
		JobID:       record.JobID,
		Status:      record.Status,
		FailedStage: string(record.FailedStage),
		VideoURL:    record.VideoURL,
		CreatedAt:   record.CreatedAt.Unix(),
		TTL:         time.Now().Add(d.dynamoConfig.RecordTTL).Unix(),
	}

	marshalled, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		d.logger.Error(err, "Failed to marshal job record")
		return err
	}

	_, err = d.dynamoSvc.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.dynamoConfig.TableName),
		Item:      marshalled,
	})
	if err != nil {
		d.logger.ErrorWithFields(err, "Failed to save job record", map[string]interface{}{
			"job_id": record.JobID,
		})
		return err
	}

	return nil
}
