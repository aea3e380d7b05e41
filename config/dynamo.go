package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type DynamoConfig struct {
	TableName string
	RecordTTL time.Duration
}

func GetDynamoConfig() (*DynamoConfig, error) {
	tableName := os.Getenv("DYNAMO_TABLE_NAME")
	if tableName == "" {
		return nil, fmt.Errorf("DYNAMO_TABLE_NAME must be set")
	}

	recordTTL := 30 * 24 * time.Hour
	if raw := os.Getenv("JOB_RECORD_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JOB_RECORD_TTL_HOURS: %w", err)
		}
		recordTTL = time.Duration(hours) * time.Hour
	}

	return &DynamoConfig{
		TableName: tableName,
		RecordTTL: recordTTL,
	}, nil
}
