package outbound

import (
	"context"

	"generate-video-lambda/domain"
)

// JobRecordSaverPort persists one terminal record per job.
type JobRecordSaverPort interface {
	Save(ctx context.Context, record domain.JobRecord) error
}
