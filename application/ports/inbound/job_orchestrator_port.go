package inbound

import (
	"context"

	"generate-video-lambda/domain"
)

type RunJobParams struct {
	JobID   string
	Request domain.JobRequest
}

// JobOrchestratorPort drives one job through the full pipeline. The event
// channel receives one StageEvent per completed stage; the result channel
// receives exactly one terminal JobResult. Both close when the job ends.
type JobOrchestratorPort interface {
	Run(ctx context.Context, params RunJobParams) (<-chan domain.StageEvent, <-chan domain.JobResult)
}
