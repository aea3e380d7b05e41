package outbound

import "context"

type PublishVideoRequest struct {
	VideoFileName string
	JobID         string
}

type PublishVideoResponse struct {
	VideoURL string
	VideoKey string
}

type VideoPublisherPort interface {
	Publish(ctx context.Context, req PublishVideoRequest) (*PublishVideoResponse, error)
}
