package outbound

import (
	"context"

	"generate-video-lambda/domain"
)

type RenderVideoParams struct {
	MotionCoeffPath string
	CropImagePath   string
	CropInfo        domain.CropInfo
	AudioPath       string
	BatchSize       int
	ExpressionScale float64
	Size            int
	OutputDir       string
	Device          string
}

// VideoRendererPort is the boundary of the opaque neural rendering stage.
// Rendering is expensive; failures are surfaced, never retried.
type VideoRendererPort interface {
	Render(ctx context.Context, params RenderVideoParams) (string, error)
}
