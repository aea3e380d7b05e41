package outbound

import (
	"context"

	"generate-video-lambda/domain"
)

type ExtractCoefficientsParams struct {
	ImagePath string
	OutputDir string
	Size      int
	Device    string
}

type ExtractCoefficientsResponse struct {
	CoeffPath     string
	CropImagePath string
	CropInfo      domain.CropInfo
}

// CoefficientExtractorPort is the boundary of the opaque face-coefficient
// extraction stage. A missing face is returned as *domain.NoFaceDetectedError.
type CoefficientExtractorPort interface {
	Extract(ctx context.Context, params ExtractCoefficientsParams) (*ExtractCoefficientsResponse, error)
}
