package dto

import "generate-video-lambda/domain"

type CaptionDTO struct {
	Index int    `json:"index" binding:"required"`
	Start int64  `json:"start"`
	End   int64  `json:"end" binding:"required"`
	Text  string `json:"text" binding:"required"`
}

type GenerateVideoRequest struct {
	SourceImage     string       `json:"source_image" binding:"required"`
	DrivenAudio     string       `json:"driven_audio" binding:"required"`
	Size            int          `json:"size"`
	PoseStyle       int          `json:"pose_style"`
	BatchSize       int          `json:"batch_size"`
	ExpressionScale float64      `json:"expression_scale"`
	UseCPU          bool         `json:"use_cpu"`
	Captions        []CaptionDTO `json:"captions"`
}

// ToDomain applies the documented defaults and validates the request at the
// ingestion boundary.
func (r GenerateVideoRequest) ToDomain() (domain.JobRequest, error) {
	request := domain.JobRequest{
		SourceImage:     r.SourceImage,
		DrivenAudio:     r.DrivenAudio,
		Size:            r.Size,
		PoseStyle:       r.PoseStyle,
		BatchSize:       r.BatchSize,
		ExpressionScale: r.ExpressionScale,
		UseCPU:          r.UseCPU,
	}
	if request.Size == 0 {
		request.Size = 256
	}
	if request.BatchSize == 0 {
		request.BatchSize = 2
	}
	if request.ExpressionScale == 0 {
		request.ExpressionScale = 1.0
	}

	for _, caption := range r.Captions {
		request.Captions = append(request.Captions, domain.Caption{
			Index:   caption.Index,
			StartMs: caption.Start,
			EndMs:   caption.End,
			Text:    caption.Text,
		})
	}

	if err := request.Validate(); err != nil {
		return domain.JobRequest{}, err
	}
	return request, nil
}

type GenerateVideoResponse struct {
	Video    string               `json:"video"`
	Progress domain.ProgressState `json:"progress"`
}

type GenerateVideoErrorResponse struct {
	Error    string                `json:"error"`
	Progress *domain.ProgressState `json:"progress,omitempty"`
}
