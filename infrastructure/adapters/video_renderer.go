package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/donovanhide/eventsource"

	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/config"
	"generate-video-lambda/domain"
)

const renderDoneStatus = "done"
const renderErrorStatus = "error"

type renderVideoRequest struct {
	MotionCoeffPath string          `json:"motion_coeff_path"`
	CropImagePath   string          `json:"crop_image_path"`
	CropInfo        domain.CropInfo `json:"crop_info"`
	AudioPath       string          `json:"audio_path"`
	BatchSize       int             `json:"batch_size"`
	ExpressionScale float64         `json:"expression_scale"`
	Size            int             `json:"size"`
	OutputDir       string          `json:"output_dir"`
	Device          string          `json:"device"`
}

type renderEventBody struct {
	Status    string  `json:"status"`
	Frame     int     `json:"frame"`
	Total     int     `json:"total"`
	VideoPath string  `json:"video_path"`
	Message   string  `json:"message"`
	Elapsed   float64 `json:"elapsed"`
}

// videoRenderer drives the long-running render stage over the sidecar's SSE
// endpoint: progress events are consumed until a terminal event carries the
// rendered file path.
type videoRenderer struct {
	logger          outbound.LoggerPort
	inferenceConfig *config.InferenceConfig
}

func NewVideoRenderer(inferenceConfig *config.InferenceConfig, logger outbound.LoggerPort) outbound.VideoRendererPort {
	return &videoRenderer{
		logger:          logger,
		inferenceConfig: inferenceConfig,
	}
}

func (v *videoRenderer) Render(ctx context.Context, params outbound.RenderVideoParams) (string, error) {
	req, err := v.createRequest(ctx, params)
	if err != nil {
		v.logger.Error(err, "Failed to create the render request")
		return "", &domain.RenderError{Err: err}
	}

	stream, err := eventsource.SubscribeWithRequest("", req)
	if err != nil {
		v.logger.Error(err, "Failed to subscribe to the render stream")
		return "", &domain.RenderError{Err: err}
	}
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			return "", &domain.RenderError{Err: ctx.Err()}
		case ev := <-stream.Events:
			body, err := v.extractBody(ev)
			if err != nil {
				return "", &domain.RenderError{Err: err}
			}
			switch body.Status {
			case renderDoneStatus:
				if body.VideoPath == "" {
					return "", &domain.RenderError{Err: fmt.Errorf("render stream finished without a video path")}
				}
				return body.VideoPath, nil
			case renderErrorStatus:
				return "", &domain.RenderError{Err: fmt.Errorf("%s", body.Message)}
			default:
				v.logger.DebugWithFields("Render progress", map[string]interface{}{
					"frame": body.Frame,
					"total": body.Total,
				})
			}
		case err := <-stream.Errors:
			if err == io.EOF {
				return "", &domain.RenderError{Err: fmt.Errorf("render stream closed before completion")}
			}
			v.logger.Error(err, "Error occurred during the render stream")
			return "", &domain.RenderError{Err: err}
		}
	}
}

func (v *videoRenderer) extractBody(event eventsource.Event) (*renderEventBody, error) {
	var body renderEventBody
	if err := json.Unmarshal([]byte(event.Data()), &body); err != nil {
		v.logger.Error(err, "Failed to unmarshal render event data")
		return nil, err
	}
	return &body, nil
}

func (v *videoRenderer) createRequest(ctx context.Context, params outbound.RenderVideoParams) (*http.Request, error) {
	reqBody := renderVideoRequest{
		MotionCoeffPath: params.MotionCoeffPath,
		CropImagePath:   params.CropImagePath,
		CropInfo:        params.CropInfo,
		AudioPath:       params.AudioPath,
		BatchSize:       params.BatchSize,
		ExpressionScale: params.ExpressionScale,
		Size:            params.Size,
		OutputDir:       params.OutputDir,
		Device:          params.Device,
	}

	payloadBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", v.inferenceConfig.ApiUrl+"/render/stream", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
