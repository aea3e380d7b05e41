package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/config"
	"generate-video-lambda/domain"
)

type synthesizeMotionRequest struct {
	CoeffPath string `json:"coeff_path"`
	AudioPath string `json:"audio_path"`
	PoseStyle int    `json:"pose_style"`
	OutputDir string `json:"output_dir"`
	Device    string `json:"device"`
}

type synthesizeMotionResponse struct {
	MotionCoeffPath string `json:"motion_coeff_path"`
}

type motionSynthesizer struct {
	ContentFetcher
	logger          outbound.LoggerPort
	inferenceConfig *config.InferenceConfig
}

func NewMotionSynthesizer(contentFetcher ContentFetcher, inferenceConfig *config.InferenceConfig, logger outbound.LoggerPort) outbound.MotionSynthesizerPort {
	return &motionSynthesizer{
		ContentFetcher:  contentFetcher,
		logger:          logger,
		inferenceConfig: inferenceConfig,
	}
}

func (m *motionSynthesizer) Synthesize(ctx context.Context, params outbound.SynthesizeMotionParams) (string, error) {
	req, err := m.getRequest(ctx, params)
	if err != nil {
		m.logger.Error(err, "Failed to create the motion synthesis request")
		return "", &domain.SynthesisError{Err: err}
	}

	rawRes, err := m.FetchContent(req)
	if err != nil {
		m.logger.Error(err, "Motion synthesis request failed")
		return "", &domain.SynthesisError{Err: err}
	}

	var synthRes synthesizeMotionResponse
	if err := json.Unmarshal(rawRes, &synthRes); err != nil {
		m.logger.Error(err, "Failed to unmarshal the motion synthesis response")
		return "", &domain.SynthesisError{Err: err}
	}

	if synthRes.MotionCoeffPath == "" {
		return "", &domain.SynthesisError{Err: fmt.Errorf("sidecar returned no motion coefficient path")}
	}

	return synthRes.MotionCoeffPath, nil
}

func (m *motionSynthesizer) getRequest(ctx context.Context, params outbound.SynthesizeMotionParams) (*http.Request, error) {
	reqBody := synthesizeMotionRequest{
		CoeffPath: params.CoeffPath,
		AudioPath: params.AudioPath,
		PoseStyle: params.PoseStyle,
		OutputDir: params.OutputDir,
		Device:    params.Device,
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.inferenceConfig.ApiUrl+"/audio-to-coefficients", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")

	return req, nil
}
