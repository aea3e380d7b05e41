package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/config"
	"generate-video-lambda/domain"
)

type extractCoefficientsRequest struct {
	SourceImage string `json:"source_image"`
	OutputDir   string `json:"output_dir"`
	Size        int    `json:"size"`
	Preprocess  string `json:"preprocess"`
	Device      string `json:"device"`
}

type extractCoefficientsResponse struct {
	CoeffPath     string          `json:"coeff_path"`
	CropImagePath string          `json:"crop_image_path"`
	CropInfo      domain.CropInfo `json:"crop_info"`
}

type coefficientExtractor struct {
	ContentFetcher
	logger          outbound.LoggerPort
	inferenceConfig *config.InferenceConfig
}

func NewCoefficientExtractor(contentFetcher ContentFetcher, inferenceConfig *config.InferenceConfig, logger outbound.LoggerPort) outbound.CoefficientExtractorPort {
	return &coefficientExtractor{
		ContentFetcher:  contentFetcher,
		logger:          logger,
		inferenceConfig: inferenceConfig,
	}
}

func (e *coefficientExtractor) Extract(ctx context.Context, params outbound.ExtractCoefficientsParams) (*outbound.ExtractCoefficientsResponse, error) {
	req, err := e.getRequest(ctx, params)
	if err != nil {
		e.logger.Error(err, "Failed to create the coefficient extraction request")
		return nil, err
	}

	rawRes, err := e.FetchContent(req)
	if err != nil {
		e.logger.Error(err, "Coefficient extraction request failed")
		return nil, err
	}

	var extractRes extractCoefficientsResponse
	if err := json.Unmarshal(rawRes, &extractRes); err != nil {
		e.logger.Error(err, "Failed to unmarshal the coefficient extraction response")
		return nil, err
	}

	// The sidecar reports "no usable face" as an empty coefficient path.
	if extractRes.CoeffPath == "" {
		return nil, &domain.NoFaceDetectedError{ImagePath: params.ImagePath}
	}

	return &outbound.ExtractCoefficientsResponse{
		CoeffPath:     extractRes.CoeffPath,
		CropImagePath: extractRes.CropImagePath,
		CropInfo:      extractRes.CropInfo,
	}, nil
}

func (e *coefficientExtractor) getRequest(ctx context.Context, params outbound.ExtractCoefficientsParams) (*http.Request, error) {
	reqBody := extractCoefficientsRequest{
		SourceImage: params.ImagePath,
		OutputDir:   params.OutputDir,
		Size:        params.Size,
		Preprocess:  "crop",
		Device:      params.Device,
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.inferenceConfig.ApiUrl+"/extract-coefficients", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")

	return req, nil
}
