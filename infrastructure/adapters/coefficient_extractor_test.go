package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/config"
	"generate-video-lambda/domain"
)

func newExtractorForServer(serverURL string) outbound.CoefficientExtractorPort {
	logger := NewZerologWrapper()
	return NewCoefficientExtractor(NewContentFetcher(logger), &config.InferenceConfig{ApiUrl: serverURL}, logger)
}

func TestExtractCoefficients(t *testing.T) {
	var gotRequest extractCoefficientsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Error("failed to decode sidecar request:", err)
		}
		_ = json.NewEncoder(w).Encode(extractCoefficientsResponse{
			CoeffPath:     "/work/first_frame/coeff.mat",
			CropImagePath: "/work/first_frame/crop.png",
			CropInfo:      domain.CropInfo{OriginalWidth: 512, OriginalHeight: 512, Region: [4]int{10, 10, 266, 266}},
		})
	}))
	defer server.Close()

	extractor := newExtractorForServer(server.URL)

	res, err := extractor.Extract(context.Background(), outbound.ExtractCoefficientsParams{
		ImagePath: "/work/face.png",
		OutputDir: "/work/first_frame",
		Size:      256,
		Device:    "cuda",
	})
	if err != nil {
		t.Fatal("Extract returned error:", err)
	}

	if res.CoeffPath != "/work/first_frame/coeff.mat" {
		t.Errorf("coeff path = %q", res.CoeffPath)
	}
	if res.CropInfo.Region != [4]int{10, 10, 266, 266} {
		t.Errorf("crop region = %v", res.CropInfo.Region)
	}
	if gotRequest.Preprocess != "crop" || gotRequest.Size != 256 || gotRequest.SourceImage != "/work/face.png" {
		t.Errorf("unexpected sidecar request: %+v", gotRequest)
	}
}

func TestExtractCoefficientsNoFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(extractCoefficientsResponse{})
	}))
	defer server.Close()

	extractor := newExtractorForServer(server.URL)

	_, err := extractor.Extract(context.Background(), outbound.ExtractCoefficientsParams{
		ImagePath: "/work/no_face.png",
		OutputDir: "/work/first_frame",
		Size:      256,
		Device:    "cpu",
	})

	var noFace *domain.NoFaceDetectedError
	if !errors.As(err, &noFace) {
		t.Fatalf("expected NoFaceDetectedError, got %v", err)
	}
	if noFace.ImagePath != "/work/no_face.png" {
		t.Errorf("image path = %q", noFace.ImagePath)
	}
}
