package config

import (
	"fmt"
	"os"
)

// InferenceConfig points at the SadTalker inference sidecar. The sidecar
// shares the job filesystem, so requests and responses exchange paths, not
// payloads.
type InferenceConfig struct {
	ApiUrl string
}

func GetInferenceConfig() (*InferenceConfig, error) {
	apiUrl := os.Getenv("INFERENCE_API_URL")
	if apiUrl == "" {
		return nil, fmt.Errorf("INFERENCE_API_URL must be set")
	}

	return &InferenceConfig{
		ApiUrl: apiUrl,
	}, nil
}
