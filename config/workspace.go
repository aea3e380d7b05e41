package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type WorkspaceConfig struct {
	ResultsRoot   string
	JobTimeout    time.Duration
	MaxAge        time.Duration
	SweepInterval time.Duration
}

func GetWorkspaceConfig() (*WorkspaceConfig, error) {
	resultsRoot := os.Getenv("RESULTS_ROOT")
	if resultsRoot == "" {
		resultsRoot = "results"
	}

	jobTimeout := time.Duration(0)
	if raw := os.Getenv("JOB_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JOB_TIMEOUT_SECONDS: %w", err)
		}
		jobTimeout = time.Duration(seconds) * time.Second
	}

	maxAge := 24 * time.Hour
	if raw := os.Getenv("WORKSPACE_MAX_AGE_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse WORKSPACE_MAX_AGE_HOURS: %w", err)
		}
		maxAge = time.Duration(hours) * time.Hour
	}

	sweepInterval := time.Hour
	if raw := os.Getenv("WORKSPACE_SWEEP_INTERVAL_MINUTES"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse WORKSPACE_SWEEP_INTERVAL_MINUTES: %w", err)
		}
		sweepInterval = time.Duration(minutes) * time.Minute
	}

	if jobTimeout > 0 && maxAge <= jobTimeout {
		return nil, fmt.Errorf("WORKSPACE_MAX_AGE_HOURS must exceed JOB_TIMEOUT_SECONDS")
	}

	return &WorkspaceConfig{
		ResultsRoot:   resultsRoot,
		JobTimeout:    jobTimeout,
		MaxAge:        maxAge,
		SweepInterval: sweepInterval,
	}, nil
}
