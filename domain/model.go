package domain

import (
	"fmt"
	"time"
)

type StageName string

const (
	StageDownloadFiles       StageName = "download_files"
	StageExtractCoefficients StageName = "extract_coefficients"
	StageAudioToCoefficients StageName = "audio_to_coefficients"
	StageCoefficientsToVideo StageName = "coefficients_to_video"
	StageBurnSubtitles       StageName = "burn_subtitles"
	StageUploadVideo         StageName = "upload_video"
)

// StageOrder returns the pipeline stages in execution order.
func StageOrder() []StageName {
	return []StageName{
		StageDownloadFiles,
		StageExtractCoefficients,
		StageAudioToCoefficients,
		StageCoefficientsToVideo,
		StageBurnSubtitles,
		StageUploadVideo,
	}
}

type Caption struct {
	Index   int
	StartMs int64
	EndMs   int64
	Text    string
}

func (c Caption) Validate() error {
	if c.Index < 1 {
		return fmt.Errorf("caption index must be >= 1, got %d", c.Index)
	}
	if c.StartMs < 0 {
		return fmt.Errorf("caption %d: start time must be >= 0, got %d", c.Index, c.StartMs)
	}
	if c.EndMs <= c.StartMs {
		return fmt.Errorf("caption %d: end time %d must be after start time %d", c.Index, c.EndMs, c.StartMs)
	}
	if c.Text == "" {
		return fmt.Errorf("caption %d: text must not be empty", c.Index)
	}
	return nil
}

type JobRequest struct {
	SourceImage     string
	DrivenAudio     string
	Size            int
	PoseStyle       int
	BatchSize       int
	ExpressionScale float64
	UseCPU          bool
	Captions        []Caption
}

func (r JobRequest) Validate() error {
	if r.SourceImage == "" {
		return fmt.Errorf("source image reference must not be empty")
	}
	if r.DrivenAudio == "" {
		return fmt.Errorf("driven audio reference must not be empty")
	}
	if r.Size <= 0 {
		return fmt.Errorf("size must be positive, got %d", r.Size)
	}
	if r.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", r.BatchSize)
	}
	seen := make(map[int]bool, len(r.Captions))
	for _, caption := range r.Captions {
		if err := caption.Validate(); err != nil {
			return err
		}
		if seen[caption.Index] {
			return fmt.Errorf("caption index %d is duplicated", caption.Index)
		}
		seen[caption.Index] = true
	}
	return nil
}

// Device returns the compute target the opaque stages should run on.
func (r JobRequest) Device() string {
	if r.UseCPU {
		return "cpu"
	}
	return "cuda"
}

// ProgressState holds one completion flag per pipeline stage. Flags are set
// true strictly in pipeline order and never flip back within a job.
type ProgressState struct {
	DownloadFiles       bool `json:"download_files"`
	ExtractCoefficients bool `json:"extract_coefficients"`
	AudioToCoefficients bool `json:"audio_to_coefficients"`
	CoefficientsToVideo bool `json:"coefficients_to_video"`
	BurnSubtitles       bool `json:"burn_subtitles"`
	UploadVideo         bool `json:"upload_video"`
}

func (p *ProgressState) Mark(stage StageName) {
	switch stage {
	case StageDownloadFiles:
		p.DownloadFiles = true
	case StageExtractCoefficients:
		p.ExtractCoefficients = true
	case StageAudioToCoefficients:
		p.AudioToCoefficients = true
	case StageCoefficientsToVideo:
		p.CoefficientsToVideo = true
	case StageBurnSubtitles:
		p.BurnSubtitles = true
	case StageUploadVideo:
		p.UploadVideo = true
	}
}

func (p ProgressState) Done(stage StageName) bool {
	switch stage {
	case StageDownloadFiles:
		return p.DownloadFiles
	case StageExtractCoefficients:
		return p.ExtractCoefficients
	case StageAudioToCoefficients:
		return p.AudioToCoefficients
	case StageCoefficientsToVideo:
		return p.CoefficientsToVideo
	case StageBurnSubtitles:
		return p.BurnSubtitles
	case StageUploadVideo:
		return p.UploadVideo
	}
	return false
}

func (p ProgressState) AllDone() bool {
	for _, stage := range StageOrder() {
		if !p.Done(stage) {
			return false
		}
	}
	return true
}

// CropInfo carries the crop region and re-composition transform produced by
// the coefficient extractor and consumed by the renderer. The orchestrator
// passes it through unchanged.
type CropInfo struct {
	OriginalWidth  int        `json:"original_width"`
	OriginalHeight int        `json:"original_height"`
	Region         [4]int     `json:"region"`
	Quad           [8]float64 `json:"quad"`
}

// StageEvent is emitted once per completed stage while a job runs.
type StageEvent struct {
	JobID    string        `json:"job_id"`
	Stage    StageName     `json:"stage"`
	Progress ProgressState `json:"progress"`
}

type JobResult struct {
	JobID       string
	VideoURL    string
	Progress    ProgressState
	FailedStage StageName
	Err         error
}

func (r JobResult) Succeeded() bool {
	return r.Err == nil
}

const (
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

type JobRecord struct {
	JobID       string
	Status      string
	FailedStage StageName
	VideoURL    string
	CreatedAt   time.Time
}

// ToRecord flattens a terminal result into the persisted job record.
func (r JobResult) ToRecord(createdAt time.Time) JobRecord {
	record := JobRecord{
		JobID:     r.JobID,
		Status:    JobStatusSucceeded,
		VideoURL:  r.VideoURL,
		CreatedAt: createdAt,
	}
	if !r.Succeeded() {
		record.Status = JobStatusFailed
		record.FailedStage = r.FailedStage
	}
	return record
}
