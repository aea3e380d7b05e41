package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"generate-video-lambda/application/ports/inbound"
	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/channel_utils"
	"generate-video-lambda/config"
	"generate-video-lambda/domain"
)

const firstFrameDirName = "first_frame"
const subtitledVideoName = "final_with_subs.mp4"

type jobOrchestrator struct {
	logger          outbound.LoggerPort
	workerPool      outbound.TaskDispatcher
	resolver        outbound.ArtifactResolverPort
	extractor       outbound.CoefficientExtractorPort
	synthesizer     outbound.MotionSynthesizerPort
	renderer        outbound.VideoRendererPort
	subtitleBurner  outbound.SubtitleBurnerPort
	publisher       outbound.VideoPublisherPort
	recordSaver     outbound.JobRecordSaverPort
	workspaceConfig *config.WorkspaceConfig
	imageMap        map[string]string
}

func NewJobOrchestrator(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	resolver outbound.ArtifactResolverPort, extractor outbound.CoefficientExtractorPort,
	synthesizer outbound.MotionSynthesizerPort, renderer outbound.VideoRendererPort,
	subtitleBurner outbound.SubtitleBurnerPort, publisher outbound.VideoPublisherPort,
	recordSaver outbound.JobRecordSaverPort, workspaceConfig *config.WorkspaceConfig,
	imageMap map[string]string) inbound.JobOrchestratorPort {
	return &jobOrchestrator{
		logger:          logger,
		workerPool:      workerPool,
		resolver:        resolver,
		extractor:       extractor,
		synthesizer:     synthesizer,
		renderer:        renderer,
		subtitleBurner:  subtitleBurner,
		publisher:       publisher,
		recordSaver:     recordSaver,
		workspaceConfig: workspaceConfig,
		imageMap:        imageMap,
	}
}

func (j *jobOrchestrator) Run(ctx context.Context, params inbound.RunJobParams) (<-chan domain.StageEvent, <-chan domain.JobResult) {
	events := make(chan domain.StageEvent, len(domain.StageOrder()))
	results := make(chan domain.JobResult, 1)

	err := j.workerPool.Submit(func() {
		defer close(results)
		defer close(events)

		startedAt := time.Now()
		result := j.execute(ctx, params, events)

		if !result.Succeeded() {
			j.logger.ErrorWithFields(result.Err, "Job failed", map[string]interface{}{
				"job_id": params.JobID,
				"stage":  string(result.FailedStage),
			})
		}

		// Records are written on a fresh context so a job timeout does not
		// also lose the terminal record.
		if err := j.recordSaver.Save(context.Background(), result.ToRecord(startedAt)); err != nil {
			j.logger.Error(err, "Failed to save job record")
		}

		results <- result
	})
	if err != nil {
		j.logger.Error(err, "Failed to submit job to worker pool")
		results <- domain.JobResult{JobID: params.JobID, Err: err}
		close(events)
		close(results)
	}

	return events, results
}

// jobRun tracks per-job mutable state: the monotonic progress flags and the
// hand-off artifacts owed to cleanup.
type jobRun struct {
	jobID     string
	progress  domain.ProgressState
	artifacts []string
}

func (r *jobRun) failure(stage domain.StageName, err error) domain.JobResult {
	return domain.JobResult{JobID: r.jobID, Progress: r.progress, FailedStage: stage, Err: err}
}

func (j *jobOrchestrator) execute(ctx context.Context, params inbound.RunJobParams, events chan<- domain.StageEvent) domain.JobResult {
	run := &jobRun{jobID: params.JobID}
	request := params.Request

	if err := request.Validate(); err != nil {
		return domain.JobResult{JobID: run.jobID, Err: err}
	}

	if j.workspaceConfig.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.workspaceConfig.JobTimeout)
		defer cancel()
	}

	workDir, err := j.allocateWorkspace(run.jobID)
	if err != nil {
		return run.failure(domain.StageDownloadFiles, err)
	}

	// Hand-off artifacts are removed on success and best-effort on failure;
	// cleanup never masks the stage error.
	defer func() {
		j.cleanup(run.artifacts)
	}()

	complete := func(stage domain.StageName) {
		run.progress.Mark(stage)
		events <- domain.StageEvent{JobID: run.jobID, Stage: stage, Progress: run.progress}
	}

	imagePath, audioPath, err := j.resolveInputs(ctx, request, workDir, run)
	if err != nil {
		return run.failure(domain.StageDownloadFiles, err)
	}
	complete(domain.StageDownloadFiles)

	extractRes, err := j.extractor.Extract(ctx, outbound.ExtractCoefficientsParams{
		ImagePath: imagePath,
		OutputDir: filepath.Join(workDir, firstFrameDirName),
		Size:      request.Size,
		Device:    request.Device(),
	})
	if err != nil {
		return run.failure(domain.StageExtractCoefficients, err)
	}
	complete(domain.StageExtractCoefficients)

	motionCoeffPath, err := j.synthesizer.Synthesize(ctx, outbound.SynthesizeMotionParams{
		CoeffPath: extractRes.CoeffPath,
		AudioPath: audioPath,
		PoseStyle: request.PoseStyle,
		OutputDir: workDir,
		Device:    request.Device(),
	})
	if err != nil {
		return run.failure(domain.StageAudioToCoefficients, err)
	}
	complete(domain.StageAudioToCoefficients)

	renderedPath, err := j.renderer.Render(ctx, outbound.RenderVideoParams{
		MotionCoeffPath: motionCoeffPath,
		CropImagePath:   extractRes.CropImagePath,
		CropInfo:        extractRes.CropInfo,
		AudioPath:       audioPath,
		BatchSize:       request.BatchSize,
		ExpressionScale: request.ExpressionScale,
		Size:            request.Size,
		OutputDir:       workDir,
		Device:          request.Device(),
	})
	if err != nil {
		return run.failure(domain.StageCoefficientsToVideo, err)
	}
	run.artifacts = append(run.artifacts, renderedPath)
	complete(domain.StageCoefficientsToVideo)

	subtitledPath := filepath.Join(workDir, subtitledVideoName)
	run.artifacts = append(run.artifacts, subtitledPath)
	if err := j.subtitleBurner.Burn(ctx, renderedPath, request.Captions, subtitledPath); err != nil {
		return run.failure(domain.StageBurnSubtitles, err)
	}
	complete(domain.StageBurnSubtitles)

	publishRes, err := j.publisher.Publish(ctx, outbound.PublishVideoRequest{
		VideoFileName: subtitledPath,
		JobID:         run.jobID,
	})
	if err != nil {
		return run.failure(domain.StageUploadVideo, err)
	}
	complete(domain.StageUploadVideo)

	return domain.JobResult{
		JobID:    run.jobID,
		VideoURL: publishRes.VideoURL,
		Progress: run.progress,
	}
}

// allocateWorkspace creates the job's exclusively owned directory under the
// results root. Timestamp plus job id keeps concurrent jobs collision-free.
func (j *jobOrchestrator) allocateWorkspace(jobID string) (string, error) {
	suffix := jobID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	workDir := filepath.Join(j.workspaceConfig.ResultsRoot, time.Now().Format("2006_01_02_15.04.05")+"_"+suffix)

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(workDir, firstFrameDirName), 0o755); err != nil {
		return "", err
	}

	return workDir, nil
}

type resolveOutcome struct {
	role string
	path string
	err  error
}

// resolveInputs materializes the source image and driven audio concurrently
// and joins before the extraction stage starts.
func (j *jobOrchestrator) resolveInputs(ctx context.Context, request domain.JobRequest, workDir string, run *jobRun) (string, string, error) {
	imageRef := domain.ClassifyReference(request.SourceImage, j.imageMap)
	audioRef := domain.ClassifyReference(request.DrivenAudio, nil)

	imageCh := j.resolveAsync(ctx, imageRef, workDir, "image")
	audioCh := j.resolveAsync(ctx, audioRef, workDir, "audio")

	merged, err := channel_utils.MergeChannels(j.workerPool, imageCh, audioCh)
	if err != nil {
		return "", "", err
	}

	var imagePath, audioPath string
	var firstErr error
	for outcome := range merged {
		if outcome.err != nil {
			if firstErr == nil {
				firstErr = outcome.err
			}
			continue
		}
		run.artifacts = append(run.artifacts, outcome.path)
		if outcome.role == "image" {
			imagePath = outcome.path
		} else {
			audioPath = outcome.path
		}
	}
	if firstErr != nil {
		return "", "", firstErr
	}

	return imagePath, audioPath, nil
}

func (j *jobOrchestrator) resolveAsync(ctx context.Context, ref domain.Reference, destDir string, role string) <-chan resolveOutcome {
	out := make(chan resolveOutcome, 1)
	err := j.workerPool.Submit(func() {
		defer close(out)
		path, err := j.resolver.Resolve(ctx, ref, destDir)
		out <- resolveOutcome{role: role, path: path, err: err}
	})
	if err != nil {
		out <- resolveOutcome{role: role, err: err}
		close(out)
	}
	return out
}

// cleanup deletes hand-off artifacts. Files already absent are not an error,
// so invoking cleanup twice is harmless.
func (j *jobOrchestrator) cleanup(paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			j.logger.ErrorWithFields(err, "Failed to remove intermediate artifact", map[string]interface{}{
				"path": path,
			})
		}
	}
}
