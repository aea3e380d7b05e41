package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"

	"generate-video-lambda/application/ports/inbound"
	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/config"
	"generate-video-lambda/domain"
	"generate-video-lambda/infrastructure/adapters"
)

type fakeResolver struct {
	err error
}

func (f *fakeResolver) Resolve(_ context.Context, ref domain.Reference, destDir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(destDir, filepath.Base(ref.Target))
	if err := os.WriteFile(path, []byte(ref.Raw), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeExtractor struct {
	err error
}

func (f *fakeExtractor) Extract(_ context.Context, params outbound.ExtractCoefficientsParams) (*outbound.ExtractCoefficientsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &outbound.ExtractCoefficientsResponse{
		CoeffPath:     filepath.Join(params.OutputDir, "coeff.mat"),
		CropImagePath: filepath.Join(params.OutputDir, "crop.png"),
		CropInfo:      domain.CropInfo{OriginalWidth: 512, OriginalHeight: 512},
	}, nil
}

type fakeSynthesizer struct {
	err error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, params outbound.SynthesizeMotionParams) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(params.OutputDir, "motion.mat"), nil
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(_ context.Context, params outbound.RenderVideoParams) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(params.OutputDir, "rendered.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeBurner struct {
	err      error
	captions []domain.Caption
}

func (f *fakeBurner) Burn(_ context.Context, _ string, captions []domain.Caption, outputPath string) error {
	f.captions = captions
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("video+subs"), 0o644)
}

type fakePublisher struct {
	err error
}

func (f *fakePublisher) Publish(_ context.Context, req outbound.PublishVideoRequest) (*outbound.PublishVideoResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := os.Stat(req.VideoFileName); err != nil {
		return nil, &domain.PublishError{Err: fmt.Errorf("artifact missing at publish time: %w", err)}
	}
	return &outbound.PublishVideoResponse{
		VideoURL: "https://bucket.s3.us-east-1.amazonaws.com/zennvid/" + req.JobID + ".mp4",
		VideoKey: "zennvid/" + req.JobID + ".mp4",
	}, nil
}

type fakeRecordSaver struct {
	records []domain.JobRecord
}

func (f *fakeRecordSaver) Save(_ context.Context, record domain.JobRecord) error {
	f.records = append(f.records, record)
	return nil
}

type orchestratorHarness struct {
	resolver    *fakeResolver
	extractor   *fakeExtractor
	synthesizer *fakeSynthesizer
	renderer    *fakeRenderer
	burner      *fakeBurner
	publisher   *fakePublisher
	recordSaver *fakeRecordSaver
	resultsRoot string
	orch        inbound.JobOrchestratorPort
}

func newHarness(t *testing.T) *orchestratorHarness {
	t.Helper()

	workerPool, err := ants.NewPool(20)
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(workerPool.Release)

	h := &orchestratorHarness{
		resolver:    &fakeResolver{},
		extractor:   &fakeExtractor{},
		synthesizer: &fakeSynthesizer{},
		renderer:    &fakeRenderer{},
		burner:      &fakeBurner{},
		publisher:   &fakePublisher{},
		recordSaver: &fakeRecordSaver{},
		resultsRoot: t.TempDir(),
	}

	workspaceConfig := &config.WorkspaceConfig{
		ResultsRoot:   h.resultsRoot,
		MaxAge:        time.Hour,
		SweepInterval: time.Hour,
	}

	h.orch = NewJobOrchestrator(adapters.NewZerologWrapper(), workerPool, h.resolver, h.extractor,
		h.synthesizer, h.renderer, h.burner, h.publisher, h.recordSaver, workspaceConfig,
		map[string]string{"known-name-1": "/images/known1.png"})

	return h
}

func validRequest() domain.JobRequest {
	return domain.JobRequest{
		SourceImage:     "known-name-1",
		DrivenAudio:     "https://example.com/audio.wav",
		Size:            256,
		BatchSize:       2,
		ExpressionScale: 1.0,
		Captions: []domain.Caption{
			{Index: 1, StartMs: 0, EndMs: 1500, Text: "hello"},
		},
	}
}

func runJob(t *testing.T, h *orchestratorHarness, request domain.JobRequest) ([]domain.StageEvent, domain.JobResult) {
	t.Helper()

	events, results := h.orch.Run(context.Background(), inbound.RunJobParams{JobID: "12345678-job", Request: request})

	var collected []domain.StageEvent
	var result domain.JobResult
	gotResult := false

	for events != nil || results != nil {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			collected = append(collected, event)
		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			result = res
			gotResult = true
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for job to finish")
		}
	}

	if !gotResult {
		t.Fatal("result channel closed without a terminal result")
	}
	return collected, result
}

func (h *orchestratorHarness) workspaceDir(t *testing.T) string {
	t.Helper()
	entries, err := os.ReadDir(h.resultsRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one workspace, found %d", len(entries))
	}
	return filepath.Join(h.resultsRoot, entries[0].Name())
}

func TestJobSucceedsWithFlagsInPipelineOrder(t *testing.T) {
	h := newHarness(t)

	events, result := runJob(t, h, validRequest())

	if !result.Succeeded() {
		t.Fatal("expected success, got:", result.Err)
	}
	if result.VideoURL == "" {
		t.Error("expected a public video URL")
	}
	if !result.Progress.AllDone() {
		t.Errorf("expected all progress flags true, got %+v", result.Progress)
	}

	order := domain.StageOrder()
	if len(events) != len(order) {
		t.Fatalf("got %d stage events, want %d", len(events), len(order))
	}
	for i, event := range events {
		if event.Stage != order[i] {
			t.Errorf("event %d stage = %s, want %s", i, event.Stage, order[i])
		}
		for j, stage := range order {
			want := j <= i
			if event.Progress.Done(stage) != want {
				t.Errorf("event %d: Done(%s) = %v, want %v", i, stage, event.Progress.Done(stage), want)
			}
		}
	}
}

func TestJobCleansUpHandoffArtifacts(t *testing.T) {
	h := newHarness(t)

	_, result := runJob(t, h, validRequest())
	if !result.Succeeded() {
		t.Fatal("expected success, got:", result.Err)
	}

	workDir := h.workspaceDir(t)
	for _, name := range []string{"known1.png", "audio.wav", "rendered.mp4", "final_with_subs.mp4"} {
		if _, err := os.Stat(filepath.Join(workDir, name)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed after cleanup", name)
		}
	}

	// The workspace itself and the first-frame artifacts are retained.
	if _, err := os.Stat(filepath.Join(workDir, "first_frame")); err != nil {
		t.Error("expected first_frame directory to be retained:", err)
	}
}

func TestJobFailsAtDownloadWithNoFlagsSet(t *testing.T) {
	h := newHarness(t)
	h.resolver.err = &domain.NotFoundError{Reference: "/no/such/file.png"}

	request := validRequest()
	request.SourceImage = "/no/such/file.png"
	events, result := runJob(t, h, request)

	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if result.FailedStage != domain.StageDownloadFiles {
		t.Errorf("failed stage = %s, want %s", result.FailedStage, domain.StageDownloadFiles)
	}
	if result.Progress != (domain.ProgressState{}) {
		t.Errorf("expected no flags set, got %+v", result.Progress)
	}
	if len(events) != 0 {
		t.Errorf("expected no stage events, got %d", len(events))
	}
}

func TestJobFailsAtExtractionWhenNoFaceDetected(t *testing.T) {
	h := newHarness(t)
	h.extractor.err = &domain.NoFaceDetectedError{ImagePath: "face.png"}

	_, result := runJob(t, h, validRequest())

	if result.FailedStage != domain.StageExtractCoefficients {
		t.Errorf("failed stage = %s, want %s", result.FailedStage, domain.StageExtractCoefficients)
	}

	var noFace *domain.NoFaceDetectedError
	if !errors.As(result.Err, &noFace) {
		t.Errorf("expected NoFaceDetectedError, got %v", result.Err)
	}

	want := domain.ProgressState{DownloadFiles: true}
	if result.Progress != want {
		t.Errorf("progress = %+v, want only download_files", result.Progress)
	}

	// Resolved inputs are cleaned up best-effort even on failure.
	workDir := h.workspaceDir(t)
	for _, name := range []string{"known1.png", "audio.wav"} {
		if _, err := os.Stat(filepath.Join(workDir, name)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed after failed job", name)
		}
	}
}

func TestJobFailsAtSubtitleStage(t *testing.T) {
	h := newHarness(t)
	h.burner.err = &domain.MuxError{Err: errors.New("exit status 1")}

	_, result := runJob(t, h, validRequest())

	if result.FailedStage != domain.StageBurnSubtitles {
		t.Errorf("failed stage = %s, want %s", result.FailedStage, domain.StageBurnSubtitles)
	}
	if !result.Progress.CoefficientsToVideo || result.Progress.BurnSubtitles {
		t.Errorf("unexpected progress: %+v", result.Progress)
	}
}

func TestJobFailsAtPublishStage(t *testing.T) {
	h := newHarness(t)
	h.publisher.err = &domain.PublishError{Err: errors.New("access denied")}

	_, result := runJob(t, h, validRequest())

	if result.FailedStage != domain.StageUploadVideo {
		t.Errorf("failed stage = %s, want %s", result.FailedStage, domain.StageUploadVideo)
	}
	want := domain.ProgressState{
		DownloadFiles:       true,
		ExtractCoefficients: true,
		AudioToCoefficients: true,
		CoefficientsToVideo: true,
		BurnSubtitles:       true,
	}
	if result.Progress != want {
		t.Errorf("progress = %+v", result.Progress)
	}
}

func TestJobRejectsInvalidRequest(t *testing.T) {
	h := newHarness(t)

	request := validRequest()
	request.Captions = []domain.Caption{{Index: 1, StartMs: 500, EndMs: 100, Text: "inverted"}}
	_, result := runJob(t, h, request)

	if result.Succeeded() {
		t.Fatal("expected validation failure")
	}
	if result.Progress != (domain.ProgressState{}) {
		t.Errorf("expected no progress, got %+v", result.Progress)
	}
}

func TestJobSavesTerminalRecord(t *testing.T) {
	h := newHarness(t)

	_, result := runJob(t, h, validRequest())
	if !result.Succeeded() {
		t.Fatal("expected success, got:", result.Err)
	}

	if len(h.recordSaver.records) != 1 {
		t.Fatalf("expected exactly one job record, got %d", len(h.recordSaver.records))
	}
	record := h.recordSaver.records[0]
	if record.Status != domain.JobStatusSucceeded || record.VideoURL != result.VideoURL {
		t.Errorf("unexpected record: %+v", record)
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	h := newHarness(t)
	orch := h.orch.(*jobOrchestrator)

	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "b.wav")}
	for _, path := range paths {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	orch.cleanup(paths)
	for _, path := range paths {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expected %s removed", path)
		}
	}

	// Second invocation over already-absent files must not blow up.
	orch.cleanup(paths)
}

func TestEmptyCaptionListStillRunsSubtitleStage(t *testing.T) {
	h := newHarness(t)

	request := validRequest()
	request.Captions = nil
	_, result := runJob(t, h, request)

	if !result.Succeeded() {
		t.Fatal("expected success, got:", result.Err)
	}
	if !result.Progress.BurnSubtitles {
		t.Error("expected subtitle stage to run for an empty caption list")
	}
	if h.burner.captions != nil && len(h.burner.captions) != 0 {
		t.Errorf("expected empty captions passed to burner, got %v", h.burner.captions)
	}
}
