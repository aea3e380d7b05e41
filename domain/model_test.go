package domain

import (
	"testing"
	"time"
)

func TestCaptionValidate(t *testing.T) {
	valid := Caption{Index: 1, StartMs: 0, EndMs: 1500, Text: "hello"}
	if err := valid.Validate(); err != nil {
		t.Fatal("expected valid caption, got:", err)
	}

	cases := []struct {
		name    string
		caption Caption
	}{
		{"zero index", Caption{Index: 0, StartMs: 0, EndMs: 100, Text: "x"}},
		{"negative start", Caption{Index: 1, StartMs: -1, EndMs: 100, Text: "x"}},
		{"inverted range", Caption{Index: 1, StartMs: 200, EndMs: 100, Text: "x"}},
		{"equal start and end", Caption{Index: 1, StartMs: 100, EndMs: 100, Text: "x"}},
		{"empty text", Caption{Index: 1, StartMs: 0, EndMs: 100, Text: ""}},
	}
	for _, tc := range cases {
		if err := tc.caption.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestJobRequestValidate(t *testing.T) {
	request := JobRequest{
		SourceImage: "Mark Zuckerberg",
		DrivenAudio: "https://example.com/audio.wav",
		Size:        256,
		BatchSize:   2,
		Captions: []Caption{
			{Index: 2, StartMs: 1500, EndMs: 3000, Text: "second"},
			{Index: 1, StartMs: 0, EndMs: 1500, Text: "first"},
		},
	}
	if err := request.Validate(); err != nil {
		t.Fatal("expected valid request, got:", err)
	}

	duplicated := request
	duplicated.Captions = []Caption{
		{Index: 1, StartMs: 0, EndMs: 100, Text: "a"},
		{Index: 1, StartMs: 200, EndMs: 300, Text: "b"},
	}
	if err := duplicated.Validate(); err == nil {
		t.Error("expected duplicate caption index to be rejected")
	}

	noImage := request
	noImage.SourceImage = ""
	if err := noImage.Validate(); err == nil {
		t.Error("expected empty source image to be rejected")
	}
}

func TestJobRequestDevice(t *testing.T) {
	if device := (JobRequest{UseCPU: true}).Device(); device != "cpu" {
		t.Errorf("device = %q, want cpu", device)
	}
	if device := (JobRequest{}).Device(); device != "cuda" {
		t.Errorf("device = %q, want cuda", device)
	}
}

func TestProgressStateMarkInOrder(t *testing.T) {
	var progress ProgressState
	for i, stage := range StageOrder() {
		progress.Mark(stage)
		for j, other := range StageOrder() {
			want := j <= i
			if progress.Done(other) != want {
				t.Fatalf("after marking %s, Done(%s) = %v, want %v", stage, other, progress.Done(other), want)
			}
		}
	}
	if !progress.AllDone() {
		t.Error("expected all flags true after marking every stage")
	}
}

func TestJobResultToRecord(t *testing.T) {
	createdAt := time.Now()

	succeeded := JobResult{JobID: "job-1", VideoURL: "https://example.com/v.mp4"}
	record := succeeded.ToRecord(createdAt)
	if record.Status != JobStatusSucceeded || record.VideoURL != succeeded.VideoURL || record.FailedStage != "" {
		t.Errorf("unexpected success record: %+v", record)
	}

	failed := JobResult{JobID: "job-2", FailedStage: StageUploadVideo, Err: &PublishError{}}
	record = failed.ToRecord(createdAt)
	if record.Status != JobStatusFailed || record.FailedStage != StageUploadVideo {
		t.Errorf("unexpected failed record: %+v", record)
	}
}
