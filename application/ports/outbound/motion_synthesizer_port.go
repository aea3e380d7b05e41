package outbound

import "context"

type SynthesizeMotionParams struct {
	CoeffPath string
	AudioPath string
	PoseStyle int
	OutputDir string
	Device    string
}

// MotionSynthesizerPort is the boundary of the opaque audio-to-motion stage.
// It has no soft-failure mode: any error is fatal to the job.
type MotionSynthesizerPort interface {
	Synthesize(ctx context.Context, params SynthesizeMotionParams) (string, error)
}
