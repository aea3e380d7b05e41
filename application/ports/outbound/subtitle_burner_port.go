package outbound

import (
	"context"

	"generate-video-lambda/domain"
)

// SubtitleBurnerPort overlays captions onto the video stream while copying
// the audio stream unmodified. Runs even for an empty caption list.
type SubtitleBurnerPort interface {
	Burn(ctx context.Context, videoPath string, captions []domain.Caption, outputPath string) error
}
