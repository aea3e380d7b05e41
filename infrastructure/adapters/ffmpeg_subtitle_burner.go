package adapters

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/domain"
)

const subtitleStyle = "FontName=Arial,FontSize=22,PrimaryColour=&HFFFFFF&,OutlineColour=&H000000&,Outline=2,Shadow=1,Alignment=2"

type ffmpegSubtitleBurner struct {
	logger     outbound.LoggerPort
	ffmpegPath string
}

func NewFFmpegSubtitleBurner(logger outbound.LoggerPort) outbound.SubtitleBurnerPort {
	return &ffmpegSubtitleBurner{
		logger:     logger,
		ffmpegPath: "ffmpeg",
	}
}

// Burn writes the captions to a temporary SRT track and muxes it onto the
// video stream while copying the audio stream unmodified. The SRT file is
// removed on every path. An empty caption list still runs the mux so the
// pipeline shape stays uniform.
func (b *ffmpegSubtitleBurner) Burn(ctx context.Context, videoPath string, captions []domain.Caption, outputPath string) error {
	srtPath := filepath.Join(filepath.Dir(outputPath), uuid.NewString()+".srt")
	if err := b.writeSubtitleFile(srtPath, captions); err != nil {
		b.logger.Error(err, "Failed to write subtitle file")
		return err
	}

	defer func(name string) {
		err := os.Remove(name)
		if err != nil {
			b.logger.Error(err, "Failed to remove subtitle file")
			return
		}
	}(srtPath)

	filter := fmt.Sprintf("subtitles=%s:force_style='%s'", srtPath, subtitleStyle)
	cmd := exec.CommandContext(ctx, b.ffmpegPath, "-y", "-i", videoPath, "-vf", filter, "-c:a", "copy", outputPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		b.logger.ErrorWithFields(err, "Subtitle mux failed", map[string]interface{}{
			"video":  videoPath,
			"output": outputPath,
		})
		return &domain.MuxError{Err: err, Output: stderr.String()}
	}

	return nil
}

func (b *ffmpegSubtitleBurner) writeSubtitleFile(srtPath string, captions []domain.Caption) error {
	sorted := make([]domain.Caption, len(captions))
	copy(sorted, captions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})

	file, err := os.Create(srtPath)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(file)
	for _, caption := range sorted {
		_, err = fmt.Fprintf(writer, "%d\n%s --> %s\n%s\n\n",
			caption.Index, formatSubtitleTime(caption.StartMs), formatSubtitleTime(caption.EndMs), caption.Text)
		if err != nil {
			_ = file.Close()
			return err
		}
	}

	if err := writer.Flush(); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

// formatSubtitleTime renders milliseconds as HH:MM:SS,mmm using truncating
// division, never rounding.
func formatSubtitleTime(ms int64) string {
	totalSec := ms / 1000
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	msRemainder := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, msRemainder)
}
