package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"generate-video-lambda/application/ports/inbound"
	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/config"
)

// workspaceReaper sweeps leaked job workspaces. A workspace directory leaks
// when the process dies mid-job; the sweep removes directories older than the
// configured max age, which must exceed the job timeout so running jobs are
// never touched.
type workspaceReaper struct {
	logger          outbound.LoggerPort
	workerPool      outbound.TaskDispatcher
	workspaceConfig *config.WorkspaceConfig
}

func NewWorkspaceReaper(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	workspaceConfig *config.WorkspaceConfig) inbound.WorkspaceReaperPort {
	return &workspaceReaper{
		logger:          logger,
		workerPool:      workerPool,
		workspaceConfig: workspaceConfig,
	}
}

func (w *workspaceReaper) Start(ctx context.Context) error {
	return w.workerPool.Submit(func() {
		ticker := time.NewTicker(w.workspaceConfig.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.sweep(time.Now())
			}
		}
	})
}

func (w *workspaceReaper) sweep(now time.Time) {
	entries, err := os.ReadDir(w.workspaceConfig.ResultsRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Error(err, "Failed to read results root")
		}
		return
	}

	cutoff := now.Add(-w.workspaceConfig.MaxAge)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		workspace := filepath.Join(w.workspaceConfig.ResultsRoot, entry.Name())
		if err := os.RemoveAll(workspace); err != nil {
			w.logger.ErrorWithFields(err, "Failed to remove aged workspace", map[string]interface{}{
				"workspace": workspace,
			})
			continue
		}
		w.logger.InfoWithFields("Removed aged workspace", map[string]interface{}{
			"workspace": workspace,
		})
	}
}
