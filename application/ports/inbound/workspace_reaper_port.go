package inbound

import "context"

// WorkspaceReaperPort sweeps aged job workspaces from the results root until
// the context is cancelled.
type WorkspaceReaperPort interface {
	Start(ctx context.Context) error
}
