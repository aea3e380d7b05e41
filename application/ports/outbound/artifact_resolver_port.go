package outbound

import (
	"context"

	"generate-video-lambda/domain"
)

// ArtifactResolverPort materializes a classified reference as exactly one new
// file under destDir and returns its path.
type ArtifactResolverPort interface {
	Resolve(ctx context.Context, ref domain.Reference, destDir string) (string, error)
}
