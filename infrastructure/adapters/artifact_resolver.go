package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/domain"
)

type artifactResolver struct {
	ContentFetcher
	logger outbound.LoggerPort
}

func NewArtifactResolver(contentFetcher ContentFetcher, logger outbound.LoggerPort) outbound.ArtifactResolverPort {
	return &artifactResolver{
		ContentFetcher: contentFetcher,
		logger:         logger,
	}
}

func (a *artifactResolver) Resolve(ctx context.Context, ref domain.Reference, destDir string) (string, error) {
	switch ref.Kind {
	case domain.ReferenceRemoteURL:
		return a.download(ctx, ref, destDir)
	default:
		return a.copyLocal(ref, destDir)
	}
}

func (a *artifactResolver) download(ctx context.Context, ref domain.Reference, destDir string) (string, error) {
	parsed, err := url.Parse(ref.Target)
	if err != nil {
		return "", &domain.FetchError{URL: ref.Target, Err: err}
	}

	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		base = uuid.NewString()
	}
	destPath := uniqueDestination(destDir, base)

	req, err := http.NewRequestWithContext(ctx, "GET", ref.Target, nil)
	if err != nil {
		a.logger.Error(err, "Failed to create the download request")
		return "", &domain.FetchError{URL: ref.Target, Err: err}
	}

	if err := a.FetchToFile(req, destPath); err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) && fetchErr.Status == http.StatusNotFound {
			return "", &domain.NotFoundError{Reference: ref.Raw}
		}
		return "", err
	}

	return destPath, nil
}

func (a *artifactResolver) copyLocal(ref domain.Reference, destDir string) (string, error) {
	info, err := os.Stat(ref.Target)
	if err != nil || info.IsDir() {
		return "", &domain.NotFoundError{Reference: ref.Raw}
	}

	destPath := uniqueDestination(destDir, filepath.Base(ref.Target))

	src, err := os.Open(ref.Target)
	if err != nil {
		return "", &domain.NotFoundError{Reference: ref.Raw}
	}
	defer func(src *os.File) {
		if err := src.Close(); err != nil {
			a.logger.Error(err, "Failed to close source file")
		}
	}(src)

	dest, err := os.Create(destPath)
	if err != nil {
		a.logger.Error(err, "Failed to create destination file")
		return "", err
	}

	_, err = io.Copy(dest, src)
	closeErr := dest.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		a.logger.Error(err, "Failed to copy artifact into workspace")
		if removeErr := os.Remove(destPath); removeErr != nil {
			a.logger.Error(removeErr, "Failed to remove partial copy")
		}
		return "", err
	}

	return destPath, nil
}

// uniqueDestination keeps the source basename when it is free and suffixes it
// otherwise, so two artifacts with colliding names never overwrite each other.
func uniqueDestination(destDir string, base string) string {
	destPath := filepath.Join(destDir, base)
	if _, err := os.Stat(destPath); os.IsNotExist(err) {
		return destPath
	}

	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	return filepath.Join(destDir, stem+"-"+uuid.NewString()[:8]+ext)
}
