package adapters

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/domain"
)

type ContentFetcher interface {
	FetchContent(req *http.Request) ([]byte, error)
	FetchToFile(req *http.Request, destPath string) error
}

type contentFetcher struct {
	logger outbound.LoggerPort
}

func NewContentFetcher(logger outbound.LoggerPort) ContentFetcher {
	return &contentFetcher{
		logger: logger,
	}
}

func (c *contentFetcher) FetchContent(req *http.Request) ([]byte, error) {
	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to send the HTTP request", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
		})
		return nil, err
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.ErrorWithFields(err, "Failed to close the response body", map[string]interface{}{
				"method": req.Method,
				"URL":    req.URL.String(),
			})
		}
	}(res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		bodyPayload, _ := io.ReadAll(res.Body)
		c.logger.ErrorWithFields(nil, "HTTP request returned non-OK status code", map[string]interface{}{
			"method":  req.Method,
			"URL":     req.URL.String(),
			"status":  res.StatusCode,
			"message": string(bodyPayload),
		})
		return nil, fmt.Errorf("HTTP request returned non-OK status code: %d", res.StatusCode)
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to read the response body", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
		})
		return nil, err
	}

	return payload, nil
}

// FetchToFile streams the response body to destPath. The body is written to a
// temporary sibling first and renamed only on full success, so a failed fetch
// never leaves a partial file behind. Non-2xx responses return
// *domain.FetchError carrying the status code.
func (c *contentFetcher) FetchToFile(req *http.Request, destPath string) error {
	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to send the HTTP request", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
		})
		return &domain.FetchError{URL: req.URL.String(), Err: err}
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.ErrorWithFields(err, "Failed to close the response body", map[string]interface{}{
				"method": req.Method,
				"URL":    req.URL.String(),
			})
		}
	}(res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.logger.ErrorWithFields(nil, "HTTP request returned non-OK status code", map[string]interface{}{
			"method": req.Method,
			"URL":    req.URL.String(),
			"status": res.StatusCode,
		})
		return &domain.FetchError{URL: req.URL.String(), Status: res.StatusCode}
	}

	partPath := destPath + ".part"
	file, err := os.Create(partPath)
	if err != nil {
		c.logger.Error(err, "Failed to create download file")
		return &domain.FetchError{URL: req.URL.String(), Err: err}
	}

	_, err = io.Copy(file, res.Body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		c.logger.Error(err, "Failed to write download file")
		if removeErr := os.Remove(partPath); removeErr != nil {
			c.logger.Error(removeErr, "Failed to remove partial download file")
		}
		return &domain.FetchError{URL: req.URL.String(), Err: err}
	}

	if err := os.Rename(partPath, destPath); err != nil {
		c.logger.Error(err, "Failed to finalize download file")
		if removeErr := os.Remove(partPath); removeErr != nil {
			c.logger.Error(removeErr, "Failed to remove partial download file")
		}
		return &domain.FetchError{URL: req.URL.String(), Err: err}
	}

	return nil
}
