package domain

import "fmt"

// FetchError reports a failed remote download: a transport error or a
// non-2xx response.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError reports a reference that matched neither the symbolic table,
// an existing local file, nor a reachable remote object.
type NotFoundError struct {
	Reference string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reference %q could not be resolved", e.Reference)
}

// NoFaceDetectedError is the coefficient extractor's recoverable failure: the
// source image contains no usable face.
type NoFaceDetectedError struct {
	ImagePath string
}

func (e *NoFaceDetectedError) Error() string {
	return fmt.Sprintf("no usable face detected in %s", e.ImagePath)
}

type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string { return fmt.Sprintf("audio-to-motion synthesis: %v", e.Err) }
func (e *SynthesisError) Unwrap() error { return e.Err }

type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("video rendering: %v", e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

// MuxError reports a non-zero exit from the external media-mux tool.
type MuxError struct {
	Err    error
	Output string
}

func (e *MuxError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("subtitle mux: %v: %s", e.Err, e.Output)
	}
	return fmt.Sprintf("subtitle mux: %v", e.Err)
}

func (e *MuxError) Unwrap() error { return e.Err }

type PublishError struct {
	Err error
}

func (e *PublishError) Error() string { return fmt.Sprintf("publish video: %v", e.Err) }
func (e *PublishError) Unwrap() error { return e.Err }
