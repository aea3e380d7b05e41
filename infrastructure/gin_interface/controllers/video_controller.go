package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"generate-video-lambda/application/ports/inbound"
	"generate-video-lambda/application/ports/outbound"
	"generate-video-lambda/domain"
	"generate-video-lambda/infrastructure/gin_interface/dto"
)

type VideoController interface {
	GenerateVideo(c *gin.Context)
	StreamVideoGeneration(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type videoController struct {
	logger       outbound.LoggerPort
	orchestrator inbound.JobOrchestratorPort
}

func NewVideoController(logger outbound.LoggerPort, orchestrator inbound.JobOrchestratorPort) VideoController {
	return &videoController{
		logger:       logger,
		orchestrator: orchestrator,
	}
}

func (v *videoController) GenerateVideo(c *gin.Context) {
	request, ok := v.bindRequest(c)
	if !ok {
		return
	}

	newCtx, cancel := context.WithCancel(c)
	defer cancel()

	jobID := uuid.NewString()
	events, results := v.orchestrator.Run(newCtx, inbound.RunJobParams{JobID: jobID, Request: request})

	result := v.awaitResult(events, results)

	if !result.Succeeded() {
		c.JSON(v.failureStatus(result.Err), dto.GenerateVideoErrorResponse{
			Error:    result.Err.Error(),
			Progress: &result.Progress,
		})
		return
	}

	c.JSON(http.StatusOK, dto.GenerateVideoResponse{
		Video:    result.VideoURL,
		Progress: result.Progress,
	})
}

// StreamVideoGeneration runs the same pipeline but pushes one SSE event per
// completed stage before the terminal result event.
func (v *videoController) StreamVideoGeneration(c *gin.Context) {
	request, ok := v.bindRequest(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	newCtx, cancel := context.WithCancel(c)
	defer cancel()

	jobID := uuid.NewString()
	events, results := v.orchestrator.Run(newCtx, inbound.RunJobParams{JobID: jobID, Request: request})

	for events != nil || results != nil {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			v.writeEvent(c, "stage", event)
		case result, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if result.Succeeded() {
				v.writeEvent(c, "result", dto.GenerateVideoResponse{Video: result.VideoURL, Progress: result.Progress})
			} else {
				v.writeEvent(c, "result", dto.GenerateVideoErrorResponse{Error: result.Err.Error(), Progress: &result.Progress})
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (v *videoController) bindRequest(c *gin.Context) (domain.JobRequest, bool) {
	var generateRequest dto.GenerateVideoRequest
	if err := c.ShouldBindJSON(&generateRequest); err != nil {
		c.JSON(http.StatusBadRequest, dto.GenerateVideoErrorResponse{Error: err.Error()})
		return domain.JobRequest{}, false
	}

	request, err := generateRequest.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.GenerateVideoErrorResponse{Error: err.Error()})
		return domain.JobRequest{}, false
	}

	return request, true
}

func (v *videoController) awaitResult(events <-chan domain.StageEvent, results <-chan domain.JobResult) domain.JobResult {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case result := <-results:
			return result
		}
	}
}

func (v *videoController) failureStatus(err error) int {
	var notFound *domain.NotFoundError
	var fetch *domain.FetchError
	var noFace *domain.NoFaceDetectedError
	switch {
	case errors.As(err, &notFound), errors.As(err, &fetch):
		return http.StatusBadRequest
	case errors.As(err, &noFace):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (v *videoController) writeEvent(c *gin.Context, eventName string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		v.logger.Error(err, "Failed to marshal SSE payload")
		return
	}
	if _, err := c.Writer.WriteString("event: " + eventName + "\ndata: " + string(data) + "\n\n"); err != nil {
		v.logger.Error(err, "Failed to write SSE event")
		return
	}
	c.Writer.Flush()
}

func (v *videoController) RegisterRoutes(g *gin.Engine) {
	g.POST("/generate-video", v.GenerateVideo)
	g.POST("/generate-video/stream", v.StreamVideoGeneration)
	g.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
