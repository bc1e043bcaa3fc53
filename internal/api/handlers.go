package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.temporal.io/sdk/client"

	"ingestpipe/internal/workflow"
	jobentities "ingestpipe/modules/job/domain/entities"
	transentities "ingestpipe/modules/transcription/domain/entities"
	"ingestpipe/seedwork/infrastructure/container"
)

type handlers struct {
	container *container.Container
	temporal  client.Client
}

func ownerID(c *gin.Context) string {
	return c.GetHeader("X-Owner-ID")
}

// createDownloadJob starts a download job for a media URL, returning
// its job_id.
func (h *handlers) createDownloadJob(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner := ownerID(c)
	if owner == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing owner"})
		return
	}

	job := jobentities.NewJob(owner, jobentities.KindDownload)
	if err := h.container.JobRepo.Create(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	_, err := h.temporal.ExecuteWorkflow(c.Request.Context(), client.StartWorkflowOptions{
		ID:        "download-" + job.GetID(),
		TaskQueue: h.container.Config.Temporal.TaskQueue,
	}, workflow.DownloadWorkflow, workflow.DownloadWorkflowInput{
		JobID:     job.GetID(),
		OwnerID:   owner,
		SourceURL: req.URL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.GetID()})
}

// createTranscription starts a transcribe job for an already-downloaded
// media file, returning both the job_id and the new transcription_id.
func (h *handlers) createTranscription(c *gin.Context) {
	var req struct {
		MediaFileID string `json:"media_file_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner := ownerID(c)
	if owner == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing owner"})
		return
	}

	mf, err := h.container.MediaFileRepo.FindByID(c.Request.Context(), req.MediaFileID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "media file not found"})
		return
	}
	if mf.OwnerID != owner {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your media file"})
		return
	}

	tr := transentities.NewTranscription(mf.GetID(), owner)
	if err := h.container.TranscriptionRepo.Save(c.Request.Context(), tr); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	job := jobentities.NewJob(owner, jobentities.KindTranscribe)
	if err := h.container.JobRepo.Create(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	_, err = h.temporal.ExecuteWorkflow(c.Request.Context(), client.StartWorkflowOptions{
		ID:        "transcribe-" + job.GetID(),
		TaskQueue: h.container.Config.Temporal.TaskQueue,
	}, workflow.TranscribeWorkflow, workflow.TranscribeWorkflowInput{
		JobID:           job.GetID(),
		OwnerID:         owner,
		TranscriptionID: tr.GetID(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.GetID(), "transcription_id": tr.GetID()})
}

// getJob returns the current state of one job, owner-scoped.
func (h *handlers) getJob(c *gin.Context) {
	job, err := h.container.JobRepo.FindByID(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if job.OwnerID != ownerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// subscribeProgress upgrades to a websocket and streams C9's per-job
// progress channel until it closes.
func (h *handlers) subscribeProgress(c *gin.Context) {
	jobID := c.Param("job_id")
	job, err := h.container.JobRepo.FindByID(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if job.OwnerID != ownerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your job"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events := h.container.ProgressBus.Subscribe(jobID)
	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// search runs a vector similarity search over chunk embeddings, scoped
// to owner.
func (h *handlers) search(c *gin.Context) {
	owner := ownerID(c)
	if owner == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing owner"})
		return
	}
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q"})
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	hits, err := h.container.SearchService.Search(ctx, owner, query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}
