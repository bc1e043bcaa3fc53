// Package api is the thin gin-based surface exposing five operations:
// download, transcribe, job status, progress streaming, and search.
// Identity/token verification and request-level authorization are an
// out-of-scope external-collaborator concern; handlers here trust an
// X-Owner-ID header as a stand-in for whatever auth middleware a real
// deployment fronts this with.
package api

import (
	"github.com/gin-gonic/gin"
	"go.temporal.io/sdk/client"

	appmiddleware "ingestpipe/seedwork/application/middleware"
	"ingestpipe/seedwork/infrastructure/container"
)

// NewRouter builds the gin engine serving the five operations above,
// wired with the standard Logger/CORS/ErrorHandler middleware stack.
func NewRouter(c *container.Container, temporal client.Client) *gin.Engine {
	r := gin.New()
	r.Use(appmiddleware.Logger(), appmiddleware.CORS(), appmiddleware.ErrorHandler())

	h := &handlers{container: c, temporal: temporal}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/jobs/download", h.createDownloadJob)
		v1.POST("/transcriptions", h.createTranscription)
		v1.GET("/jobs/:job_id", h.getJob)
		v1.GET("/jobs/:job_id/progress", h.subscribeProgress)
		v1.GET("/search", h.search)
	}

	return r
}
