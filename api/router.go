package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// api routes
	DocumentsURL       = "/documents"
	SamplesURL         = "/samples"
	SampleDocumentsURL = "/samples/:name/documents"
)

// Establishes HTTP router.
func (service *Service) setupRouter(server *http.Server) {
	router := gin.New()

	router.Use(requestLogger(), gin.Recovery())
	router.Use(service.corsMiddleware())

	router.GET("/ping", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "pong")
	})

	router.POST(DocumentsURL, service.createDocument)

	router.GET(SamplesURL, service.listSamples)
	router.POST(SampleDocumentsURL, service.createSampleDocument)

	// routes where document id is checked
	docGroup := router.Group(DocumentsURL).Use(service.documentIDMiddleware())
	docGroup.GET("/:id", service.getDocument)
	docGroup.DELETE("/:id", service.deleteDocument)
	docGroup.GET("/:id/snapshot", service.getSnapshot)
	docGroup.POST("/:id/slide", service.slideWindow)
	docGroup.POST("/:id/randomise", service.randomise)
	docGroup.POST("/:id/expand", service.expand)
	docGroup.POST("/:id/collapse", service.collapse)

	server.Handler = router
	service.router = router
}
