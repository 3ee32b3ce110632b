package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/physiohub/clinic-assistant/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                 *config.Config
	recordsHandler      *Records
	consultationHandler *Consultation
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, recordsHandler *Records, consultationHandler *Consultation) *Router {
	return &Router{
		cfg:                 cfg,
		recordsHandler:      recordsHandler,
		consultationHandler: consultationHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupRecordsRoutes(v1)
	rt.setupConsultationRoutes(v1)
}

// setupRecordsRoutes configures the clinical records routes
func (rt *Router) setupRecordsRoutes(g *echo.Group) {
	if rt.recordsHandler == nil {
		g.GET("/patients/:id", rt.notImplemented)
		g.PUT("/patients/:id", rt.notImplemented)
		g.POST("/soap/:type", rt.notImplemented)
		g.GET("/soap/:type/:patientId", rt.notImplemented)
		g.PUT("/soap/:type/:id", rt.notImplemented)
		g.DELETE("/soap/:type/:id", rt.notImplemented)
		g.POST("/assessments/:category", rt.notImplemented)
		return
	}

	g.GET("/patients/:id", rt.recordsHandler.GetPatient)
	g.PUT("/patients/:id", rt.recordsHandler.UpdatePatient)

	g.POST("/soap/:type", rt.recordsHandler.CreateNote)
	g.GET("/soap/:type/:patientId", rt.recordsHandler.ListNotes)
	g.PUT("/soap/:type/:id", rt.recordsHandler.UpdateNote)
	g.DELETE("/soap/:type/:id", rt.recordsHandler.DeleteNote)

	g.POST("/assessments/:category", rt.recordsHandler.CreateAssessment)
}

// setupConsultationRoutes configures the consultation capture routes
func (rt *Router) setupConsultationRoutes(g *echo.Group) {
	group := g.Group("/consultations/:patientId")

	if rt.consultationHandler == nil {
		group.POST("/recording/start", rt.notImplemented)
		group.POST("/recording/chunks", rt.notImplemented)
		group.POST("/recording/stop", rt.notImplemented)
		group.POST("/recording/abort", rt.notImplemented)
		group.GET("/artifacts", rt.notImplemented)
		group.GET("/history", rt.notImplemented)
		group.PUT("/notes/:type/:id", rt.notImplemented)
		group.DELETE("/notes/:type/:id", rt.notImplemented)
		group.GET("/forms", rt.notImplemented)
		group.POST("/forms/save", rt.notImplemented)
		return
	}

	group.POST("/recording/start", rt.consultationHandler.StartRecording)
	group.POST("/recording/chunks", rt.consultationHandler.AppendChunk)
	group.POST("/recording/stop", rt.consultationHandler.StopRecording)
	group.POST("/recording/abort", rt.consultationHandler.AbortRecording)
	group.GET("/artifacts", rt.consultationHandler.GetArtifacts)

	group.GET("/history", rt.consultationHandler.GetHistory)
	group.PUT("/notes/:type/:id", rt.consultationHandler.EditNote)
	group.DELETE("/notes/:type/:id", rt.consultationHandler.DeleteNote)

	group.GET("/forms", rt.consultationHandler.GetForms)
	group.POST("/forms/save", rt.consultationHandler.SaveForms)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
