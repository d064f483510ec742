package main

import (
	"database/sql"
	"net/http"
	"time"

	"call-recorder/internal/httpapi"
	"call-recorder/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, db *sql.DB) {
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks (public).
	// NOTE: These should be protected by Twilio signature validation in production.
	r.GET("/answer", h.Answer)
	r.POST("/answer", h.Answer)
	r.POST("/record-complete", h.RecordComplete)
	r.POST("/transcribe-complete", h.TranscribeComplete)

	// Recordings API, consumed by the mobile app.
	r.POST("/get_calls_for_user", h.GetCallsForUser)
	r.POST("/delete_recording", h.DeleteRecording)
	r.POST("/delete_all_recordings", h.DeleteAllRecordings)

	// Users API.
	api := r.Group("/api")
	{
		api.POST("/users/register", h.RegisterUser)
		api.GET("/users/:id", h.GetUser)
		api.PUT("/users/update-phone", h.UpdateUserPhone)
		api.PUT("/users/notifications", h.UpdateNotificationSettings)
		api.GET("/service/phone", h.GetServicePhone)
	}
}
