package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	outputDir string
	version   string
}

func NewHandler(outputDir, version string) *Handler {
	return &Handler{outputDir: outputDir, version: version}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "podfeed",
		"version": h.version,
	})
}
