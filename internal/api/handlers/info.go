package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/userhub/internal/db"
	"github.com/nebari-dev/userhub/internal/models"
	"gorm.io/gorm"
)

// InfoHandler handles server info requests
type InfoHandler struct {
	db *gorm.DB
}

// NewInfoHandler creates a new InfoHandler
func NewInfoHandler(database *gorm.DB) *InfoHandler {
	return &InfoHandler{db: database}
}

// InfoResponse represents the server info response
type InfoResponse struct {
	InstanceID string `json:"instance_id"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
}

// GetInfo returns the persistent instance ID and build information
func (h *InfoHandler) GetInfo(c *gin.Context) {
	id, err := db.GetSetting(h.db, models.SettingInstanceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to retrieve instance ID",
		})
		return
	}

	c.JSON(http.StatusOK, InfoResponse{
		InstanceID: id,
		Version:    Version,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	})
}
