package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scribeconnect/scribe-portal-api/internal/locations"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
	"github.com/scribeconnect/scribe-portal-api/pkg/response"
)

// LocationHandler serves the static geography lists backing the request form.
type LocationHandler struct{}

func NewLocationHandler() *LocationHandler {
	return &LocationHandler{}
}

// States godoc
// @Summary Supported states
// @Tags Locations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /locations/states [get]
func (h *LocationHandler) States(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"states": locations.States()})
}

// Districts godoc
// @Summary Districts of a state
// @Tags Locations
// @Produce json
// @Param state path string true "State name"
// @Success 200 {object} map[string]interface{}
// @Router /locations/districts/{state} [get]
func (h *LocationHandler) Districts(c *gin.Context) {
	state := strings.ToLower(strings.TrimSpace(c.Param("state")))
	districts, ok := locations.Districts(state)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown state"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"state": state, "districts": districts})
}

// Metadata godoc
// @Summary Form metadata: states and languages
// @Tags Locations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /locations/metadata [get]
func (h *LocationHandler) Metadata(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"states":    locations.States(),
		"languages": locations.Languages(),
	})
}
