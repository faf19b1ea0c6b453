package handlers

import (
	"net/http"

	profileRepo "wandr/database/repository/profile"
	"wandr/models"
	"wandr/utils"

	"github.com/gin-gonic/gin"
)

// ProfileHandler manages the stored user profile the feed builds on:
// interests, home/work anchors, and the persisted radius preference.
type ProfileHandler struct {
	Profiles profileRepo.ProfileRepository
}

// NewProfileHandler wires the profile endpoints.
func NewProfileHandler(profiles profileRepo.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

// UpsertProfileHandler creates or replaces the stored profile.
func (h *ProfileHandler) UpsertProfileHandler(c *gin.Context) {
	var profile models.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if profile.ID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "id is required")
		return
	}
	if err := h.Profiles.Upsert(c.Request.Context(), profile); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to save profile", err.Error())
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfileHandler returns the stored profile.
func (h *ProfileHandler) GetProfileHandler(c *gin.Context) {
	id := c.Param("id")
	profile, err := h.Profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load profile", err.Error())
		return
	}
	if profile == nil {
		utils.JSONError(c, http.StatusNotFound, "profile not found", id)
		return
	}
	c.JSON(http.StatusOK, profile)
}
