package handlers

import (
	"net/http"
	"time"

	"wandr/models"
	"wandr/services/schedule"
	"wandr/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScheduleHandler exposes calendar conflict checking and slot commits.
type ScheduleHandler struct {
	Detector *schedule.ConflictDetector
}

// NewScheduleHandler wires the schedule endpoints.
func NewScheduleHandler(detector *schedule.ConflictDetector) *ScheduleHandler {
	return &ScheduleHandler{Detector: detector}
}

type conflictCheckRequest struct {
	UserID    string            `json:"userId"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	Venue     models.Coordinate `json:"venue"`
}

// CheckConflictHandler evaluates a proposed slot and returns the structured
// decision. Conflicts are 200 responses; the caller owns resolution.
func (h *ScheduleHandler) CheckConflictHandler(c *gin.Context) {
	var req conflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if req.UserID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "userId is required")
		return
	}

	result, err := h.Detector.Check(c.Request.Context(), req.UserID, req.StartTime, req.EndTime, req.Venue)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "conflict check failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

type createEventRequest struct {
	UserID    string            `json:"userId"`
	Title     string            `json:"title"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	Venue     models.Coordinate `json:"venue"`

	// Override commits the slot even when the conflict check objects.
	Override bool `json:"override,omitempty"`
}

// CreateEventHandler checks the slot and commits it. A conflicting slot
// without an override returns 409 with the decision attached.
func (h *ScheduleHandler) CreateEventHandler(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if req.UserID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "userId is required")
		return
	}

	result, err := h.Detector.Check(c.Request.Context(), req.UserID, req.StartTime, req.EndTime, req.Venue)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "conflict check failed", err.Error())
		return
	}
	if result.Kind != schedule.Feasible && !req.Override {
		c.JSON(http.StatusConflict, gin.H{"conflict": result})
		return
	}

	event := models.ScheduledEvent{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Title:      req.Title,
		Coordinate: req.Venue,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if err := h.Detector.AddEvent(c.Request.Context(), event); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create event", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": event, "conflict": result})
}

// DeleteEventHandler removes a calendar entry.
func (h *ScheduleHandler) DeleteEventHandler(c *gin.Context) {
	userID := c.Query("userId")
	eventID := c.Param("eventID")
	if userID == "" || eventID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "userId and eventID are required")
		return
	}
	if err := h.Detector.RemoveEvent(c.Request.Context(), userID, eventID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete event", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": eventID})
}
