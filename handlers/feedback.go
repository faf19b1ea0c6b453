package handlers

import (
	"net/http"

	"wandr/models"
	"wandr/services/feedback"
	"wandr/utils"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler accepts accept/reject/rating signals. Submission is
// fire-and-forget: the record is enqueued for the background worker to
// commit, so the endpoint answers 202.
type FeedbackHandler struct {
	Service *feedback.Service
}

// NewFeedbackHandler wires the feedback endpoint.
func NewFeedbackHandler(svc *feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{Service: svc}
}

// SubmitFeedbackHandler enqueues a feedback record.
func (h *FeedbackHandler) SubmitFeedbackHandler(c *gin.Context) {
	var record models.FeedbackRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	id, err := h.Service.Submit(c.Request.Context(), record)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid feedback", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id})
}
