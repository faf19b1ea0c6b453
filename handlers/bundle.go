// File: wandr/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Feed endpoints.
	GetFeedHandler      gin.HandlerFunc
	LoadMoreHandler     gin.HandlerFunc
	RefreshHandler      gin.HandlerFunc
	BlockVenueHandler   gin.HandlerFunc
	UnblockVenueHandler gin.HandlerFunc

	// Schedule endpoints.
	CheckConflictHandler gin.HandlerFunc
	CreateEventHandler   gin.HandlerFunc
	DeleteEventHandler   gin.HandlerFunc

	// Feedback endpoint.
	SubmitFeedbackHandler gin.HandlerFunc

	// Profile endpoints.
	UpsertProfileHandler gin.HandlerFunc
	GetProfileHandler    gin.HandlerFunc
}
