package handlers

import (
	"errors"
	"net/http"

	profileRepo "wandr/database/repository/profile"
	"wandr/models"
	"wandr/services/feed"
	"wandr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeedHandler exposes the recommendation feed over HTTP.
type FeedHandler struct {
	Feed     feed.FeedService
	Profiles profileRepo.ProfileRepository
}

// NewFeedHandler wires the feed endpoints.
func NewFeedHandler(svc feed.FeedService, profiles profileRepo.ProfileRepository) *FeedHandler {
	return &FeedHandler{Feed: svc, Profiles: profiles}
}

// feedRequest is the shared request shape for feed operations. Callers are
// trusted to assert their own identity; authentication is a deployment
// concern outside this service.
type feedRequest struct {
	UserID   string             `json:"userId"`
	Location models.Coordinate  `json:"location"`
	Filters  models.FeedFilters `json:"filters"`
}

// resolveProfile overlays the request's live location on the stored profile
// so home/work corridors and the persisted radius keep applying.
func (h *FeedHandler) resolveProfile(c *gin.Context, req feedRequest) models.UserProfile {
	profile := models.UserProfile{ID: req.UserID, CurrentLocation: req.Location}
	stored, err := h.Profiles.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		utils.GetLogger().Warn("profile lookup failed, using request fields only",
			zap.String("userID", req.UserID), zap.Error(err))
		return profile
	}
	if stored == nil {
		return profile
	}
	profile.Interests = stored.Interests
	profile.HomeLocation = stored.HomeLocation
	profile.WorkLocation = stored.WorkLocation
	profile.PreferredRadiusMiles = stored.PreferredRadiusMiles
	if profile.CurrentLocation.IsZero() {
		profile.CurrentLocation = stored.CurrentLocation
	}
	return profile
}

func (h *FeedHandler) serve(c *gin.Context, op func(models.UserProfile, models.FeedFilters) (*feed.FeedResponse, error)) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if req.UserID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "userId is required")
		return
	}

	profile := h.resolveProfile(c, req)
	resp, err := op(profile, req.Filters)
	if err != nil {
		var ferr *feed.FeedError
		if errors.As(err, &ferr) {
			utils.JSONError(c, http.StatusBadRequest, ferr.Code, ferr.Message)
			return
		}
		utils.JSONError(c, http.StatusBadGateway, "feed unavailable", err.Error())
		return
	}
	if resp.Skipped {
		c.JSON(http.StatusAccepted, resp)
		return
	}
	if req.Filters.OpenNow {
		resp.Recommendations = dropClosed(resp.Recommendations)
	}
	if req.Filters.MaxPriceLevel > 0 {
		resp.Recommendations = dropPricier(resp.Recommendations, req.Filters.MaxPriceLevel)
	}
	c.JSON(http.StatusOK, resp)
}

// GetFeedHandler returns the user's current batch.
func (h *FeedHandler) GetFeedHandler(c *gin.Context) {
	h.serve(c, func(p models.UserProfile, f models.FeedFilters) (*feed.FeedResponse, error) {
		return h.Feed.GetFeed(c.Request.Context(), p, f)
	})
}

// LoadMoreHandler returns the next page of unique recommendations.
func (h *FeedHandler) LoadMoreHandler(c *gin.Context) {
	h.serve(c, func(p models.UserProfile, f models.FeedFilters) (*feed.FeedResponse, error) {
		return h.Feed.LoadMore(c.Request.Context(), p, f)
	})
}

// RefreshHandler discards the session and re-sources from scratch.
func (h *FeedHandler) RefreshHandler(c *gin.Context) {
	h.serve(c, func(p models.UserProfile, f models.FeedFilters) (*feed.FeedResponse, error) {
		return h.Feed.Refresh(c.Request.Context(), p, f)
	})
}

// BlockVenueHandler permanently hides a venue from the user's feed.
func (h *FeedHandler) BlockVenueHandler(c *gin.Context) {
	var req struct {
		UserID     string `json:"userId"`
		ProviderID string `json:"providerId"`
		Name       string `json:"name"`
		Reason     string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if req.UserID == "" || req.ProviderID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "userId and providerId are required")
		return
	}
	if err := h.Feed.BlockVenue(c.Request.Context(), req.UserID, req.ProviderID, req.Name, req.Reason); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to block venue", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": req.ProviderID})
}

// UnblockVenueHandler lifts a block; the venue becomes eligible again on
// the next sourcing pass.
func (h *FeedHandler) UnblockVenueHandler(c *gin.Context) {
	userID := c.Query("userId")
	providerID := c.Param("providerID")
	if userID == "" || providerID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "userId and providerID are required")
		return
	}
	if err := h.Feed.UnblockVenue(c.Request.Context(), userID, providerID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to unblock venue", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"unblocked": providerID})
}

// dropClosed enforces an open-now filter at the edge: scoring keeps closed
// venues in the ranking (deprioritized), the surface hides them on request.
func dropClosed(recs []models.ScoredRecommendation) []models.ScoredRecommendation {
	kept := make([]models.ScoredRecommendation, 0, len(recs))
	for _, r := range recs {
		if r.Breakdown.TimeScore > 0 {
			kept = append(kept, r)
		}
	}
	return kept
}

func dropPricier(recs []models.ScoredRecommendation, maxPrice int) []models.ScoredRecommendation {
	kept := make([]models.ScoredRecommendation, 0, len(recs))
	for _, r := range recs {
		if r.Candidate.PriceLevel == 0 || r.Candidate.PriceLevel <= maxPrice {
			kept = append(kept, r)
		}
	}
	return kept
}
