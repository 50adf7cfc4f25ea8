package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/feed"
	"github.com/example/rentalhub/internal/middleware"
	"github.com/example/rentalhub/internal/models"
	"github.com/example/rentalhub/internal/places"
)

// imagesField is the multipart field carrying listing photos.
const imagesField = "images"

// ListingHandler handles API endpoints related to listings.
type ListingHandler struct {
	listings core.ListingService
	logger   *zap.Logger
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(ls core.ListingService, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{listings: ls, logger: logger}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", core.ErrValidation, key)
	}
	return n, nil
}

// ListListings handles GET /listings. The optional q parameter narrows the fetched page by
// title and description; it never changes the cursor. Items are gated like GetListing.
func (h *ListingHandler) ListListings(c *gin.Context) {
	pageSize, err := queryInt(c, "pageSize", core.DefaultPageSize)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	filter := models.ListingFilter{Status: models.ListingStatus(strings.TrimSpace(c.Query("status")))}

	page, err := h.listings.FetchPage(c.Request.Context(), filter, c.Query("cursor"), pageSize)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}

	search := strings.TrimSpace(c.Query("q"))
	c.JSON(http.StatusOK, ListingFeedResponse{
		Listings:   core.GateFeed(feed.Filter(page.Listings, search), middleware.GetSession(c).Viewer()),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
		Search:     search,
	})
}

// splitAmenities accepts both repeated fields and a single comma-separated value.
func splitAmenities(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				out = append(out, a)
			}
		}
	}
	return out
}

// CreateListing handles POST /listings (multipart/form-data).
func (h *ListingHandler) CreateListing(c *gin.Context) {
	uid := middleware.GetSession(c).UserID()
	if uid == "" {
		mapServiceErrorToStatus(c, h.logger, core.ErrAuthRequired)
		return
	}

	var req models.CreateListingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	req.Amenities = splitAmenities(req.Amenities)
	if req.Status == "" {
		req.Status = models.StatusAvailable
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File[imagesField]
	}

	images := make([]core.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unreadable image upload", Details: fh.Filename})
			return
		}
		defer f.Close()
		images = append(images, core.ImageUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}

	listing, err := h.listings.CreateListing(c.Request.Context(), uid, req, images)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// GetListing handles GET /listings/:id. Premium fields depend on the caller's access tier.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Listing ID is required"})
		return
	}

	detail, err := h.listings.GetListing(c.Request.Context(), listingID, middleware.GetSession(c).Viewer())
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateStatus handles PATCH /listings/:id/status.
func (h *ListingHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateListingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	listing, err := h.listings.UpdateStatus(c.Request.Context(), middleware.GetSession(c).Viewer(), c.Param("id"), req.Status)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Nearby handles GET /listings/:id/nearby?radius=.
func (h *ListingHandler) Nearby(c *gin.Context) {
	radius, err := queryInt(c, "radius", 0)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}

	found, err := h.listings.Nearby(c.Request.Context(), c.Param("id"), middleware.GetSession(c).Viewer(), radius)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	if radius == 0 {
		radius = places.DefaultRadius
	}
	c.JSON(http.StatusOK, NearbyResponse{RadiusMeters: radius, Places: found})
}
