package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/metrics"
	"github.com/example/rentalhub/internal/models"
	"github.com/example/rentalhub/internal/places"
	"github.com/example/rentalhub/internal/storage"
	"github.com/example/rentalhub/pkg/cache"
)

// Page size bounds for the listings feed.
const (
	DefaultPageSize = 9
	MaxPageSize     = 50
)

// MaxNearbyRadius bounds the radius a caller may ask for, in metres.
const MaxNearbyRadius = 5000

type listingService struct {
	listingRepo db.ListingRepository
	userRepo    db.UserRepository
	store       storage.ObjectStore
	places      places.Client
	cache       cache.Cache
	cacheTTL    time.Duration
	metrics     *metrics.Recorder
	logger      *zap.Logger
}

// NewListingService creates a new ListingService instance.
func NewListingService(
	lr db.ListingRepository,
	ur db.UserRepository,
	store storage.ObjectStore,
	pc places.Client,
	c cache.Cache,
	cacheTTL time.Duration,
	m *metrics.Recorder,
	logger *zap.Logger,
) ListingService {
	if c == nil {
		c = cache.Noop{}
	}
	return &listingService{
		listingRepo: lr,
		userRepo:    ur,
		store:       store,
		places:      pc,
		cache:       c,
		cacheTTL:    cacheTTL,
		metrics:     m,
		logger:      logger,
	}
}

// FetchPage returns one page of the feed, newest first. A page shorter than pageSize ends
// the feed. Listings inserted between two calls can shift page boundaries.
func (s *listingService) FetchPage(ctx context.Context, filter models.ListingFilter, cursor string, pageSize int) (*models.ListingPage, error) {
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: pageSize must be between 1 and %d", ErrValidation, MaxPageSize)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}

	listings, err := s.listingRepo.Query(ctx, db.ListingQuery{Filter: filter, Cursor: cursor, Limit: pageSize})
	if err != nil {
		if errors.Is(err, db.ErrInvalidCursor) {
			return nil, fmt.Errorf("%w: unknown cursor", ErrValidation)
		}
		s.logger.Error("Failed to fetch listings page", zap.String("cursor", cursor), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	page := &models.ListingPage{
		Listings: listings,
		HasMore:  len(listings) == pageSize,
	}
	if len(listings) > 0 {
		page.NextCursor = listings[len(listings)-1].ID
	}
	return page, nil
}

func validateListing(req models.CreateListingRequest, images []ImageUpload) error {
	var problems []string
	if strings.TrimSpace(req.Title) == "" {
		problems = append(problems, "title is required")
	}
	if req.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if req.Status != "" && !req.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", req.Status))
	}
	if len(images) == 0 {
		problems = append(problems, "at least one image is required")
	}
	if req.Lat == nil || req.Lng == nil {
		problems = append(problems, "location is required")
	} else if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
		problems = append(problems, "location is out of range")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// CreateListing validates the request before touching the network, uploads the images in
// order and then writes the listing document.
func (s *listingService) CreateListing(ctx context.Context, ownerID string, req models.CreateListingRequest, images []ImageUpload) (*models.Listing, error) {
	if ownerID == "" {
		return nil, ErrAuthRequired
	}
	if err := validateListing(req, images); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		objectPath := storage.ListingImagePath(ownerID, img.Name, timeNow())
		url, err := s.store.Upload(ctx, objectPath, img.ContentType, img.Body)
		if err != nil {
			s.logger.Error("Image upload failed", zap.String("path", objectPath), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		urls = append(urls, url)
	}

	status := req.Status
	if status == "" {
		status = models.StatusAvailable
	}
	amenities := make([]string, 0, len(req.Amenities))
	for _, a := range req.Amenities {
		if a = strings.TrimSpace(a); a != "" {
			amenities = append(amenities, a)
		}
	}

	listing := &models.Listing{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Images:      urls,
		Location:    &models.GeoPoint{Lat: *req.Lat, Lng: *req.Lng},
		Amenities:   amenities,
		Status:      status,
		OwnerID:     ownerID,
	}
	if _, err := s.listingRepo.Create(ctx, listing); err != nil {
		s.logger.Error("Failed to create listing", zap.String("ownerID", ownerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.metrics.ListingCreated()
	s.logger.Info("Listing created", zap.String("listingID", listing.ID), zap.Int("images", len(urls)))
	return listing, nil
}

func (s *listingService) getListing(ctx context.Context, listingID string) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("Failed to load listing", zap.String("listingID", listingID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return listing, nil
}

// canSeePremium unlocks premium content for paying or trialing viewers and for the owner.
func canSeePremium(listing *models.Listing, viewer Viewer) bool {
	if viewer.Tier.ContentUnlocked {
		return true
	}
	return !viewer.Anonymous() && viewer.UserID == listing.OwnerID
}

// redact strips the premium fields from a copy of listing.
func redact(listing *models.Listing) models.Listing {
	out := *listing
	out.Location = nil
	if len(listing.Images) > 1 {
		out.Images = listing.Images[:1]
	}
	return out
}

// GateFeed applies the premium gate to feed items. Owners see their own listings in full.
func GateFeed(listings []*models.Listing, viewer Viewer) []*models.ListingCard {
	cards := make([]*models.ListingCard, 0, len(listings))
	for _, l := range listings {
		if canSeePremium(l, viewer) {
			cards = append(cards, &models.ListingCard{Listing: *l})
			continue
		}
		cards = append(cards, &models.ListingCard{Listing: redact(l), Blurred: true})
	}
	return cards
}

// GetListing returns the listing as seen by viewer. Locked viewers get the first image only
// and none of location, map or owner contact.
func (s *listingService) GetListing(ctx context.Context, listingID string, viewer Viewer) (*models.ListingDetail, error) {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	unlocked := canSeePremium(listing, viewer)
	s.metrics.DetailView(unlocked)

	if !unlocked {
		return &models.ListingDetail{Listing: redact(listing), Blurred: true}, nil
	}

	detail := &models.ListingDetail{Listing: *listing}
	if listing.Location != nil && s.places != nil {
		detail.StaticMapURL = s.places.StaticMapURL(*listing.Location)
	}

	owner, err := s.userRepo.GetByID(ctx, listing.OwnerID)
	switch {
	case err == nil:
		detail.Contact = &models.Contact{Name: owner.Name, Email: owner.Email, Phone: owner.Phone}
	case errors.Is(err, db.ErrNotFound):
		s.logger.Warn("Listing owner has no account", zap.String("listingID", listingID), zap.String("ownerID", listing.OwnerID))
	default:
		s.logger.Error("Failed to load listing owner", zap.String("ownerID", listing.OwnerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return detail, nil
}

func (s *listingService) ListOwnerListings(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	listings, err := s.listingRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list owner listings", zap.String("ownerID", ownerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return listings, nil
}

// UpdateStatus lets the owner or an admin move a listing to any status.
func (s *listingService) UpdateStatus(ctx context.Context, viewer Viewer, listingID string, status models.ListingStatus) (*models.Listing, error) {
	if viewer.Anonymous() {
		return nil, ErrAuthRequired
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != viewer.UserID && !viewer.IsAdmin {
		return nil, ErrForbiddenAccess
	}
	if listing.Status == status {
		return listing, nil
	}

	if err := s.listingRepo.UpdateStatus(ctx, listingID, status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("Failed to update listing status", zap.String("listingID", listingID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	listing.Status = status
	return listing, nil
}

// Nearby lists points of interest around the listing. It is premium content.
func (s *listingService) Nearby(ctx context.Context, listingID string, viewer Viewer, radiusMeters int) ([]models.Place, error) {
	if radiusMeters == 0 {
		radiusMeters = places.DefaultRadius
	}
	if radiusMeters < 0 || radiusMeters > MaxNearbyRadius {
		return nil, fmt.Errorf("%w: radius must be between 1 and %d metres", ErrValidation, MaxNearbyRadius)
	}

	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !canSeePremium(listing, viewer) {
		return nil, ErrContentLocked
	}
	if listing.Location == nil {
		return nil, fmt.Errorf("%w: listing has no location", ErrValidation)
	}

	key := fmt.Sprintf("nearby:%s:%d", listingID, radiusMeters)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached []models.Place
		if json.Unmarshal([]byte(raw), &cached) == nil {
			s.metrics.CacheLookup("nearby", true)
			return cached, nil
		}
	}
	s.metrics.CacheLookup("nearby", false)

	found, err := s.places.Nearby(ctx, *listing.Location, radiusMeters, places.DefaultTypes)
	if err != nil {
		s.logger.Error("Nearby places lookup failed", zap.String("listingID", listingID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if raw, err := json.Marshal(found); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
			s.logger.Warn("Nearby cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return found, nil
}
