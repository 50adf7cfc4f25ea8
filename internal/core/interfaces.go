package core

import (
	"context"
	"io"

	"github.com/example/rentalhub/internal/models"
)

// Viewer is whoever is looking at content. The zero value is an anonymous visitor.
type Viewer struct {
	UserID  string
	IsAdmin bool
	Tier    models.AccessTier
}

// Anonymous reports whether no identity is attached.
func (v Viewer) Anonymous() bool { return v.UserID == "" }

// ImageUpload is one image file attached to a new listing.
type ImageUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AccountService manages user accounts.
type AccountService interface {
	// InitializeProfile returns the existing account or creates one. The bool reports creation.
	InitializeProfile(ctx context.Context, identity models.Identity, req models.InitializeProfileRequest) (*models.User, bool, error)
	GetAccount(ctx context.Context, userID string) (*models.User, error)
	InvalidateAccount(ctx context.Context, userID string)
	ListAccounts(ctx context.Context) ([]*models.User, error)
	SetPaid(ctx context.Context, userID string, isPaid bool) (*models.User, error)
}

// ListingService manages listings and the premium content gate.
type ListingService interface {
	FetchPage(ctx context.Context, filter models.ListingFilter, cursor string, pageSize int) (*models.ListingPage, error)
	CreateListing(ctx context.Context, ownerID string, req models.CreateListingRequest, images []ImageUpload) (*models.Listing, error)
	GetListing(ctx context.Context, listingID string, viewer Viewer) (*models.ListingDetail, error)
	ListOwnerListings(ctx context.Context, ownerID string) ([]*models.Listing, error)
	UpdateStatus(ctx context.Context, viewer Viewer, listingID string, status models.ListingStatus) (*models.Listing, error)
	Nearby(ctx context.Context, listingID string, viewer Viewer, radiusMeters int) ([]models.Place, error)
}

// PaymentService verifies mobile-money payments.
type PaymentService interface {
	VerifyPayment(ctx context.Context, userID string, req models.VerifyPaymentRequest) (*models.PaymentTransaction, error)
}
