package mocks

import (
	"context"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/models"
)

var (
	_ core.AccountService = (*MockAccountService)(nil)
	_ core.ListingService = (*MockListingService)(nil)
	_ core.PaymentService = (*MockPaymentService)(nil)
)

// MockAccountService implements core.AccountService for handler tests.
type MockAccountService struct {
	InitializeProfileFunc func(ctx context.Context, identity models.Identity, req models.InitializeProfileRequest) (*models.User, bool, error)
	GetAccountFunc        func(ctx context.Context, userID string) (*models.User, error)
	InvalidateAccountFunc func(ctx context.Context, userID string)
	ListAccountsFunc      func(ctx context.Context) ([]*models.User, error)
	SetPaidFunc           func(ctx context.Context, userID string, isPaid bool) (*models.User, error)
}

func (m *MockAccountService) InitializeProfile(ctx context.Context, identity models.Identity, req models.InitializeProfileRequest) (*models.User, bool, error) {
	if m.InitializeProfileFunc != nil {
		return m.InitializeProfileFunc(ctx, identity, req)
	}
	return &models.User{ID: identity.UID, Email: identity.Email, Name: identity.Name}, true, nil
}

// GetAccount defaults to ErrUserNotFound.
func (m *MockAccountService) GetAccount(ctx context.Context, userID string) (*models.User, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, userID)
	}
	return nil, core.ErrUserNotFound
}

func (m *MockAccountService) InvalidateAccount(ctx context.Context, userID string) {
	if m.InvalidateAccountFunc != nil {
		m.InvalidateAccountFunc(ctx, userID)
	}
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]*models.User, error) {
	if m.ListAccountsFunc != nil {
		return m.ListAccountsFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockAccountService) SetPaid(ctx context.Context, userID string, isPaid bool) (*models.User, error) {
	if m.SetPaidFunc != nil {
		return m.SetPaidFunc(ctx, userID, isPaid)
	}
	return &models.User{ID: userID, IsPaid: isPaid}, nil
}

// MockListingService implements core.ListingService.
type MockListingService struct {
	FetchPageFunc         func(ctx context.Context, filter models.ListingFilter, cursor string, pageSize int) (*models.ListingPage, error)
	CreateListingFunc     func(ctx context.Context, ownerID string, req models.CreateListingRequest, images []core.ImageUpload) (*models.Listing, error)
	GetListingFunc        func(ctx context.Context, listingID string, viewer core.Viewer) (*models.ListingDetail, error)
	ListOwnerListingsFunc func(ctx context.Context, ownerID string) ([]*models.Listing, error)
	UpdateStatusFunc      func(ctx context.Context, viewer core.Viewer, listingID string, status models.ListingStatus) (*models.Listing, error)
	NearbyFunc            func(ctx context.Context, listingID string, viewer core.Viewer, radiusMeters int) ([]models.Place, error)
}

func (m *MockListingService) FetchPage(ctx context.Context, filter models.ListingFilter, cursor string, pageSize int) (*models.ListingPage, error) {
	if m.FetchPageFunc != nil {
		return m.FetchPageFunc(ctx, filter, cursor, pageSize)
	}
	return &models.ListingPage{Listings: []*models.Listing{}}, nil
}

func (m *MockListingService) CreateListing(ctx context.Context, ownerID string, req models.CreateListingRequest, images []core.ImageUpload) (*models.Listing, error) {
	if m.CreateListingFunc != nil {
		return m.CreateListingFunc(ctx, ownerID, req, images)
	}
	return &models.Listing{ID: "listing-1", Title: req.Title, OwnerID: ownerID}, nil
}

func (m *MockListingService) GetListing(ctx context.Context, listingID string, viewer core.Viewer) (*models.ListingDetail, error) {
	if m.GetListingFunc != nil {
		return m.GetListingFunc(ctx, listingID, viewer)
	}
	return nil, core.ErrListingNotFound
}

func (m *MockListingService) ListOwnerListings(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	if m.ListOwnerListingsFunc != nil {
		return m.ListOwnerListingsFunc(ctx, ownerID)
	}
	return []*models.Listing{}, nil
}

func (m *MockListingService) UpdateStatus(ctx context.Context, viewer core.Viewer, listingID string, status models.ListingStatus) (*models.Listing, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, viewer, listingID, status)
	}
	return &models.Listing{ID: listingID, Status: status, OwnerID: viewer.UserID}, nil
}

func (m *MockListingService) Nearby(ctx context.Context, listingID string, viewer core.Viewer, radiusMeters int) ([]models.Place, error) {
	if m.NearbyFunc != nil {
		return m.NearbyFunc(ctx, listingID, viewer, radiusMeters)
	}
	return []models.Place{}, nil
}

// MockPaymentService implements core.PaymentService.
type MockPaymentService struct {
	VerifyPaymentFunc func(ctx context.Context, userID string, req models.VerifyPaymentRequest) (*models.PaymentTransaction, error)
}

func (m *MockPaymentService) VerifyPayment(ctx context.Context, userID string, req models.VerifyPaymentRequest) (*models.PaymentTransaction, error) {
	if m.VerifyPaymentFunc != nil {
		return m.VerifyPaymentFunc(ctx, userID, req)
	}
	return &models.PaymentTransaction{ID: req.TransactionID, UserID: userID, Status: models.PaymentVerified}, nil
}
