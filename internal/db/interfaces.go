package db

import (
	"context"
	"time"

	"github.com/example/rentalhub/internal/models"
)

// UserRepository defines the interface for account storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// FindByPhoneHash returns the first account registered with the given phone hash.
	FindByPhoneHash(ctx context.Context, phoneHash string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	MarkPaid(ctx context.Context, userID, transactionID string, paidAt time.Time) error
	SetPaid(ctx context.Context, userID string, isPaid bool) error
}

// ListingQuery selects one page of the listings feed.
type ListingQuery struct {
	Filter models.ListingFilter
	// Cursor is the ID of the last listing of the previous page. Empty starts from the newest.
	Cursor string
	Limit  int
}

// ListingRepository defines the interface for listing storage operations.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) (string, error) // Returns new listing ID
	GetByID(ctx context.Context, listingID string) (*models.Listing, error)
	Query(ctx context.Context, q ListingQuery) ([]*models.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error)
	UpdateStatus(ctx context.Context, listingID string, status models.ListingStatus) error
}

// TransactionRepository defines the interface for payment transaction storage.
type TransactionRepository interface {
	// Create fails with ErrAlreadyExists when the transaction ID has been recorded before.
	Create(ctx context.Context, txn *models.PaymentTransaction) error
	GetByID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error)
}
