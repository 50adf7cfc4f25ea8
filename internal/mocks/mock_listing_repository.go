package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/models"
)

var _ db.ListingRepository = (*MockListingRepository)(nil)

// MockListingRepository implements db.ListingRepository. Unset funcs fall back to an
// in-memory slice ordered newest first, mirroring the Firestore query.
type MockListingRepository struct {
	CreateFunc       func(ctx context.Context, listing *models.Listing) (string, error)
	GetByIDFunc      func(ctx context.Context, listingID string) (*models.Listing, error)
	QueryFunc        func(ctx context.Context, q db.ListingQuery) ([]*models.Listing, error)
	ListByOwnerFunc  func(ctx context.Context, ownerID string) ([]*models.Listing, error)
	UpdateStatusFunc func(ctx context.Context, listingID string, status models.ListingStatus) error

	mu       sync.Mutex
	Listings []*models.Listing
	Queries  []db.ListingQuery
	nextID   int
}

// NewMockListingRepository creates a repository seeded with listings.
func NewMockListingRepository(listings ...*models.Listing) *MockListingRepository {
	return &MockListingRepository{Listings: listings}
}

func (m *MockListingRepository) sorted() []*models.Listing {
	out := append([]*models.Listing(nil), m.Listings...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MockListingRepository) Create(ctx context.Context, listing *models.Listing) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, listing)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	listing.ID = fmt.Sprintf("listing-%d", m.nextID)
	cp := *listing
	m.Listings = append(m.Listings, &cp)
	return listing.ID, nil
}

func (m *MockListingRepository) GetByID(ctx context.Context, listingID string) (*models.Listing, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, listingID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.Listings {
		if l.ID == listingID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("listing with ID '%s' not found: %w", listingID, db.ErrNotFound)
}

func (m *MockListingRepository) Query(ctx context.Context, q db.ListingQuery) ([]*models.Listing, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, q)
	m.mu.Unlock()
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Listing
	for _, l := range m.sorted() {
		if q.Filter.Status != "" && l.Status != q.Filter.Status {
			continue
		}
		if q.Filter.OwnerID != "" && l.OwnerID != q.Filter.OwnerID {
			continue
		}
		matched = append(matched, l)
	}

	start := 0
	if q.Cursor != "" {
		start = -1
		for i, l := range matched {
			if l.ID == q.Cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, fmt.Errorf("cursor '%s': %w", q.Cursor, db.ErrInvalidCursor)
		}
	}

	out := []*models.Listing{}
	for i := start; i < len(matched) && (q.Limit <= 0 || len(out) < q.Limit); i++ {
		cp := *matched[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	return m.Query(ctx, db.ListingQuery{Filter: models.ListingFilter{OwnerID: ownerID}})
}

func (m *MockListingRepository) UpdateStatus(ctx context.Context, listingID string, status models.ListingStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, listingID, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.Listings {
		if l.ID == listingID {
			l.Status = status
			return nil
		}
	}
	return fmt.Errorf("listing with ID '%s' not found: %w", listingID, db.ErrNotFound)
}
