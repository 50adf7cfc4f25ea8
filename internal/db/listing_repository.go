package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/rentalhub/internal/models"
)

const listingsCollection = "listings"

type firestoreListingRepository struct {
	client *firestore.Client
}

// NewFirestoreListingRepository creates a Firestore backed ListingRepository.
func NewFirestoreListingRepository(client *firestore.Client) ListingRepository {
	return &firestoreListingRepository{client: client}
}

// Create adds a listing with an auto-generated ID. A zero CreatedAt is filled in by the server
// and copied back from the write result.
func (r *firestoreListingRepository) Create(ctx context.Context, listing *models.Listing) (string, error) {
	docRef := r.client.Collection(listingsCollection).NewDoc()
	listing.ID = docRef.ID

	result, err := docRef.Create(ctx, listing)
	if err != nil {
		return "", fmt.Errorf("failed to create listing: %w", err)
	}
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = result.UpdateTime
	}
	return docRef.ID, nil
}

func (r *firestoreListingRepository) GetByID(ctx context.Context, listingID string) (*models.Listing, error) {
	if listingID == "" {
		return nil, errors.New("listingID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(listingsCollection).Doc(listingID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("listing with ID '%s' not found: %w", listingID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing with ID '%s': %w", listingID, err)
	}
	return decodeListing(docSnap)
}

// Query returns one page of listings, newest first. The cursor document is re-read so the
// query can resume strictly after it.
func (r *firestoreListingRepository) Query(ctx context.Context, q ListingQuery) ([]*models.Listing, error) {
	col := r.client.Collection(listingsCollection)
	query := col.Query
	if q.Filter.Status != "" {
		query = query.Where("status", "==", string(q.Filter.Status))
	}
	if q.Filter.OwnerID != "" {
		query = query.Where("ownerId", "==", q.Filter.OwnerID)
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Cursor != "" {
		cursorSnap, err := col.Doc(q.Cursor).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil, fmt.Errorf("cursor '%s': %w", q.Cursor, ErrInvalidCursor)
			}
			return nil, fmt.Errorf("failed to read cursor document '%s': %w", q.Cursor, err)
		}
		query = query.StartAfter(cursorSnap)
	}
	return collectListings(query.Documents(ctx))
}

func (r *firestoreListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	if ownerID == "" {
		return nil, errors.New("ownerID cannot be empty for ListByOwner operation")
	}
	query := r.client.Collection(listingsCollection).
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc)
	return collectListings(query.Documents(ctx))
}

func (r *firestoreListingRepository) UpdateStatus(ctx context.Context, listingID string, s models.ListingStatus) error {
	_, err := r.client.Collection(listingsCollection).Doc(listingID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(s)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("listing with ID '%s' not found: %w", listingID, ErrNotFound)
		}
		return fmt.Errorf("failed to update status of listing '%s': %w", listingID, err)
	}
	return nil
}

func collectListings(iter *firestore.DocumentIterator) ([]*models.Listing, error) {
	defer iter.Stop()

	listings := []*models.Listing{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate listings: %w", err)
		}
		listing, err := decodeListing(doc)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func decodeListing(doc *firestore.DocumentSnapshot) (*models.Listing, error) {
	var listing models.Listing
	if err := doc.DataTo(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing data for ID '%s': %w", doc.Ref.ID, err)
	}
	listing.ID = doc.Ref.ID
	return &listing, nil
}
