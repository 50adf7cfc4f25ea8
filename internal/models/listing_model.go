package models

import "time"

// ListingStatus is the lifecycle state of a listing. Any status may move to any other.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusTaken     ListingStatus = "taken"
	StatusWithdrawn ListingStatus = "withdrawn"
)

// Valid reports whether s is one of the known statuses.
func (s ListingStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusTaken, StatusWithdrawn:
		return true
	}
	return false
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// Listing represents a single rental property.
type Listing struct {
	ID          string        `json:"id" firestore:"-"` // Document ID, auto-generated
	Title       string        `json:"title" firestore:"title"`
	Description string        `json:"description" firestore:"description"`
	Price       float64       `json:"price" firestore:"price"`
	Images      []string      `json:"images" firestore:"images"`
	Location    *GeoPoint     `json:"location,omitempty" firestore:"location,omitempty"`
	Amenities   []string      `json:"amenities" firestore:"amenities"`
	Status      ListingStatus `json:"status" firestore:"status"`
	CreatedAt   time.Time     `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	OwnerID     string        `json:"ownerId" firestore:"ownerId"`
}

// ListingFilter narrows a listing query. The zero value matches every listing.
type ListingFilter struct {
	Status  ListingStatus `json:"status,omitempty"`
	OwnerID string        `json:"ownerId,omitempty"`
}

// ListingPage is one cursor-delimited page of listings, newest first.
type ListingPage struct {
	Listings   []*Listing `json:"listings"`
	NextCursor string     `json:"nextCursor,omitempty"`
	HasMore    bool       `json:"hasMore"`
}

// ListingCard is a feed item as seen by a particular viewer. Blurred cards carry the first
// image only and no location.
type ListingCard struct {
	Listing
	Blurred bool `json:"blurred"`
}

// ListingDetail is a listing as seen by a particular viewer. Premium fields are only
// populated when the viewer's content is unlocked.
type ListingDetail struct {
	Listing
	Blurred      bool     `json:"blurred"`
	StaticMapURL string   `json:"staticMapUrl,omitempty"`
	Contact      *Contact `json:"contact,omitempty"`
}
