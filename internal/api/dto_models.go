package api

import (
	"github.com/example/rentalhub/internal/middleware"
	"github.com/example/rentalhub/internal/models"
)

// ErrorResponse is the error body of every endpoint. RedirectTo is set when the client
// should send the user to the login page.
type ErrorResponse = middleware.ErrorResponse

// MessageResponse is a simple success message.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountResponse is an account together with its resolved access tier.
type AccountResponse struct {
	User *models.User      `json:"user"`
	Tier models.AccessTier `json:"tier"`
}

// InitializeProfileResponse is returned by POST /users/initialize.
type InitializeProfileResponse struct {
	AccountResponse
	Created bool `json:"created"`
}

// ListingFeedResponse is one page of the feed, gated for the caller. HasMore and NextCursor
// describe the unfiltered page, so a search never ends pagination early.
type ListingFeedResponse struct {
	Listings   []*models.ListingCard `json:"listings"`
	NextCursor string                `json:"nextCursor,omitempty"`
	HasMore    bool                  `json:"hasMore"`
	Search     string                `json:"search,omitempty"`
}

// NearbyResponse lists points of interest around a listing.
type NearbyResponse struct {
	RadiusMeters int            `json:"radiusMeters"`
	Places       []models.Place `json:"places"`
}

// PaymentResponse is returned once a payment has been verified.
type PaymentResponse struct {
	Message     string                     `json:"message"`
	Transaction *models.PaymentTransaction `json:"transaction"`
}

// UsersResponse is the admin user list.
type UsersResponse struct {
	Users []*models.User `json:"users"`
	Count int            `json:"count"`
}
