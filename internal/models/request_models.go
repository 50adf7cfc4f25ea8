package models

// InitializeProfileRequest is the optional body of POST /users/initialize.
type InitializeProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateListingRequest carries the form fields of a new listing. Images travel separately
// as multipart file parts.
type CreateListingRequest struct {
	Title       string        `form:"title" json:"title"`
	Description string        `form:"description" json:"description"`
	Price       float64       `form:"price" json:"price"`
	Amenities   []string      `form:"amenities" json:"amenities"`
	Status      ListingStatus `form:"status" json:"status"`
	Lat         *float64      `form:"lat" json:"lat"`
	Lng         *float64      `form:"lng" json:"lng"`
}

// UpdateListingStatusRequest is the body of PATCH /listings/:id/status.
type UpdateListingStatusRequest struct {
	Status ListingStatus `json:"status" binding:"required"`
}

// VerifyPaymentRequest is the body of POST /payments/verify.
type VerifyPaymentRequest struct {
	TransactionID string  `json:"transactionId" binding:"required"`
	PhoneNumber   string  `json:"phoneNumber" binding:"required"`
	Amount        float64 `json:"amount,omitempty"`
}

// SetPaymentStatusRequest is the body of the admin payment toggle.
type SetPaymentStatusRequest struct {
	IsPaid *bool `json:"isPaid" binding:"required"`
}
