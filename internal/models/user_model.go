package models

import "time"

// User is the account document stored at users/{uid}. The document ID is the Firebase Auth UID.
type User struct {
	ID             string     `json:"id" firestore:"-"`
	Name           string     `json:"name" firestore:"name"`
	Email          string     `json:"email" firestore:"email"`
	Phone          string     `json:"phone,omitempty" firestore:"phone,omitempty"`
	PhoneHash      string     `json:"-" firestore:"phoneHash,omitempty"`
	IsPaid         bool       `json:"isPaid" firestore:"isPaid"`
	IsAdmin        bool       `json:"isAdmin" firestore:"isAdmin"`
	TrialStartDate *time.Time `json:"trialStartDate,omitempty" firestore:"trialStartDate,omitempty"` // written once, at creation
	PaymentDate    *time.Time `json:"paymentDate,omitempty" firestore:"paymentDate,omitempty"`
	LastPaymentID  string     `json:"lastPaymentId,omitempty" firestore:"lastPaymentId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

// Contact is the owner contact block shown on an unlocked listing.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Identity is the verified caller as reported by Firebase Auth.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
