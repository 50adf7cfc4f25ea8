package models

import "time"

// PaymentStatus is the verification state of a transaction.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentFailed   PaymentStatus = "failed"
)

// PaymentMethodEcocash is the only mobile-money rail accepted today.
const PaymentMethodEcocash = "ecocash"

// DefaultPaymentAmount is charged when the client does not send an amount.
const DefaultPaymentAmount = 5.00

// PaymentTransaction is stored at transactions/{transactionId}. The ID is supplied by the
// payer from their mobile-money receipt; it is never generated here.
type PaymentTransaction struct {
	ID                   string        `json:"id" firestore:"-"`
	UserID               string        `json:"userId" firestore:"userId"`
	PhoneHash            string        `json:"-" firestore:"phoneHash"`
	PhoneNumberEncrypted string        `json:"-" firestore:"phoneNumberEncrypted"`
	Amount               float64       `json:"amount" firestore:"amount"`
	Status               PaymentStatus `json:"status" firestore:"status"`
	PaymentMethod        string        `json:"paymentMethod" firestore:"paymentMethod"`
	Timestamp            time.Time     `json:"timestamp" firestore:"timestamp"`
	VerificationDate     *time.Time    `json:"verificationDate,omitempty" firestore:"verificationDate,omitempty"`
}

// PaymentVerifiedEvent is published once a transaction has been verified.
type PaymentVerifiedEvent struct {
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Amount        float64   `json:"amount"`
	VerifiedAt    time.Time `json:"verifiedAt"`
}
