package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/rentalhub/internal/models"
)

const transactionsCollection = "transactions"

type firestoreTransactionRepository struct {
	client *firestore.Client
}

// NewFirestoreTransactionRepository creates a Firestore backed TransactionRepository.
func NewFirestoreTransactionRepository(client *firestore.Client) TransactionRepository {
	return &firestoreTransactionRepository{client: client}
}

// Create stores the transaction under its external ID. Doc.Create rejects duplicates atomically.
func (r *firestoreTransactionRepository) Create(ctx context.Context, txn *models.PaymentTransaction) error {
	if txn.ID == "" {
		return errors.New("transaction ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(transactionsCollection).Doc(txn.ID).Create(ctx, txn)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("transaction '%s': %w", txn.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create transaction '%s': %w", txn.ID, err)
	}
	return nil
}

func (r *firestoreTransactionRepository) GetByID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	docSnap, err := r.client.Collection(transactionsCollection).Doc(transactionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("transaction '%s' not found: %w", transactionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction '%s': %w", transactionID, err)
	}
	var txn models.PaymentTransaction
	if err := docSnap.DataTo(&txn); err != nil {
		return nil, fmt.Errorf("failed to decode transaction '%s': %w", transactionID, err)
	}
	txn.ID = docSnap.Ref.ID
	return &txn, nil
}
