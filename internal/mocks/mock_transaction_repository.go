package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/models"
)

var _ db.TransactionRepository = (*MockTransactionRepository)(nil)

// MockTransactionRepository implements db.TransactionRepository.
type MockTransactionRepository struct {
	CreateFunc  func(ctx context.Context, txn *models.PaymentTransaction) error
	GetByIDFunc func(ctx context.Context, transactionID string) (*models.PaymentTransaction, error)

	mu           sync.Mutex
	Transactions map[string]*models.PaymentTransaction
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Transactions: map[string]*models.PaymentTransaction{}}
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *models.PaymentTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Transactions[txn.ID]; ok {
		return fmt.Errorf("transaction '%s': %w", txn.ID, db.ErrAlreadyExists)
	}
	cp := *txn
	m.Transactions[txn.ID] = &cp
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, transactionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.Transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction '%s' not found: %w", transactionID, db.ErrNotFound)
	}
	cp := *txn
	return &cp, nil
}
