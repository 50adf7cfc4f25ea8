package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/models"
)

var _ db.UserRepository = (*MockUserRepository)(nil)

// MockUserRepository implements db.UserRepository. Unset funcs fall back to an in-memory map.
type MockUserRepository struct {
	GetByIDFunc         func(ctx context.Context, userID string) (*models.User, error)
	CreateFunc          func(ctx context.Context, user *models.User) error
	FindByPhoneHashFunc func(ctx context.Context, phoneHash string) (*models.User, error)
	ListFunc            func(ctx context.Context) ([]*models.User, error)
	MarkPaidFunc        func(ctx context.Context, userID, transactionID string, paidAt time.Time) error
	SetPaidFunc         func(ctx context.Context, userID string, isPaid bool) error

	mu    sync.Mutex
	Users map[string]*models.User
	Calls map[string]int
}

// NewMockUserRepository creates a repository seeded with users.
func NewMockUserRepository(users ...*models.User) *MockUserRepository {
	m := &MockUserRepository{Users: map[string]*models.User{}, Calls: map[string]int{}}
	for _, u := range users {
		m.Users[u.ID] = u
	}
	return m
}

func (m *MockUserRepository) called(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[name]++
}

// CallCount returns how often a method was invoked.
func (m *MockUserRepository) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	m.called("GetByID")
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, db.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.called("Create")
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[user.ID]; ok {
		return fmt.Errorf("user with ID '%s': %w", user.ID, db.ErrAlreadyExists)
	}
	cp := *user
	m.Users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) FindByPhoneHash(ctx context.Context, phoneHash string) (*models.User, error) {
	m.called("FindByPhoneHash")
	if m.FindByPhoneHashFunc != nil {
		return m.FindByPhoneHashFunc(ctx, phoneHash)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.PhoneHash == phoneHash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("no user with phone hash: %w", db.ErrNotFound)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	m.called("List")
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.User, 0, len(m.Users))
	for _, u := range m.Users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockUserRepository) MarkPaid(ctx context.Context, userID, transactionID string, paidAt time.Time) error {
	m.called("MarkPaid")
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, userID, transactionID, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return fmt.Errorf("user with ID '%s' not found: %w", userID, db.ErrNotFound)
	}
	u.IsPaid = true
	u.PaymentDate = &paidAt
	u.LastPaymentID = transactionID
	return nil
}

func (m *MockUserRepository) SetPaid(ctx context.Context, userID string, isPaid bool) error {
	m.called("SetPaid")
	if m.SetPaidFunc != nil {
		return m.SetPaidFunc(ctx, userID, isPaid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return fmt.Errorf("user with ID '%s' not found: %w", userID, db.ErrNotFound)
	}
	u.IsPaid = isPaid
	return nil
}
