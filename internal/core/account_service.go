package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/crypto"
	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/metrics"
	"github.com/example/rentalhub/internal/models"
	"github.com/example/rentalhub/pkg/cache"
)

// timeNow is swapped out in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

func accountCacheKey(userID string) string { return "account:" + userID }

// cachedAccount keeps fields that models.User hides from JSON.
type cachedAccount struct {
	models.User
	PhoneHash string `json:"phoneHash,omitempty"`
}

// accountService implements the AccountService interface.
type accountService struct {
	userRepo db.UserRepository
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.Recorder
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(userRepo db.UserRepository, c cache.Cache, cacheTTL time.Duration, m *metrics.Recorder, logger *zap.Logger) AccountService {
	if c == nil {
		c = cache.Noop{}
	}
	return &accountService{
		userRepo: userRepo,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  m,
		logger:   logger,
	}
}

// InitializeProfile returns the existing account for identity or creates it. New accounts get
// a trial starting now, unless the phone number is already attached to another account.
func (s *accountService) InitializeProfile(ctx context.Context, identity models.Identity, req models.InitializeProfileRequest) (*models.User, bool, error) {
	if identity.UID == "" {
		return nil, false, ErrAuthRequired
	}

	existing, err := s.userRepo.GetByID(ctx, identity.UID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		s.logger.Error("Failed to load account", zap.String("userID", identity.UID), zap.Error(err))
		return nil, false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	now := timeNow()
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = identity.Name
	}
	user := &models.User{
		ID:        identity.UID,
		Name:      name,
		Email:     identity.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	trialAllowed := true
	if phone := crypto.NormalizePhone(req.Phone); phone != "" {
		user.Phone = phone
		user.PhoneHash = crypto.HashPhoneNumber(phone)

		owner, err := s.userRepo.FindByPhoneHash(ctx, user.PhoneHash)
		switch {
		case err == nil && owner.ID != identity.UID:
			trialAllowed = false
			s.logger.Info("Phone number already used; account created without trial", zap.String("userID", identity.UID))
		case err != nil && !errors.Is(err, db.ErrNotFound):
			s.logger.Error("Failed to check phone number", zap.Error(err))
			return nil, false, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}
	if trialAllowed {
		user.TrialStartDate = &now
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			// Concurrent initialize from another tab won the race.
			existing, getErr := s.userRepo.GetByID(ctx, identity.UID)
			if getErr != nil {
				return nil, false, fmt.Errorf("%w: %v", ErrUpstream, getErr)
			}
			return existing, false, nil
		}
		s.logger.Error("Failed to create account", zap.String("userID", identity.UID), zap.Error(err))
		return nil, false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return user, true, nil
}

// GetAccount reads through the cache.
func (s *accountService) GetAccount(ctx context.Context, userID string) (*models.User, error) {
	key := accountCacheKey(userID)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached cachedAccount
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			s.metrics.CacheLookup("account", true)
			user := cached.User
			user.PhoneHash = cached.PhoneHash
			return &user, nil
		}
		s.logger.Warn("Discarding malformed cached account", zap.String("userID", userID))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Account cache read failed", zap.String("userID", userID), zap.Error(err))
	}
	s.metrics.CacheLookup("account", false)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Failed to load account", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if raw, err := json.Marshal(cachedAccount{User: *user, PhoneHash: user.PhoneHash}); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
			s.logger.Warn("Account cache write failed", zap.String("userID", userID), zap.Error(err))
		}
	}
	return user, nil
}

func (s *accountService) InvalidateAccount(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, accountCacheKey(userID)); err != nil {
		s.logger.Warn("Account cache invalidation failed", zap.String("userID", userID), zap.Error(err))
	}
}

func (s *accountService) ListAccounts(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return users, nil
}

// SetPaid is the admin override of the paid flag. Last write wins.
func (s *accountService) SetPaid(ctx context.Context, userID string, isPaid bool) (*models.User, error) {
	if err := s.userRepo.SetPaid(ctx, userID, isPaid); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Failed to update paid flag", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.InvalidateAccount(ctx, userID)
	return s.GetAccount(ctx, userID)
}
