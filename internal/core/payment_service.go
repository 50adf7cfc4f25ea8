package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/crypto"
	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/metrics"
	"github.com/example/rentalhub/internal/models"
	"github.com/example/rentalhub/internal/payments"
	"github.com/example/rentalhub/pkg/messagequeue"
)

// PhoneEncrypter seals phone numbers before they are stored.
type PhoneEncrypter interface {
	Encrypt(plainText string) (string, error)
}

// PaymentConfig carries the payment settings.
type PaymentConfig struct {
	Amount float64
	// Queue receives a PaymentVerifiedEvent per verified payment.
	Queue string
}

type paymentService struct {
	txnRepo  db.TransactionRepository
	userRepo db.UserRepository
	accounts AccountService
	verifier payments.Verifier
	cipher   PhoneEncrypter
	mq       messagequeue.MessageQueue
	cfg      PaymentConfig
	metrics  *metrics.Recorder
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService instance.
func NewPaymentService(
	txnRepo db.TransactionRepository,
	userRepo db.UserRepository,
	accounts AccountService,
	verifier payments.Verifier,
	cipher PhoneEncrypter,
	mq messagequeue.MessageQueue,
	cfg PaymentConfig,
	m *metrics.Recorder,
	logger *zap.Logger,
) PaymentService {
	if cfg.Amount <= 0 {
		cfg.Amount = models.DefaultPaymentAmount
	}
	if mq == nil {
		mq = messagequeue.Noop{}
	}
	return &paymentService{
		txnRepo:  txnRepo,
		userRepo: userRepo,
		accounts: accounts,
		verifier: verifier,
		cipher:   cipher,
		mq:       mq,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
	}
}

// VerifyPayment checks a manually entered transaction id with the payment rail and, on
// success, records the transaction and marks the account as paid. A transaction already
// recorded for the same unpaid user resumes at the account update.
func (s *paymentService) VerifyPayment(ctx context.Context, userID string, req models.VerifyPaymentRequest) (*models.PaymentTransaction, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	txnID := strings.TrimSpace(req.TransactionID)
	rawPhone := strings.TrimSpace(req.PhoneNumber)
	phone := crypto.NormalizePhone(rawPhone)
	if txnID == "" || phone == "" {
		return nil, fmt.Errorf("%w: transactionId and phoneNumber are required", ErrValidation)
	}
	if strings.ContainsRune(txnID, '/') {
		return nil, fmt.Errorf("%w: transactionId must not contain '/'", ErrValidation)
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	amount := req.Amount
	if amount == 0 {
		amount = s.cfg.Amount
	}

	existing, err := s.txnRepo.GetByID(ctx, txnID)
	switch {
	case err == nil:
		return s.resume(ctx, userID, existing)
	case !errors.Is(err, db.ErrNotFound):
		s.metrics.PaymentVerification("error")
		s.logger.Error("Failed to look up transaction", zap.String("transactionID", txnID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	ok, err := s.verifier.Verify(ctx, payments.Request{TransactionID: txnID, PhoneNumber: rawPhone, UserID: userID, Amount: amount})
	if err != nil {
		s.metrics.PaymentVerification("error")
		s.logger.Error("Payment verifier failed", zap.String("transactionID", txnID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !ok {
		s.metrics.PaymentVerification("rejected")
		s.logger.Info("Payment rejected", zap.String("userID", userID), zap.String("transactionID", txnID))
		return nil, ErrPaymentRejected
	}

	sealed, err := s.cipher.Encrypt(phone)
	if err != nil {
		s.metrics.PaymentVerification("error")
		return nil, fmt.Errorf("failed to encrypt phone number: %w", err)
	}

	now := timeNow()
	txn := &models.PaymentTransaction{
		ID:                   txnID,
		UserID:               userID,
		PhoneHash:            crypto.HashPhoneNumber(phone),
		PhoneNumberEncrypted: sealed,
		Amount:               amount,
		Status:               models.PaymentVerified,
		PaymentMethod:        models.PaymentMethodEcocash,
		Timestamp:            now,
		VerificationDate:     &now,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			s.metrics.PaymentVerification("duplicate")
			return nil, ErrTransactionAlreadyUsed
		}
		s.metrics.PaymentVerification("error")
		s.logger.Error("Failed to store transaction", zap.String("transactionID", txnID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return s.markPaid(ctx, txn)
}

// resume handles a transaction id that is already on record. Only its owner may finish an
// interrupted payment, and only while the account is still unpaid.
func (s *paymentService) resume(ctx context.Context, userID string, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	if txn.UserID != userID || txn.Status != models.PaymentVerified {
		s.metrics.PaymentVerification("duplicate")
		return nil, ErrTransactionAlreadyUsed
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.metrics.PaymentVerification("error")
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Failed to load account for payment retry", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if user.IsPaid {
		s.metrics.PaymentVerification("duplicate")
		return nil, ErrTransactionAlreadyUsed
	}
	s.logger.Info("Resuming recorded payment", zap.String("userID", userID), zap.String("transactionID", txn.ID))
	return s.markPaid(ctx, txn)
}

func (s *paymentService) markPaid(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	if err := s.userRepo.MarkPaid(ctx, txn.UserID, txn.ID, txn.Timestamp); err != nil {
		s.metrics.PaymentVerification("error")
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Failed to mark account paid", zap.String("userID", txn.UserID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.accounts.InvalidateAccount(ctx, txn.UserID)
	s.metrics.PaymentVerification("verified")
	s.logger.Info("Payment verified", zap.String("userID", txn.UserID), zap.String("transactionID", txn.ID))

	s.publishVerified(ctx, txn)
	return txn, nil
}

// publishVerified is best effort; the payment is already committed.
func (s *paymentService) publishVerified(ctx context.Context, txn *models.PaymentTransaction) {
	event := models.PaymentVerifiedEvent{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Amount:        txn.Amount,
		VerifiedAt:    txn.Timestamp,
	}
	if account, err := s.accounts.GetAccount(ctx, txn.UserID); err == nil {
		event.Email = account.Email
		event.Name = account.Name
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to encode payment event", zap.Error(err))
		return
	}
	if err := s.mq.Publish(ctx, s.cfg.Queue, body); err != nil {
		s.logger.Warn("Failed to publish payment event", zap.String("transactionID", txn.ID), zap.Error(err))
	}
}
