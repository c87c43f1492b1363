// Package services contains server-side business logic. This file implements
// AuthService, which owns every account state transition: registration,
// OTP verification, login, and password recovery.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/linkup-social/linkup/internal/common"
	"github.com/linkup-social/linkup/internal/logging"
	"github.com/linkup-social/linkup/internal/server/accounts"
	"github.com/linkup-social/linkup/internal/server/auth"
	"github.com/linkup-social/linkup/internal/server/config"
	"github.com/linkup-social/linkup/internal/server/models"
	"github.com/linkup-social/linkup/internal/server/notifier"
	"github.com/sethvargo/go-retry"
)

// notifyTimeout bounds each delivery attempt so a stuck SMTP session never
// pins a goroutine indefinitely.
const notifyTimeout = 5 * time.Second

// maxUpdateRetries bounds optimistic-lock retries on concurrent writes to the
// same account.
const maxUpdateRetries = 3

// AuthService composes the account store, credential hasher, OTP generator,
// session issuer, and notifier. All collaborators are injected; there are no
// ambient globals.
type AuthService struct {
	repo        accounts.Repository
	hasher      *auth.Hasher
	issuer      *auth.TokenIssuer
	notifier    notifier.Notifier
	logger      logging.Logger
	otpValidity time.Duration

	// now is replaceable in tests to control expiry decisions.
	now func() time.Time
}

func NewAuthService(repo accounts.Repository, hasher *auth.Hasher, issuer *auth.TokenIssuer,
	n notifier.Notifier, logger logging.Logger, cfg *config.Config) *AuthService {

	otpValidity := cfg.OTPValidityDuration
	if otpValidity <= 0 {
		otpValidity = auth.DefaultOTPValidity
	}

	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		issuer:      issuer,
		notifier:    n,
		logger:      logger.With("module", "auth_service"),
		otpValidity: otpValidity,
		now:         time.Now,
	}
}

// Register creates an account in pending-verification state and sends the
// OTP challenge. The account is persisted before the notification attempt;
// delivery is best-effort and never fails the registration.
//
// Returns common.ErrAlreadyExists when the email is taken.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {

	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return common.ErrInternal
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		s.logger.Error(ctx, "otp generation failed", "error", err)
		return common.ErrInternal
	}

	account := &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		Status:       models.StatusPendingVerification,
	}
	account.SetOTP(code, auth.OTPExpiry(s.now(), s.otpValidity))

	if _, err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return common.ErrAlreadyExists
		}
		s.logger.Error(ctx, "account create failed", "error", err)
		return common.ErrInternal
	}

	s.sendOTPAsync(email, code)
	return nil
}

// VerifyOTP redeems an outstanding challenge and returns a session token.
// Check order matches the account lifecycle: unknown email, then code
// mismatch, then expiry. The first successful redemption also activates a
// pending account.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (string, error) {

	account, err := s.updateAccount(ctx, email, func(a *models.Account) error {
		if err := s.redeemOTP(a, code); err != nil {
			return err
		}
		a.Status = models.StatusActive
		return nil
	})
	if err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(account.ID, account.Name)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "error", err)
		return "", common.ErrInternal
	}
	return token, nil
}

// Login verifies the password and returns a session token. It deliberately
// does not require the account to be active; an unverified account with a
// known password may still log in, matching the historical behavior.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNotFound
		}
		s.logger.Error(ctx, "account lookup failed", "error", err)
		return "", common.ErrInternal
	}

	if !s.hasher.Check(password, account.PasswordHash) {
		return "", common.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(account.ID, account.Name)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "error", err)
		return "", common.ErrInternal
	}
	return token, nil
}

// ForgotPassword re-arms the OTP challenge with a fresh code and expiry,
// replacing any outstanding one, and sends it. Repeated calls simply re-arm.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {

	code, err := auth.GenerateOTP()
	if err != nil {
		s.logger.Error(ctx, "otp generation failed", "error", err)
		return common.ErrInternal
	}
	expiresAt := auth.OTPExpiry(s.now(), s.otpValidity)

	if _, err := s.updateAccount(ctx, email, func(a *models.Account) error {
		a.SetOTP(code, expiresAt)
		return nil
	}); err != nil {
		return err
	}

	s.sendOTPAsync(email, code)
	return nil
}

// ResetPassword redeems a recovery challenge and replaces the password.
// The account is looked up by email and code together, so a wrong code is
// indistinguishable from a missing account; both (and a stale code) yield
// common.ErrOTPInvalidOrExpired. The caller must log in afterwards.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return common.ErrInternal
	}

	b := retry.WithMaxRetries(maxUpdateRetries, retry.NewConstant(10*time.Millisecond))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		account, err := s.repo.GetByEmailAndOTP(ctx, email, code)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrOTPInvalidOrExpired
			}
			s.logger.Error(ctx, "account lookup failed", "error", err)
			return common.ErrInternal
		}

		if err := s.redeemOTP(account, code); err != nil {
			return common.ErrOTPInvalidOrExpired
		}
		account.PasswordHash = digest

		if err := s.repo.Update(ctx, account); err != nil {
			if errors.Is(err, common.ErrVersionConflict) {
				return retry.RetryableError(err)
			}
			s.logger.Error(ctx, "account update failed", "error", err)
			return common.ErrInternal
		}
		return nil
	})
	if errors.Is(err, common.ErrVersionConflict) {
		return common.ErrInternal
	}
	return err
}

// GetProfile returns the public view of an account. The caller is expected to
// have authenticated the session token already.
func (s *AuthService) GetProfile(ctx context.Context, accountID string) (*models.Profile, error) {

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		s.logger.Error(ctx, "account lookup failed", "error", err)
		return nil, common.ErrInternal
	}

	return account.Profile(), nil
}

// --- helpers below ---

// redeemOTP validates the supplied code against the outstanding challenge and
// clears it on success. It is the single redemption primitive shared by
// first-time verification and password recovery. The expiry comparison is
// "expired if now >= otpExpiresAt".
func (s *AuthService) redeemOTP(account *models.Account, code string) error {
	if !account.HasOTP() || account.OTPCode.String != code {
		return common.ErrInvalidOTP
	}
	if !s.now().Before(account.OTPExpiresAt.Time) {
		return common.ErrOTPExpired
	}
	account.ClearOTP()
	return nil
}

// updateAccount runs a read-modify-write cycle on the account keyed by email,
// retrying a bounded number of times when a concurrent writer invalidates the
// revision. Mutation errors pass through unchanged.
func (s *AuthService) updateAccount(ctx context.Context, email string, mutate func(*models.Account) error) (*models.Account, error) {

	var result *models.Account

	b := retry.WithMaxRetries(maxUpdateRetries, retry.NewConstant(10*time.Millisecond))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		account, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrNotFound
			}
			s.logger.Error(ctx, "account lookup failed", "error", err)
			return common.ErrInternal
		}

		if err := mutate(account); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, account); err != nil {
			if errors.Is(err, common.ErrVersionConflict) {
				return retry.RetryableError(err)
			}
			s.logger.Error(ctx, "account update failed", "error", err)
			return common.ErrInternal
		}

		result = account
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return nil, common.ErrInternal
		}
		return nil, err
	}
	return result, nil
}

// sendOTPAsync delivers the challenge without blocking or failing the calling
// operation. Failures are recorded for operability and otherwise dropped; the
// persisted OTP state is not rolled back.
func (s *AuthService) sendOTPAsync(email, code string) {
	subject, body := notifier.OTPMessage(code, s.otpValidity)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.Send(ctx, email, subject, body); err != nil {
			s.logger.Warn(ctx, "otp delivery failed", "error", err)
		}
	}()
}
