package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	cryptoutil "paydesk/internal/platform/crypto"
	"paydesk/internal/platform/email"
)

const maxOTPAttempts = 5

// OTPService runs the signup and forgot-password passcode flows. Each
// challenge has its own TOTP secret; the code is derived at the challenge's
// creation instant so it stays valid for the whole TTL.
type OTPService struct {
	Store  StoreAPI
	Crypto *cryptoutil.Service
	Mailer email.Mailer
	From   string
	TTL    time.Duration
	now    func() time.Time
}

func NewOTPService(store StoreAPI, crypto *cryptoutil.Service, mailer email.Mailer, from string, ttl time.Duration) *OTPService {
	return &OTPService{Store: store, Crypto: crypto, Mailer: mailer, From: from, TTL: ttl, now: time.Now}
}

func (s *OTPService) opts() totp.ValidateOpts {
	period := uint(s.TTL / time.Second)
	if period == 0 {
		period = 300
	}
	return totp.ValidateOpts{
		Period:    period,
		Skew:      0,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func validPurpose(purpose string) bool {
	return purpose == PurposeSignup || purpose == PurposeReset
}

// Send checks the employee id and phone pair, opens a challenge and delivers
// the code. The code is returned so callers can echo it in development.
func (s *OTPService) Send(ctx context.Context, purpose, employeeID, phone string) (string, error) {
	if !validPurpose(purpose) {
		return "", ErrInvalidPurpose
	}
	contact, err := s.Store.MatchActiveEmployee(ctx, employeeID, phone)
	if err != nil {
		return "", err
	}

	opts := s.opts()
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Paydesk",
		AccountName: employeeID,
		Period:      opts.Period,
		Digits:      opts.Digits,
		Algorithm:   opts.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("generate otp secret: %w", err)
	}
	createdAt := s.now().Truncate(time.Second)
	code, err := totp.GenerateCodeCustom(key.Secret(), createdAt, opts)
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	secretEnc, err := s.Crypto.EncryptString(key.Secret())
	if err != nil {
		return "", fmt.Errorf("encrypt otp secret: %w", err)
	}
	if _, err := s.Store.InsertChallenge(ctx, employeeID, purpose, secretEnc, createdAt, createdAt.Add(s.TTL)); err != nil {
		return "", fmt.Errorf("store otp challenge: %w", err)
	}

	if s.Mailer != nil && contact.Email != "" {
		body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.\n", code, int(s.TTL.Minutes()))
		if err := s.Mailer.Send(ctx, s.From, contact.Email, "Your verification code", body); err != nil {
			slog.Warn("otp email failed", "employeeId", employeeID, "purpose", purpose, "err", err)
		}
	}
	return code, nil
}

func (s *OTPService) Verify(ctx context.Context, purpose, employeeID, code string) error {
	if !validPurpose(purpose) {
		return ErrInvalidPurpose
	}
	challenge, err := s.Store.LatestOpenChallenge(ctx, employeeID, purpose, s.now())
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if challenge.Attempts >= maxOTPAttempts {
		return ErrInvalidOTP
	}

	secret, err := s.Crypto.DecryptString(challenge.SecretEnc)
	if err != nil {
		return fmt.Errorf("decrypt otp secret: %w", err)
	}
	valid, err := totp.ValidateCustom(code, secret, challenge.CreatedAt, s.opts())
	if err != nil || !valid {
		if incErr := s.Store.IncrementChallengeAttempts(ctx, challenge.ID); incErr != nil {
			slog.Warn("otp attempt increment failed", "challengeId", challenge.ID, "err", incErr)
		}
		return ErrInvalidOTP
	}
	return s.Store.MarkChallengeVerified(ctx, challenge.ID)
}

// SetPassword finishes a verified flow: signup creates or replaces the
// employee credential, reset requires one to exist.
func (s *OTPService) SetPassword(ctx context.Context, purpose, employeeID, password string) error {
	if !validPurpose(purpose) {
		return ErrInvalidPurpose
	}
	if err := ValidatePasswordPolicy(password); err != nil {
		return err
	}
	challenge, err := s.Store.LatestVerifiedChallenge(ctx, employeeID, purpose)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOTPNotVerified
	}
	if err != nil {
		return err
	}
	if s.now().After(challenge.ExpiresAt.Add(s.TTL)) {
		return ErrOTPNotVerified
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	switch purpose {
	case PurposeReset:
		cred, err := s.Store.FindCredentialByEmployee(ctx, employeeID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCredentialNotFound
		}
		if err != nil {
			return err
		}
		if err := s.Store.UpdatePassword(ctx, cred.ID, hash, false); err != nil {
			return err
		}
	default:
		if err := s.Store.UpsertEmployeeCredential(ctx, employeeID, hash, false); err != nil {
			return err
		}
	}
	return s.Store.ConsumeChallenge(ctx, challenge.ID)
}
