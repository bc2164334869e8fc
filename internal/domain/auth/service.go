package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	Store    StoreAPI
	Secret   string
	TokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: ttl}
}

func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	cred, err := s.Store.FindCredentialByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if cred.Status != UserStatusActive {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := CheckPassword(cred.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{
		UserID:     cred.ID,
		RoleID:     cred.RoleID,
		RoleName:   cred.RoleName,
		EmployeeID: cred.EmployeeID,
	}, s.TokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, cred.ID); err != nil {
		slog.Warn("update last_login failed", "userId", cred.ID, "err", err)
	}

	return LoginResult{
		Token: token,
		User: SessionUser{
			ID:                 cred.ID,
			Username:           cred.Username,
			Role:               cred.RoleName,
			EmployeeID:         cred.EmployeeID,
			MustChangePassword: cred.MustChangePassword,
		},
	}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	cred, err := s.Store.FindCredentialByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCredentialNotFound
	}
	if err != nil {
		return err
	}
	if err := CheckPassword(cred.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}
	if err := ValidatePasswordPolicy(next); err != nil {
		return err
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.Store.UpdatePassword(ctx, userID, hash, false)
}

func (s *Service) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return s.Store.HasPermission(ctx, roleID, permission)
}

func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.Store.ListAccounts(ctx)
}

// SetAccountStatus enables or disables a login. Disabling takes effect on the
// next request because the auth middleware rechecks CredentialActive.
func (s *Service) SetAccountStatus(ctx context.Context, actorUserID, userID, status string) error {
	if status != UserStatusActive && status != UserStatusDisabled {
		return ErrInvalidStatus
	}
	if status == UserStatusDisabled && actorUserID == userID {
		return ErrSelfDisable
	}
	return s.Store.SetAccountStatus(ctx, userID, status)
}
