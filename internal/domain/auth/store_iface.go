package auth

import (
	"context"
	"time"
)

type StoreAPI interface {
	FindCredentialByUsername(ctx context.Context, username string) (Credential, error)
	FindCredentialByID(ctx context.Context, userID string) (Credential, error)
	FindCredentialByEmployee(ctx context.Context, employeeID string) (Credential, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, hash string, mustChange bool) error
	UpsertEmployeeCredential(ctx context.Context, employeeID, hash string, mustChange bool) error
	EmployeeContact(ctx context.Context, employeeID string) (EmployeeContact, error)
	MatchActiveEmployee(ctx context.Context, employeeID, phone string) (EmployeeContact, error)
	InsertChallenge(ctx context.Context, employeeID, purpose string, secretEnc []byte, createdAt, expiresAt time.Time) (int64, error)
	LatestOpenChallenge(ctx context.Context, employeeID, purpose string, now time.Time) (Challenge, error)
	LatestVerifiedChallenge(ctx context.Context, employeeID, purpose string) (Challenge, error)
	IncrementChallengeAttempts(ctx context.Context, id int64) error
	MarkChallengeVerified(ctx context.Context, id int64) error
	ConsumeChallenge(ctx context.Context, id int64) error
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	SetAccountStatus(ctx context.Context, userID, status string) error
}
