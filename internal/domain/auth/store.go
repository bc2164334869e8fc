package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"paydesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// A login tied to a deactivated employee reads as disabled whatever users.status says.
const credentialColumns = `
	u.id, u.username, u.password_hash, u.role_id, r.name, COALESCE(u.employee_id, ''), u.must_change_password,
	CASE WHEN e.is_active = false THEN 'disabled' ELSE u.status END
`

const credentialFrom = `
	FROM users u
	JOIN roles r ON u.role_id = r.id
	LEFT JOIN employees e ON e.id = u.employee_id
`

func scanCredential(row pgx.Row) (Credential, error) {
	var c Credential
	err := row.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.RoleID, &c.RoleName, &c.EmployeeID, &c.MustChangePassword, &c.Status)
	return c, err
}

func (s *Store) FindCredentialByUsername(ctx context.Context, username string) (Credential, error) {
	return scanCredential(s.DB.QueryRow(ctx, `
		SELECT `+credentialColumns+credentialFrom+`
		WHERE u.username = $1
	`, username))
}

func (s *Store) FindCredentialByID(ctx context.Context, userID string) (Credential, error) {
	return scanCredential(s.DB.QueryRow(ctx, `
		SELECT `+credentialColumns+credentialFrom+`
		WHERE u.id = $1
	`, userID))
}

func (s *Store) FindCredentialByEmployee(ctx context.Context, employeeID string) (Credential, error) {
	return scanCredential(s.DB.QueryRow(ctx, `
		SELECT `+credentialColumns+credentialFrom+`
		WHERE u.employee_id = $1
	`, employeeID))
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) UpdatePassword(ctx context.Context, userID, hash string, mustChange bool) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE users SET password_hash = $1, must_change_password = $2, updated_at = now()
		WHERE id = $3
	`, hash, mustChange, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// UpsertEmployeeCredential creates the employee's login (username = employee id) or rotates its hash.
// A username already held by another account is ErrUsernameTaken.
func (s *Store) UpsertEmployeeCredential(ctx context.Context, employeeID, hash string, mustChange bool) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO users (username, password_hash, role_id, employee_id, must_change_password)
		SELECT $1, $2, r.id, $1, $3
		FROM roles r
		WHERE r.name = $4
		ON CONFLICT (employee_id) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
			must_change_password = EXCLUDED.must_change_password,
			status = 'active',
			updated_at = now()
	`, employeeID, hash, mustChange, RoleEmployee)
	return err
}

func (s *Store) EmployeeContact(ctx context.Context, employeeID string) (EmployeeContact, error) {
	var out EmployeeContact
	err := s.DB.QueryRow(ctx, `
		SELECT id, full_name, email FROM employees WHERE id = $1
	`, employeeID).Scan(&out.ID, &out.FullName, &out.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return out, ErrEmployeeNotFound
	}
	return out, err
}

func (s *Store) MatchActiveEmployee(ctx context.Context, employeeID, phone string) (EmployeeContact, error) {
	var out EmployeeContact
	err := s.DB.QueryRow(ctx, `
		SELECT id, full_name, email
		FROM employees
		WHERE id = $1 AND phone = $2 AND is_active = true
	`, employeeID, phone).Scan(&out.ID, &out.FullName, &out.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return out, ErrEmployeeMismatch
	}
	return out, err
}

func (s *Store) InsertChallenge(ctx context.Context, employeeID, purpose string, secretEnc []byte, createdAt, expiresAt time.Time) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
		INSERT INTO otp_challenges (employee_id, purpose, secret_enc, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, employeeID, purpose, secretEnc, createdAt, expiresAt).Scan(&id)
	return id, err
}

const challengeColumns = `id, employee_id, purpose, secret_enc, expires_at, verified_at, consumed_at, attempts, created_at`

func scanChallenge(row pgx.Row) (Challenge, error) {
	var c Challenge
	err := row.Scan(&c.ID, &c.EmployeeID, &c.Purpose, &c.SecretEnc, &c.ExpiresAt, &c.VerifiedAt, &c.ConsumedAt, &c.Attempts, &c.CreatedAt)
	return c, err
}

func (s *Store) LatestOpenChallenge(ctx context.Context, employeeID, purpose string, now time.Time) (Challenge, error) {
	return scanChallenge(s.DB.QueryRow(ctx, `
		SELECT `+challengeColumns+`
		FROM otp_challenges
		WHERE employee_id = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > $3
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, employeeID, purpose, now))
}

func (s *Store) LatestVerifiedChallenge(ctx context.Context, employeeID, purpose string) (Challenge, error) {
	return scanChallenge(s.DB.QueryRow(ctx, `
		SELECT `+challengeColumns+`
		FROM otp_challenges
		WHERE employee_id = $1 AND purpose = $2 AND verified_at IS NOT NULL AND consumed_at IS NULL
		ORDER BY verified_at DESC, id DESC
		LIMIT 1
	`, employeeID, purpose))
}

func (s *Store) IncrementChallengeAttempts(ctx context.Context, id int64) error {
	_, err := s.DB.Exec(ctx, "UPDATE otp_challenges SET attempts = attempts + 1 WHERE id = $1", id)
	return err
}

func (s *Store) MarkChallengeVerified(ctx context.Context, id int64) error {
	_, err := s.DB.Exec(ctx, "UPDATE otp_challenges SET verified_at = now() WHERE id = $1", id)
	return err
}

func (s *Store) ConsumeChallenge(ctx context.Context, id int64) error {
	_, err := s.DB.Exec(ctx, "UPDATE otp_challenges SET consumed_at = now() WHERE id = $1 AND consumed_at IS NULL", id)
	return err
}

func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM role_permissions rp
			JOIN permissions p ON rp.permission_id = p.id
			WHERE rp.role_id = $1 AND p.key = $2
		)
	`, roleID, permission).Scan(&exists)
	return exists, err
}

// CredentialActive reports whether the login may still act: its own status is
// active and any linked employee is active.
func (s *Store) CredentialActive(ctx context.Context, userID string) (bool, error) {
	var active bool
	err := s.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM users u
			LEFT JOIN employees e ON e.id = u.employee_id
			WHERE u.id = $1 AND u.status = $2 AND COALESCE(e.is_active, true)
		)
	`, userID, UserStatusActive).Scan(&active)
	return active, err
}

func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT u.id, u.username, r.name, COALESCE(u.employee_id, ''),
			CASE WHEN e.is_active = false THEN 'disabled' ELSE u.status END,
			u.must_change_password, u.last_login, u.created_at
		FROM users u
		JOIN roles r ON u.role_id = r.id
		LEFT JOIN employees e ON e.id = u.employee_id
		ORDER BY u.username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Role, &a.EmployeeID, &a.Status, &a.MustChangePassword, &a.LastLogin, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SetAccountStatus(ctx context.Context, userID, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET status = $2, updated_at = now() WHERE id = $1", userID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}
