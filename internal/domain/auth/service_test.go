package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	cryptoutil "paydesk/internal/platform/crypto"
	"paydesk/internal/platform/querier"
)

func seededStore(t *testing.T, password string, status string) *fakeStore {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := newFakeStore()
	store.addCredential(Credential{
		ID:           "u1",
		Username:     "admin",
		PasswordHash: hash,
		RoleID:       "role-admin",
		RoleName:     RoleAdmin,
		Status:       status,
	})
	return store
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		username string
		password string
		wantErr  error
	}{
		{name: "valid", status: UserStatusActive, username: "admin", password: "Secret123"},
		{name: "wrong password", status: UserStatusActive, username: "admin", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown user", status: UserStatusActive, username: "ghost", password: "Secret123", wantErr: ErrInvalidCredentials},
		{name: "disabled", status: UserStatusDisabled, username: "admin", password: "Secret123", wantErr: ErrInvalidCredentials},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(seededStore(t, "Secret123", tc.status), "secret", time.Hour)
			res, err := svc.Login(context.Background(), tc.username, tc.password)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			claims, err := ParseToken("secret", res.Token)
			if err != nil {
				t.Fatalf("parse token: %v", err)
			}
			if claims.UserID != "u1" || res.User.Role != RoleAdmin {
				t.Fatalf("unexpected login result: %+v", res)
			}
		})
	}
}

func TestChangePasswordClearsMustChange(t *testing.T) {
	store := seededStore(t, "Secret123", UserStatusActive)
	store.credentials["u1"].MustChangePassword = true
	svc := NewService(store, "secret", time.Hour)

	if err := svc.ChangePassword(context.Background(), "u1", "wrong", "Another123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "u1", "Secret123", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "u1", "Secret123", "Another123"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	cred := store.credentials["u1"]
	if cred.MustChangePassword {
		t.Fatal("expected must_change_password cleared")
	}
	if CheckPassword(cred.PasswordHash, "Another123") != nil {
		t.Fatal("expected new password to verify")
	}
}

func TestProvisionStoresOnlyHash(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("E001", "5550001", "e001@example.com", true)
	mailer := &recordingMailer{}
	p := NewProvisioner(store, mailer, "hr@example.com")

	first, err := p.Provision(context.Background(), "E001")
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if first.Username != "E001" || len(first.OneTimePassword) != 12 {
		t.Fatalf("unexpected credential: %+v", first)
	}
	cred := store.credentials["user-E001"]
	if cred.PasswordHash == first.OneTimePassword {
		t.Fatal("plaintext password stored")
	}
	if !cred.MustChangePassword {
		t.Fatal("expected must_change_password")
	}
	if CheckPassword(cred.PasswordHash, first.OneTimePassword) != nil {
		t.Fatal("hash does not match issued password")
	}
	if mailer.count() != 1 {
		t.Fatalf("expected one email, got %d", mailer.count())
	}

	second, err := p.Provision(context.Background(), "E001")
	if err != nil {
		t.Fatalf("reprovision: %v", err)
	}
	if CheckPassword(store.credentials["user-E001"].PasswordHash, first.OneTimePassword) == nil && second.OneTimePassword != first.OneTimePassword {
		t.Fatal("expected rotation to invalidate the previous password")
	}

	if _, err := p.Provision(context.Background(), "missing"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected employee not found, got %v", err)
	}
}

func TestProvisionRejectsTakenUsername(t *testing.T) {
	store := seededStore(t, "Secret123", UserStatusActive)
	store.addEmployee("admin", "5550009", "", true)
	p := NewProvisioner(store, nil, "hr@example.com")
	p.Bind = func(querier.Querier) StoreAPI { return store }

	if _, err := p.Provision(context.Background(), "admin"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("provision: expected ErrUsernameTaken, got %v", err)
	}
	if _, err := p.Enroll(context.Background(), nil, "admin"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("enroll: expected ErrUsernameTaken, got %v", err)
	}
	if store.credentials["u1"].EmployeeID != "" {
		t.Fatal("existing admin login must not be touched")
	}
}

func TestEnrollDefersMail(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("E002", "5550002", "e002@example.com", true)
	mailer := &recordingMailer{}
	p := NewProvisioner(store, mailer, "hr@example.com")
	p.Bind = func(querier.Querier) StoreAPI { return store }

	cred, err := p.Enroll(context.Background(), nil, "E002")
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if mailer.count() != 0 {
		t.Fatal("enroll must not mail before the transaction commits")
	}
	p.Deliver(context.Background(), "E002", cred)
	if mailer.count() != 1 {
		t.Fatalf("expected one email after deliver, got %d", mailer.count())
	}
}

func TestLoginRejectsDeactivatedEmployee(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("E003", "5550003", "", true)
	p := NewProvisioner(store, nil, "")
	cred, err := p.Provision(context.Background(), "E003")
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	svc := NewService(store, "secret", time.Hour)
	if _, err := svc.Login(context.Background(), "E003", cred.OneTimePassword); err != nil {
		t.Fatalf("login while active: %v", err)
	}

	store.addEmployee("E003", "5550003", "", false)
	if _, err := svc.Login(context.Background(), "E003", cred.OneTimePassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected deactivated employee to be refused, got %v", err)
	}
}

func TestSetAccountStatus(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		target  string
		status  string
		wantErr error
	}{
		{name: "disable other", actor: "u2", target: "u1", status: UserStatusDisabled},
		{name: "enable", actor: "u2", target: "u1", status: UserStatusActive},
		{name: "self disable", actor: "u1", target: "u1", status: UserStatusDisabled, wantErr: ErrSelfDisable},
		{name: "bad status", actor: "u2", target: "u1", status: "locked", wantErr: ErrInvalidStatus},
		{name: "unknown account", actor: "u2", target: "nope", status: UserStatusDisabled, wantErr: ErrCredentialNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := seededStore(t, "Secret123", UserStatusActive)
			svc := NewService(store, "secret", time.Hour)
			err := svc.SetAccountStatus(context.Background(), tc.actor, tc.target, tc.status)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && store.credentials["u1"].Status != tc.status {
				t.Fatalf("status = %s, want %s", store.credentials["u1"].Status, tc.status)
			}
		})
	}
}

func newTestOTPService(t *testing.T, store *fakeStore, now time.Time) *OTPService {
	t.Helper()
	crypto, err := cryptoutil.New("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if err != nil {
		t.Fatalf("crypto: %v", err)
	}
	svc := NewOTPService(store, crypto, &recordingMailer{}, "hr@example.com", 5*time.Minute)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSignupOTPFlow(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("E001", "5550001", "e001@example.com", true)
	now := time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)
	svc := newTestOTPService(t, store, now)
	ctx := context.Background()

	if _, err := svc.Send(ctx, PurposeSignup, "E001", "0000000"); !errors.Is(err, ErrEmployeeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}

	code, err := svc.Send(ctx, PurposeSignup, "E001", "5550001")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digit code, got %q", code)
	}
	if string(store.challenges[0].SecretEnc) == "" || strings.Contains(string(store.challenges[0].SecretEnc), code) {
		t.Fatal("expected encrypted secret")
	}

	if err := svc.SetPassword(ctx, PurposeSignup, "E001", "Secret123"); !errors.Is(err, ErrOTPNotVerified) {
		t.Fatalf("expected verification required, got %v", err)
	}

	// a code valid later in the TTL window still verifies
	svc.now = func() time.Time { return now.Add(4 * time.Minute) }
	if err := svc.Verify(ctx, PurposeSignup, "E001", code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.SetPassword(ctx, PurposeSignup, "E001", "Secret123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	cred, err := store.FindCredentialByEmployee(ctx, "E001")
	if err != nil {
		t.Fatalf("credential: %v", err)
	}
	if cred.MustChangePassword || CheckPassword(cred.PasswordHash, "Secret123") != nil {
		t.Fatalf("unexpected credential state: %+v", cred)
	}
	if store.challenges[0].ConsumedAt == nil {
		t.Fatal("expected challenge consumed")
	}
	if err := svc.SetPassword(ctx, PurposeSignup, "E001", "Secret456"); !errors.Is(err, ErrOTPNotVerified) {
		t.Fatalf("expected consumed challenge to be rejected, got %v", err)
	}
}

func TestVerifyOTPRejectsExpiredAndExhausted(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("E001", "5550001", "e001@example.com", true)
	now := time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)
	svc := newTestOTPService(t, store, now)
	ctx := context.Background()

	code, err := svc.Send(ctx, PurposeReset, "E001", "5550001")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := 0; i < maxOTPAttempts; i++ {
		if err := svc.Verify(ctx, PurposeReset, "E001", wrong); !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("expected invalid otp, got %v", err)
		}
	}
	if err := svc.Verify(ctx, PurposeReset, "E001", code); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected exhausted challenge to fail, got %v", err)
	}

	code, err = svc.Send(ctx, PurposeReset, "E001", "5550001")
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	svc.now = func() time.Time { return now.Add(6 * time.Minute) }
	if err := svc.Verify(ctx, PurposeReset, "E001", code); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected expired challenge to fail, got %v", err)
	}
}

func TestResetRequiresExistingCredential(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("E001", "5550001", "e001@example.com", true)
	now := time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)
	svc := newTestOTPService(t, store, now)
	ctx := context.Background()

	code, err := svc.Send(ctx, PurposeReset, "E001", "5550001")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := svc.Verify(ctx, PurposeReset, "E001", code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.SetPassword(ctx, PurposeReset, "E001", "Secret123"); !errors.Is(err, ErrCredentialNotFound) {
		t.Fatalf("expected credential not found, got %v", err)
	}
}

func TestOTPCodeMatchesTOTP(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("E001", "5550001", "e001@example.com", true)
	now := time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)
	svc := newTestOTPService(t, store, now)

	code, err := svc.Send(context.Background(), PurposeSignup, "E001", "5550001")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	secret, err := svc.Crypto.DecryptString(store.challenges[0].SecretEnc)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	ok, err := totp.ValidateCustom(code, secret, now, svc.opts())
	if err != nil || !ok {
		t.Fatalf("expected code to validate against stored secret: %v", err)
	}
}
