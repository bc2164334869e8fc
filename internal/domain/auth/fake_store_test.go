package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

type fakeStore struct {
	mu          sync.Mutex
	credentials map[string]*Credential
	employees   map[string]fakeEmployee
	challenges  []*Challenge
	perms       map[string]map[string]bool
}

type fakeEmployee struct {
	contact EmployeeContact
	phone   string
	active  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		credentials: map[string]*Credential{},
		employees:   map[string]fakeEmployee{},
		perms:       map[string]map[string]bool{},
	}
}

func (f *fakeStore) addEmployee(id, phone, mail string, active bool) {
	f.employees[id] = fakeEmployee{contact: EmployeeContact{ID: id, FullName: "Employee " + id, Email: mail}, phone: phone, active: active}
}

func (f *fakeStore) addCredential(c Credential) {
	cred := c
	f.credentials[c.ID] = &cred
}

// effective mirrors the store: a login linked to an inactive employee reads as disabled.
func (f *fakeStore) effective(c *Credential) Credential {
	out := *c
	if e, ok := f.employees[c.EmployeeID]; ok && !e.active {
		out.Status = UserStatusDisabled
	}
	return out
}

func (f *fakeStore) FindCredentialByUsername(_ context.Context, username string) (Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.credentials {
		if c.Username == username {
			return f.effective(c), nil
		}
	}
	return Credential{}, pgx.ErrNoRows
}

func (f *fakeStore) FindCredentialByID(_ context.Context, userID string) (Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.credentials[userID]; ok {
		return *c, nil
	}
	return Credential{}, pgx.ErrNoRows
}

func (f *fakeStore) FindCredentialByEmployee(_ context.Context, employeeID string) (Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.credentials {
		if c.EmployeeID == employeeID {
			return *c, nil
		}
	}
	return Credential{}, pgx.ErrNoRows
}

func (f *fakeStore) UpdateLastLogin(context.Context, string) error { return nil }

func (f *fakeStore) UpdatePassword(_ context.Context, userID, hash string, mustChange bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.credentials[userID]
	if !ok {
		return ErrCredentialNotFound
	}
	c.PasswordHash = hash
	c.MustChangePassword = mustChange
	return nil
}

func (f *fakeStore) UpsertEmployeeCredential(_ context.Context, employeeID, hash string, mustChange bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.credentials {
		if c.EmployeeID == employeeID {
			c.PasswordHash = hash
			c.MustChangePassword = mustChange
			c.Status = UserStatusActive
			return nil
		}
	}
	for _, c := range f.credentials {
		if c.Username == employeeID {
			return ErrUsernameTaken
		}
	}
	id := "user-" + employeeID
	f.credentials[id] = &Credential{
		ID:                 id,
		Username:           employeeID,
		PasswordHash:       hash,
		RoleID:             "role-employee",
		RoleName:           RoleEmployee,
		EmployeeID:         employeeID,
		MustChangePassword: mustChange,
		Status:             UserStatusActive,
	}
	return nil
}

func (f *fakeStore) EmployeeContact(_ context.Context, employeeID string) (EmployeeContact, error) {
	e, ok := f.employees[employeeID]
	if !ok {
		return EmployeeContact{}, ErrEmployeeNotFound
	}
	return e.contact, nil
}

func (f *fakeStore) MatchActiveEmployee(_ context.Context, employeeID, phone string) (EmployeeContact, error) {
	e, ok := f.employees[employeeID]
	if !ok || !e.active || e.phone != phone {
		return EmployeeContact{}, ErrEmployeeMismatch
	}
	return e.contact, nil
}

func (f *fakeStore) InsertChallenge(_ context.Context, employeeID, purpose string, secretEnc []byte, createdAt, expiresAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.challenges) + 1)
	f.challenges = append(f.challenges, &Challenge{
		ID:         id,
		EmployeeID: employeeID,
		Purpose:    purpose,
		SecretEnc:  append([]byte(nil), secretEnc...),
		CreatedAt:  createdAt,
		ExpiresAt:  expiresAt,
	})
	return id, nil
}

func (f *fakeStore) LatestOpenChallenge(_ context.Context, employeeID, purpose string, now time.Time) (Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.challenges) - 1; i >= 0; i-- {
		c := f.challenges[i]
		if c.EmployeeID == employeeID && c.Purpose == purpose && c.ConsumedAt == nil && c.ExpiresAt.After(now) {
			return *c, nil
		}
	}
	return Challenge{}, pgx.ErrNoRows
}

func (f *fakeStore) LatestVerifiedChallenge(_ context.Context, employeeID, purpose string) (Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.challenges) - 1; i >= 0; i-- {
		c := f.challenges[i]
		if c.EmployeeID == employeeID && c.Purpose == purpose && c.VerifiedAt != nil && c.ConsumedAt == nil {
			return *c, nil
		}
	}
	return Challenge{}, pgx.ErrNoRows
}

func (f *fakeStore) challenge(id int64) *Challenge {
	return f.challenges[id-1]
}

func (f *fakeStore) IncrementChallengeAttempts(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenge(id).Attempts++
	return nil
}

func (f *fakeStore) MarkChallengeVerified(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.challenge(id).VerifiedAt = &now
	return nil
}

func (f *fakeStore) ConsumeChallenge(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.challenge(id).ConsumedAt = &now
	return nil
}

func (f *fakeStore) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	return f.perms[roleID][permission], nil
}

func (f *fakeStore) ListAccounts(context.Context) ([]Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Account{}
	for _, c := range f.credentials {
		eff := f.effective(c)
		out = append(out, Account{ID: c.ID, Username: c.Username, Role: c.RoleName, EmployeeID: c.EmployeeID, Status: eff.Status})
	}
	return out, nil
}

func (f *fakeStore) SetAccountStatus(_ context.Context, userID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.credentials[userID]
	if !ok {
		return ErrCredentialNotFound
	}
	c.Status = status
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(_ context.Context, _, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"|"+subject+"|"+body)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

