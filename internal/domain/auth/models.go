package auth

import "time"

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

const (
	PurposeSignup = "signup"
	PurposeReset  = "reset"
)

type Credential struct {
	ID                 string
	Username           string
	PasswordHash       string
	RoleID             string
	RoleName           string
	EmployeeID         string
	MustChangePassword bool
	Status             string
}

type LoginResult struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

type SessionUser struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Role               string `json:"role"`
	EmployeeID         string `json:"employeeId,omitempty"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

// ProvisionedCredential carries the plaintext password exactly once.
type ProvisionedCredential struct {
	Username        string `json:"username"`
	OneTimePassword string `json:"oneTimePassword"`
}

// Account is the admin view of a login.
type Account struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Role               string     `json:"role"`
	EmployeeID         string     `json:"employeeId,omitempty"`
	Status             string     `json:"status"`
	MustChangePassword bool       `json:"mustChangePassword"`
	LastLogin          *time.Time `json:"lastLogin,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type EmployeeContact struct {
	ID       string
	FullName string
	Email    string
}

type Challenge struct {
	ID         int64
	EmployeeID string
	Purpose    string
	SecretEnc  []byte
	ExpiresAt  time.Time
	VerifiedAt *time.Time
	ConsumedAt *time.Time
	Attempts   int
	CreatedAt  time.Time
}
