package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must be at least 8 characters with upper, lower and a digit")
	ErrEmployeeMismatch   = errors.New("phone/user id mismatch or not found")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrOTPNotVerified     = errors.New("otp verification required")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrInvalidPurpose     = errors.New("invalid otp purpose")
	ErrUsernameTaken      = errors.New("username already belongs to another account")
	ErrInvalidStatus      = errors.New("status must be active or disabled")
	ErrSelfDisable        = errors.New("an account cannot disable itself")
)
