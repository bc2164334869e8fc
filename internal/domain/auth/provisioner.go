package auth

import (
	"context"
	"fmt"
	"log/slog"

	"paydesk/internal/platform/email"
	"paydesk/internal/platform/querier"
)

// Provisioner issues one-time passwords for employee credentials.
type Provisioner struct {
	Store  StoreAPI
	Mailer email.Mailer
	From   string
	// Bind returns a store running on q, typically a transaction.
	Bind func(q querier.Querier) StoreAPI
}

func NewProvisioner(store StoreAPI, mailer email.Mailer, from string) *Provisioner {
	return &Provisioner{
		Store:  store,
		Mailer: mailer,
		From:   from,
		Bind:   func(q querier.Querier) StoreAPI { return NewStore(q) },
	}
}

// Provision creates or rotates the credential of an existing employee and
// mails the password. The password is not stored anywhere in plaintext.
func (p *Provisioner) Provision(ctx context.Context, employeeID string) (ProvisionedCredential, error) {
	if _, err := p.Store.EmployeeContact(ctx, employeeID); err != nil {
		return ProvisionedCredential{}, err
	}
	cred, err := issue(ctx, p.Store, employeeID)
	if err != nil {
		return ProvisionedCredential{}, err
	}
	p.Deliver(ctx, employeeID, cred)
	return cred, nil
}

// Enroll stores a fresh credential through tx so it commits or rolls back
// with the employee row. Call Deliver once the transaction commits.
func (p *Provisioner) Enroll(ctx context.Context, tx querier.Querier, employeeID string) (ProvisionedCredential, error) {
	return issue(ctx, p.Bind(tx), employeeID)
}

// Deliver mails the one-time password when the employee has an address.
// Failures are logged; the caller still returns the password.
func (p *Provisioner) Deliver(ctx context.Context, employeeID string, cred ProvisionedCredential) {
	if p.Mailer == nil {
		return
	}
	contact, err := p.Store.EmployeeContact(ctx, employeeID)
	if err != nil || contact.Email == "" {
		return
	}
	body := fmt.Sprintf("Hello %s,\n\nYour payroll portal username is %s and your one-time password is %s.\nYou will be asked to change it after signing in.\n", contact.FullName, cred.Username, cred.OneTimePassword)
	if err := p.Mailer.Send(ctx, p.From, contact.Email, "Your payroll portal credentials", body); err != nil {
		slog.Warn("credential email failed", "employeeId", employeeID, "err", err)
	}
}

func issue(ctx context.Context, store StoreAPI, employeeID string) (ProvisionedCredential, error) {
	password, err := GenerateOneTimePassword()
	if err != nil {
		return ProvisionedCredential{}, fmt.Errorf("generate password: %w", err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return ProvisionedCredential{}, fmt.Errorf("hash password: %w", err)
	}
	if err := store.UpsertEmployeeCredential(ctx, employeeID, hash, true); err != nil {
		return ProvisionedCredential{}, fmt.Errorf("store credential: %w", err)
	}
	return ProvisionedCredential{Username: employeeID, OneTimePassword: password}, nil
}
