package notifications

import (
	"context"
	"errors"
	"testing"
)

type memStore struct {
	StoreAPI
	created []string
	emails  map[string]string
}

func (m *memStore) Create(_ context.Context, employeeID, ntype, _, _ string) error {
	m.created = append(m.created, employeeID+":"+ntype)
	return nil
}

func (m *memStore) EmployeeEmail(_ context.Context, employeeID string) (string, error) {
	address, ok := m.emails[employeeID]
	if !ok {
		return "", errors.New("no rows")
	}
	return address, nil
}

type sentMail struct{ to, subject string }

type captureMailer struct {
	sent []sentMail
	err  error
}

func (c *captureMailer) Send(_ context.Context, _, to, subject, _ string) error {
	c.sent = append(c.sent, sentMail{to: to, subject: subject})
	return c.err
}

func TestNotify(t *testing.T) {
	cases := []struct {
		name     string
		employee string
		mailErr  error
		wantMail int
	}{
		{"mails known address", "E001", nil, 1},
		{"skips missing address", "E404", nil, 0},
		{"mail failure is not fatal", "E001", errors.New("smtp down"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{emails: map[string]string{"E001": "asha@example.com"}}
			mailer := &captureMailer{err: tc.mailErr}
			svc := New(store, mailer, "payroll@example.com")

			if err := svc.Notify(context.Background(), tc.employee, TypeLeaveApproved, "Leave approved", "ok"); err != nil {
				t.Fatalf("notify: %v", err)
			}
			if len(store.created) != 1 || store.created[0] != tc.employee+":"+TypeLeaveApproved {
				t.Fatalf("created = %v", store.created)
			}
			if len(mailer.sent) != tc.wantMail {
				t.Fatalf("sent = %v, want %d", mailer.sent, tc.wantMail)
			}
		})
	}
}

func TestNotifyWithoutMailer(t *testing.T) {
	store := &memStore{}
	if err := New(store, nil, "").Notify(context.Background(), "E001", TypePayslipPublished, "Payslip", "ready"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created = %v", store.created)
	}
}
