package lookups

import (
	"context"
	"strings"

	cryptoutil "paydesk/internal/platform/crypto"
)

// Service exposes the store's CRUD and adds value checks and encryption of
// bank account numbers.
type Service struct {
	*Store
	Crypto *cryptoutil.Service
}

func NewService(store *Store, crypto *cryptoutil.Service) *Service {
	return &Service{Store: store, Crypto: crypto}
}

func maskLast4(last4 string) string {
	if last4 == "" {
		return ""
	}
	return "****" + last4
}

func (s *Service) CreatePayComponent(ctx context.Context, p PayComponent) (PayComponent, error) {
	if err := ValidatePayComponent(p); err != nil {
		return PayComponent{}, err
	}
	return s.Store.CreatePayComponent(ctx, p)
}

func (s *Service) UpdatePayComponent(ctx context.Context, id int64, p PayComponent) (PayComponent, error) {
	if err := ValidatePayComponent(p); err != nil {
		return PayComponent{}, err
	}
	return s.Store.UpdatePayComponent(ctx, id, p)
}

func (s *Service) CreateTaxSlab(ctx context.Context, t TaxSlab) (TaxSlab, error) {
	if err := ValidateTaxSlab(t); err != nil {
		return TaxSlab{}, err
	}
	return s.Store.CreateTaxSlab(ctx, t)
}

func (s *Service) UpdateTaxSlab(ctx context.Context, id int64, t TaxSlab) (TaxSlab, error) {
	if err := ValidateTaxSlab(t); err != nil {
		return TaxSlab{}, err
	}
	return s.Store.UpdateTaxSlab(ctx, id, t)
}

func (s *Service) CreatePayrollSetting(ctx context.Context, p PayrollSetting) (PayrollSetting, error) {
	if err := ValidatePayrollSetting(p); err != nil {
		return PayrollSetting{}, err
	}
	return s.Store.CreatePayrollSetting(ctx, p)
}

func (s *Service) UpdatePayrollSetting(ctx context.Context, id int64, p PayrollSetting) (PayrollSetting, error) {
	if err := ValidatePayrollSetting(p); err != nil {
		return PayrollSetting{}, err
	}
	return s.Store.UpdatePayrollSetting(ctx, id, p)
}

func (s *Service) sealAccount(account string) ([]byte, string, error) {
	account = strings.TrimSpace(account)
	enc, err := s.Crypto.EncryptString(account)
	if err != nil {
		return nil, "", err
	}
	return enc, cryptoutil.Last4(account), nil
}

func (s *Service) CreateBankDetail(ctx context.Context, b BankDetail) (BankDetail, error) {
	enc, last4, err := s.sealAccount(b.AccountNumber)
	if err != nil {
		return BankDetail{}, err
	}
	return s.Store.CreateBankDetail(ctx, b, enc, last4)
}

func (s *Service) UpdateBankDetail(ctx context.Context, id int64, b BankDetail) (BankDetail, error) {
	enc, last4, err := s.sealAccount(b.AccountNumber)
	if err != nil {
		return BankDetail{}, err
	}
	return s.Store.UpdateBankDetail(ctx, id, b, enc, last4)
}
