package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/junaidrashid-git/fashionshop-api/models"
	"gorm.io/gorm"
)

type Form struct {
	RecipientName string               `json:"recipient_name"`
	Phone         string               `json:"phone"`
	AddressLine   string               `json:"address_line"`
	Ward          string               `json:"ward"`
	District      string               `json:"district"`
	City          string               `json:"city"`
	Note          string               `json:"note"`
	VoucherCode   string               `json:"voucher_code"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

func (f *Form) normalize() error {
	f.RecipientName = strings.TrimSpace(f.RecipientName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Note = strings.TrimSpace(f.Note)
	f.VoucherCode = strings.TrimSpace(f.VoucherCode)

	switch {
	case f.RecipientName == "":
		return fmt.Errorf("%w: recipient name is required", ErrInvalidForm)
	case f.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidForm)
	}
	m, ok := models.ParsePaymentMethod(string(f.PaymentMethod))
	if !ok {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidForm, f.PaymentMethod)
	}
	f.PaymentMethod = m
	return nil
}

// StreetLine keeps the part of a saved address before the first comma:
// "123 Nguyen Hue, District 1, HCMC" becomes "123 Nguyen Hue".
func StreetLine(address string) string {
	a := strings.TrimSpace(address)
	if i := strings.Index(a, ","); i >= 0 {
		a = a[:i]
	}
	return strings.TrimSpace(a)
}

func (s *Service) findUser(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrNotAuthenticated
	}
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// PrefilledForm seeds the checkout form from the shopper's profile.
func (s *Service) PrefilledForm(ctx context.Context, email string) (*Form, error) {
	u, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return &Form{
		RecipientName: u.FullName,
		Phone:         u.Phone,
		AddressLine:   StreetLine(u.Address),
		PaymentMethod: models.PaymentMethodCOD,
	}, nil
}
