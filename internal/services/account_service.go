package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-api/internal/apperror"
	"storefront-api/internal/db"
	"storefront-api/internal/models"

	"github.com/rs/zerolog"
)

const (
	addressTable       = "user_addresses"
	paymentMethodTable = "user_payment_methods"

	addressColumns = `id, user_id, label, full_name, line1, line2, city, state, postal_code, country, phone,
		is_default, created_at`
	paymentMethodColumns = `id, user_id, card_type, last4, holder_name, expiry_month, expiry_year,
		is_default, created_at`
)

// AccountService owns a user's saved addresses and payment methods. Every
// write is scoped by (id, user_id), and each user has at most one default of
// each kind.
type AccountService struct {
	store  *db.Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewAccountService(store *db.Store, logger zerolog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// writeWithDefault runs write, preceded by clearing the user's current
// default when the written row becomes the new default. write must match a
// row or the clear is rolled back.
func (s *AccountService) writeWithDefault(ctx context.Context, table string, userID int, write db.Statement, makeDefault bool) (db.Result, error) {
	write.MustAffect = true
	stmts := []db.Statement{write}
	if makeDefault {
		stmts = []db.Statement{
			db.Stmt("UPDATE "+table+" SET is_default = FALSE WHERE user_id = ?", userID),
			write,
		}
	}

	results, err := s.store.Batch(ctx, stmts)
	if err != nil {
		return db.Result{}, err
	}
	return results[len(results)-1], nil
}

func (s *AccountService) setDefault(ctx context.Context, table string, userID, id int) error {
	_, err := s.writeWithDefault(ctx, table, userID,
		db.Stmt("UPDATE "+table+" SET is_default = TRUE WHERE id = ? AND user_id = ?", id, userID), true)
	return err
}

func (s *AccountService) deleteOwned(ctx context.Context, table string, userID, id int) (bool, error) {
	res, err := s.store.Execute(ctx, "DELETE FROM "+table+" WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	return res.AffectedRows > 0, nil
}

// updateOwned applies assignments to one of the user's rows, optionally
// switching the default in the same transaction.
func (s *AccountService) updateOwned(ctx context.Context, table string, userID, id int, assignments []models.Assignment, isDefault *bool) error {
	if isDefault != nil {
		assignments = append(assignments, models.Assignment{Column: "is_default", Value: *isDefault})
	}
	if len(assignments) == 0 {
		return apperror.Validation("No fields to update")
	}

	clause, args := models.SetClause(assignments)
	args = append(args, id, userID)
	write := db.Stmt("UPDATE "+table+" SET "+clause+" WHERE id = ? AND user_id = ?", args...)

	_, err := s.writeWithDefault(ctx, table, userID, write, isDefault != nil && *isDefault)
	return err
}

func validateAddress(req *models.AddressRequest) error {
	if strings.TrimSpace(req.FullName) == "" {
		return apperror.Validation("Full name is required")
	}
	if strings.TrimSpace(req.Line1) == "" || strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.Country) == "" {
		return apperror.Validation("Address requires line1, city and country")
	}
	return nil
}

func (s *AccountService) ListAddresses(ctx context.Context, userID int) ([]models.Address, error) {
	addresses := []models.Address{}
	err := s.store.Query(ctx, &addresses,
		"SELECT "+addressColumns+" FROM user_addresses WHERE user_id = ? ORDER BY is_default DESC, id ASC", userID)
	if err != nil {
		return nil, apperror.Internal("failed to list addresses", err)
	}
	return addresses, nil
}

func (s *AccountService) CreateAddress(ctx context.Context, userID int, req *models.AddressRequest) (*models.Address, error) {
	if err := validateAddress(req); err != nil {
		return nil, err
	}

	address := models.Address{
		UserID:     userID,
		Label:      strings.TrimSpace(req.Label),
		FullName:   strings.TrimSpace(req.FullName),
		Line1:      strings.TrimSpace(req.Line1),
		Line2:      strings.TrimSpace(req.Line2),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    strings.TrimSpace(req.Country),
		Phone:      strings.TrimSpace(req.Phone),
		IsDefault:  req.IsDefault,
	}

	res, err := s.writeWithDefault(ctx, addressTable, userID, db.Stmt(`
		INSERT INTO user_addresses (user_id, label, full_name, line1, line2, city, state, postal_code, country, phone, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, address.Label, address.FullName, address.Line1, address.Line2, address.City,
		address.State, address.PostalCode, address.Country, address.Phone, address.IsDefault,
	), address.IsDefault)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error creating address")
		return nil, apperror.Internal("failed to create address", err)
	}

	address.ID = int(res.LastInsertID)
	address.CreatedAt = s.now()
	return &address, nil
}

func (s *AccountService) UpdateAddress(ctx context.Context, userID, id int, patch models.AddressPatch) error {
	for _, a := range patch.Assignments() {
		switch a.Column {
		case "full_name", "line1", "city", "country":
			if strings.TrimSpace(a.Value.(string)) == "" {
				return apperror.Validation(a.Column + " cannot be empty")
			}
		}
	}

	err := s.updateOwned(ctx, addressTable, userID, id, patch.Assignments(), patch.IsDefault)
	if errors.Is(err, db.ErrNoRowsAffected) {
		return apperror.NotFound("Address not found")
	}
	if err != nil {
		if apperror.KindOf(err) == apperror.KindValidation {
			return err
		}
		return apperror.Internal("failed to update address", err)
	}
	return nil
}

func (s *AccountService) DeleteAddress(ctx context.Context, userID, id int) error {
	deleted, err := s.deleteOwned(ctx, addressTable, userID, id)
	if err != nil {
		return apperror.Internal("failed to delete address", err)
	}
	if !deleted {
		return apperror.NotFound("Address not found")
	}
	return nil
}

func (s *AccountService) SetDefaultAddress(ctx context.Context, userID, id int) error {
	err := s.setDefault(ctx, addressTable, userID, id)
	if errors.Is(err, db.ErrNoRowsAffected) {
		return apperror.NotFound("Address not found")
	}
	if err != nil {
		return apperror.Internal("failed to set default address", err)
	}
	s.logger.Info().Int("user_id", userID).Int("address_id", id).Msg("Default address changed")
	return nil
}

// cardDigits strips spaces and dashes and rejects anything else.
func cardDigits(number string) (string, bool) {
	var b strings.Builder
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return "", false
		}
	}
	digits := b.String()
	return digits, len(digits) >= 12 && len(digits) <= 19
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func prefixIn(digits string, width, lo, hi int) bool {
	if len(digits) < width {
		return false
	}
	n := 0
	for _, r := range digits[:width] {
		n = n*10 + int(r-'0')
	}
	return n >= lo && n <= hi
}

func cardType(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case prefixIn(digits, 2, 51, 55), prefixIn(digits, 4, 2221, 2720):
		return "mastercard"
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return "amex"
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return "discover"
	}
	return "unknown"
}

func (s *AccountService) validateExpiry(month, year int) error {
	if month < 1 || month > 12 {
		return apperror.Validation("Expiry month must be between 1 and 12")
	}
	now := s.now()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return apperror.Validation("Card has expired")
	}
	return nil
}

func (s *AccountService) ListPaymentMethods(ctx context.Context, userID int) ([]models.PaymentMethod, error) {
	methods := []models.PaymentMethod{}
	err := s.store.Query(ctx, &methods,
		"SELECT "+paymentMethodColumns+" FROM user_payment_methods WHERE user_id = ? ORDER BY is_default DESC, id ASC", userID)
	if err != nil {
		return nil, apperror.Internal("failed to list payment methods", err)
	}
	return methods, nil
}

// CreatePaymentMethod keeps only the card type and last four digits of the
// submitted number.
func (s *AccountService) CreatePaymentMethod(ctx context.Context, userID int, req *models.PaymentMethodRequest) (*models.PaymentMethod, error) {
	digits, ok := cardDigits(req.CardNumber)
	if !ok || !luhnValid(digits) {
		return nil, apperror.Validation("Invalid card number")
	}
	if strings.TrimSpace(req.HolderName) == "" {
		return nil, apperror.Validation("Card holder name is required")
	}
	if err := s.validateExpiry(req.ExpiryMonth, req.ExpiryYear); err != nil {
		return nil, err
	}

	method := models.PaymentMethod{
		UserID:      userID,
		CardType:    cardType(digits),
		Last4:       digits[len(digits)-4:],
		HolderName:  strings.TrimSpace(req.HolderName),
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		IsDefault:   req.IsDefault,
	}

	res, err := s.writeWithDefault(ctx, paymentMethodTable, userID, db.Stmt(`
		INSERT INTO user_payment_methods (user_id, card_type, last4, holder_name, expiry_month, expiry_year, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, method.CardType, method.Last4, method.HolderName, method.ExpiryMonth, method.ExpiryYear, method.IsDefault,
	), method.IsDefault)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error creating payment method")
		return nil, apperror.Internal("failed to create payment method", err)
	}

	method.ID = int(res.LastInsertID)
	method.CreatedAt = s.now()
	return &method, nil
}

func (s *AccountService) UpdatePaymentMethod(ctx context.Context, userID, id int, patch models.PaymentMethodPatch) error {
	if patch.HolderName != nil && strings.TrimSpace(*patch.HolderName) == "" {
		return apperror.Validation("Card holder name cannot be empty")
	}
	if patch.ExpiryMonth != nil || patch.ExpiryYear != nil {
		if patch.ExpiryMonth == nil || patch.ExpiryYear == nil {
			return apperror.Validation("Expiry month and year must be updated together")
		}
		if err := s.validateExpiry(*patch.ExpiryMonth, *patch.ExpiryYear); err != nil {
			return err
		}
	}

	err := s.updateOwned(ctx, paymentMethodTable, userID, id, patch.Assignments(), patch.IsDefault)
	if errors.Is(err, db.ErrNoRowsAffected) {
		return apperror.NotFound("Payment method not found")
	}
	if err != nil {
		if apperror.KindOf(err) == apperror.KindValidation {
			return err
		}
		return apperror.Internal("failed to update payment method", err)
	}
	return nil
}

func (s *AccountService) DeletePaymentMethod(ctx context.Context, userID, id int) error {
	deleted, err := s.deleteOwned(ctx, paymentMethodTable, userID, id)
	if err != nil {
		return apperror.Internal("failed to delete payment method", err)
	}
	if !deleted {
		return apperror.NotFound("Payment method not found")
	}
	return nil
}

func (s *AccountService) SetDefaultPaymentMethod(ctx context.Context, userID, id int) error {
	err := s.setDefault(ctx, paymentMethodTable, userID, id)
	if errors.Is(err, db.ErrNoRowsAffected) {
		return apperror.NotFound("Payment method not found")
	}
	if err != nil {
		return apperror.Internal("failed to set default payment method", err)
	}
	s.logger.Info().Int("user_id", userID).Int("payment_method_id", id).Msg("Default payment method changed")
	return nil
}
