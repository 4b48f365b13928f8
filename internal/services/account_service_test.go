package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"storefront-api/internal/apperror"
	"storefront-api/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccountService(t *testing.T) (*AccountService, sqlmock.Sqlmock) {
	store, mock := newMockStore(t)
	accounts := NewAccountService(store, zerolog.Nop())
	accounts.now = func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }
	return accounts, mock
}

func TestCardTypeAndLuhn(t *testing.T) {
	cases := []struct {
		number string
		kind   string
	}{
		{"4111 1111 1111 1111", "visa"},
		{"5555-5555-5555-4444", "mastercard"},
		{"2223003122003222", "mastercard"},
		{"378282246310005", "amex"},
		{"6011111111111117", "discover"},
	}
	for _, tc := range cases {
		digits, ok := cardDigits(tc.number)
		require.True(t, ok, tc.number)
		assert.True(t, luhnValid(digits), tc.number)
		assert.Equal(t, tc.kind, cardType(digits), tc.number)
	}

	assert.False(t, luhnValid("4111111111111112"))
	_, ok := cardDigits("4111-abcd-1111-1111")
	assert.False(t, ok)
	_, ok = cardDigits("4111")
	assert.False(t, ok)
}

func TestCreatePaymentMethodStoresOnlyLastFour(t *testing.T) {
	accounts, mock := newTestAccountService(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_payment_methods SET is_default = FALSE WHERE user_id = \\?").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Exact argument matching proves the full number never reaches SQL.
	mock.ExpectExec("INSERT INTO user_payment_methods").
		WithArgs(5, "visa", "1111", "Ann Lee", 12, 2028, true).
		WillReturnResult(sqlmock.NewResult(14, 1))
	mock.ExpectCommit()

	method, err := accounts.CreatePaymentMethod(context.Background(), 5, &models.PaymentMethodRequest{
		CardNumber:  "4111 1111 1111 1111",
		HolderName:  " Ann Lee ",
		ExpiryMonth: 12,
		ExpiryYear:  2028,
		IsDefault:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 14, method.ID)
	assert.Equal(t, "1111", method.Last4)
	assert.Equal(t, "visa", method.CardType)
}

func TestCreatePaymentMethodRejectsBadInput(t *testing.T) {
	accounts, _ := newTestAccountService(t)
	ctx := context.Background()

	_, err := accounts.CreatePaymentMethod(ctx, 5, &models.PaymentMethodRequest{
		CardNumber: "4111111111111112", HolderName: "Ann", ExpiryMonth: 1, ExpiryYear: 2030,
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = accounts.CreatePaymentMethod(ctx, 5, &models.PaymentMethodRequest{
		CardNumber: "4111111111111111", HolderName: "Ann", ExpiryMonth: 2, ExpiryYear: 2026,
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, "Card has expired", apperror.PublicMessage(err))

	_, err = accounts.CreatePaymentMethod(ctx, 5, &models.PaymentMethodRequest{
		CardNumber: "4111111111111111", HolderName: "Ann", ExpiryMonth: 13, ExpiryYear: 2030,
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestSetDefaultAddressSwapsInOneTransaction(t *testing.T) {
	accounts, mock := newTestAccountService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_addresses SET is_default = FALSE WHERE user_id = ?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_addresses SET is_default = TRUE WHERE id = ? AND user_id = ?")).
		WithArgs(3, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, accounts.SetDefaultAddress(context.Background(), 5, 3))
}

func TestSetDefaultOnForeignRowRestoresPreviousDefault(t *testing.T) {
	accounts, mock := newTestAccountService(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_payment_methods SET is_default = FALSE").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE user_payment_methods SET is_default = TRUE").
		WithArgs(99, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := accounts.SetDefaultPaymentMethod(context.Background(), 5, 99)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCreateAddressWithoutDefaultSkipsClear(t *testing.T) {
	accounts, mock := newTestAccountService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_addresses").
		WithArgs(5, "Home", "Ann Lee", "1 Main St", "", "Lyon", "", "69001", "FR", "", false).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	address, err := accounts.CreateAddress(context.Background(), 5, &models.AddressRequest{
		Label: "Home", FullName: "Ann Lee", Line1: "1 Main St", City: "Lyon", PostalCode: "69001", Country: "FR",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, address.ID)
	assert.False(t, address.IsDefault)

	_, err = accounts.CreateAddress(context.Background(), 5, &models.AddressRequest{FullName: "Ann", Line1: "x"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestUpdateAddressScopesByOwnerAndCanBecomeDefault(t *testing.T) {
	accounts, mock := newTestAccountService(t)

	city := "  Paris "
	isDefault := true
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_addresses SET is_default = FALSE").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_addresses SET city = ?, is_default = ? WHERE id = ? AND user_id = ?")).
		WithArgs("Paris", true, 3, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := accounts.UpdateAddress(context.Background(), 5, 3, models.AddressPatch{City: &city, IsDefault: &isDefault})
	require.NoError(t, err)

	err = accounts.UpdateAddress(context.Background(), 5, 3, models.AddressPatch{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestDeletePaymentMethodOfAnotherUserIsNotFound(t *testing.T) {
	accounts, mock := newTestAccountService(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_payment_methods WHERE id = ? AND user_id = ?")).
		WithArgs(8, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := accounts.DeletePaymentMethod(context.Background(), 5, 8)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdatePaymentMethodRequiresFullExpiry(t *testing.T) {
	accounts, _ := newTestAccountService(t)

	month := 4
	err := accounts.UpdatePaymentMethod(context.Background(), 5, 8, models.PaymentMethodPatch{ExpiryMonth: &month})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
