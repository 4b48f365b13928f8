package services

import (
	"context"
	"testing"

	"storefront-api/internal/apperror"
	"storefront-api/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminCannotDeleteSelf(t *testing.T) {
	store, _ := newMockStore(t)
	admin := NewAdminService(store, zerolog.Nop())

	err := admin.DeleteUser(context.Background(), models.Identity{UserID: 1, IsAdmin: true}, 1)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestAdminDeleteUser(t *testing.T) {
	store, mock := newMockStore(t)
	admin := NewAdminService(store, zerolog.Nop())
	identity := models.Identity{UserID: 1, IsAdmin: true}

	mock.ExpectExec("DELETE FROM users WHERE id = \\?").WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users WHERE id = \\?").WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, admin.DeleteUser(context.Background(), identity, 2))
	err := admin.DeleteUser(context.Background(), identity, 3)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestSubscribeIsIdempotentAndNormalizesEmail(t *testing.T) {
	store, mock := newMockStore(t)
	admin := NewAdminService(store, zerolog.Nop())

	mock.ExpectExec("INSERT IGNORE INTO subscribers").
		WithArgs("ann@example.com").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT IGNORE INTO subscribers").
		WithArgs("ann@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, admin.Subscribe(context.Background(), &models.SubscribeRequest{Email: "Ann@Example.com"}))
	require.NoError(t, admin.Subscribe(context.Background(), &models.SubscribeRequest{Email: " ann@example.com"}))

	err := admin.Subscribe(context.Background(), &models.SubscribeRequest{Email: "not-an-email"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestSubmitFeedbackRequiresMessage(t *testing.T) {
	store, mock := newMockStore(t)
	admin := NewAdminService(store, zerolog.Nop())

	err := admin.SubmitFeedback(context.Background(), &models.FeedbackRequest{Email: "ann@example.com", Message: "  "})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	mock.ExpectExec("INSERT INTO feedback").
		WithArgs("Ann", "ann@example.com", "Love the lamps").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, admin.SubmitFeedback(context.Background(), &models.FeedbackRequest{
		Name: "Ann", Email: "ann@example.com", Message: "Love the lamps",
	}))
}

func TestStatsCountsPaidRevenue(t *testing.T) {
	store, mock := newMockStore(t)
	admin := NewAdminService(store, zerolog.Nop())

	mock.ExpectQuery("COALESCE\\(SUM\\(total_amount\\), 0\\) FROM orders WHERE payment_status = 'paid'").
		WillReturnRows(sqlmock.NewRows([]string{"users", "products", "orders", "pending_orders", "revenue"}).
			AddRow(3, 12, 7, 2, "410.50"))

	stats, err := admin.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Orders)
	assert.Equal(t, 2, stats.PendingOrders)
	assert.True(t, decimal.RequireFromString("410.5").Equal(stats.Revenue))
}

func TestDeleteMissingSubscriberIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	admin := NewAdminService(store, zerolog.Nop())

	mock.ExpectExec("DELETE FROM subscribers WHERE id = \\?").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 0))

	err := admin.DeleteSubscriber(context.Background(), 5)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
