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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{
	"id", "name", "description", "category", "price", "image_url", "stock", "status", "featured", "created_at", "updated_at",
}

func TestListProductsAppliesFilters(t *testing.T) {
	store, mock := newMockStore(t)
	products := NewProductService(store, zerolog.Nop())

	now := time.Now()
	featured := true
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE category = ? AND status = ? AND featured = ?")).
		WithArgs("chairs", "available", true).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(1, "Teak Chair", "", "chairs", "129.90", "chair.jpg", 4, "available", true, now, now))

	list, err := products.List(context.Background(), models.ProductFilter{
		Category: "chairs",
		Status:   models.ProductStatusAvailable,
		Featured: &featured,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.RequireFromString("129.9").Equal(list[0].Price))
}

func TestGetMissingProductIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	products := NewProductService(store, zerolog.Nop())

	mock.ExpectQuery("FROM products WHERE id = \\?").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	_, err := products.Get(context.Background(), 404)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdateProductUsesOnlyPatchedColumns(t *testing.T) {
	store, mock := newMockStore(t)
	products := NewProductService(store, zerolog.Nop())

	now := time.Now()
	stock := 0
	status := models.ProductStatusOutOfStock
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = ?, status = ? WHERE id = ?")).
		WithArgs(0, "out-of-stock", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM products WHERE id = \\?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(1, "Teak Chair", "", "chairs", "129.90", "", 0, "out-of-stock", false, now, now))

	product, err := products.Update(context.Background(), 1, models.ProductPatch{Stock: &stock, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOutOfStock, product.Status)
}

func TestProductValidation(t *testing.T) {
	store, _ := newMockStore(t)
	products := NewProductService(store, zerolog.Nop())
	ctx := context.Background()

	_, err := products.Create(ctx, &models.CreateProductRequest{Name: " ", Price: decimal.NewFromInt(1)})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = products.Create(ctx, &models.CreateProductRequest{Name: "Lamp", Price: decimal.NewFromInt(-1)})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = products.Create(ctx, &models.CreateProductRequest{Name: "Lamp", Status: "sold"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = products.Update(ctx, 1, models.ProductPatch{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestDeleteMissingProductIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	products := NewProductService(store, zerolog.Nop())

	mock.ExpectExec("DELETE FROM products WHERE id = \\?").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := products.Delete(context.Background(), 9)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
