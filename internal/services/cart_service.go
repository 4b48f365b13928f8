package services

import (
	"context"
	"errors"

	"storefront-api/internal/apperror"
	"storefront-api/internal/db"
	"storefront-api/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type CartService struct {
	store  *db.Store
	logger zerolog.Logger
}

func NewCartService(store *db.Store, logger zerolog.Logger) *CartService {
	return &CartService{
		store:  store,
		logger: logger,
	}
}

func (s *CartService) List(ctx context.Context, userID int) (*models.Cart, error) {
	items := []models.CartItem{}
	err := s.store.Query(ctx, &items, `
		SELECT c.id, c.product_id, c.quantity, p.name AS product_name, p.image_url AS product_image, p.price
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = ?
		ORDER BY c.created_at ASC, c.id ASC
	`, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load cart", err)
	}

	total := decimal.Zero
	for i := range items {
		items[i].Subtotal = items[i].Price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		total = total.Add(items[i].Subtotal)
	}

	return &models.Cart{Items: items, Total: total}, nil
}

// AddItem merges into an existing line for the same product instead of
// creating a second row.
func (s *CartService) AddItem(ctx context.Context, userID int, req *models.AddCartItemRequest) error {
	if req.Quantity < 1 {
		return apperror.Validation("Quantity must be at least 1")
	}

	var status models.ProductStatus
	err := s.store.QueryOne(ctx, &status, "SELECT status FROM products WHERE id = ?", req.ProductID)
	if errors.Is(err, db.ErrNotFound) {
		return apperror.NotFound("Product not found")
	}
	if err != nil {
		return apperror.Internal("failed to load product", err)
	}
	if status != models.ProductStatusAvailable {
		return apperror.Validation("Product is not available for purchase")
	}

	_, err = s.store.Execute(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)
	`, userID, req.ProductID, req.Quantity)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Int("product_id", req.ProductID).Msg("Error adding cart item")
		return apperror.Internal("failed to add cart item", err)
	}

	return nil
}

// UpdateItem and RemoveItem carry ownership in the WHERE clause, so another
// user's item is reported exactly like a missing one.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID, quantity int) error {
	if quantity < 1 {
		return apperror.Validation("Quantity must be at least 1")
	}

	res, err := s.store.Execute(ctx,
		"UPDATE cart_items SET quantity = ? WHERE id = ? AND user_id = ?",
		quantity, itemID, userID,
	)
	if err != nil {
		return apperror.Internal("failed to update cart item", err)
	}
	if res.AffectedRows == 0 {
		return apperror.NotFound("Cart item not found")
	}
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int) error {
	res, err := s.store.Execute(ctx, "DELETE FROM cart_items WHERE id = ? AND user_id = ?", itemID, userID)
	if err != nil {
		return apperror.Internal("failed to remove cart item", err)
	}
	if res.AffectedRows == 0 {
		return apperror.NotFound("Cart item not found")
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID int) error {
	if _, err := s.store.Execute(ctx, "DELETE FROM cart_items WHERE user_id = ?", userID); err != nil {
		return apperror.Internal("failed to clear cart", err)
	}
	return nil
}
