package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-api/internal/apperror"
	"storefront-api/internal/db"
	"storefront-api/internal/metrics"
	"storefront-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, order_number, total_amount, status, payment_status,
	customer_name, customer_email, customer_phone,
	shipping_line1, shipping_line2, shipping_city, shipping_state, shipping_postal_code, shipping_country,
	created_at, updated_at`

type OrderService struct {
	store  *db.Store
	prefix string
	logger zerolog.Logger
}

func NewOrderService(store *db.Store, prefix string, logger zerolog.Logger) *OrderService {
	if prefix == "" {
		prefix = "ORD"
	}
	return &OrderService{
		store:  store,
		prefix: prefix,
		logger: logger,
	}
}

// newOrderNumber is <prefix>-<unix millis>-<8 upper-case alphanumerics>.
// Collisions are not re-checked; the unique index rejects the insert.
func (s *OrderService) newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%d-%s", s.prefix, time.Now().UnixMilli(), suffix)
}

type pricedProduct struct {
	ID       int                  `db:"id"`
	Name     string               `db:"name"`
	Price    decimal.Decimal      `db:"price"`
	ImageURL string               `db:"image_url"`
	Stock    int                  `db:"stock"`
	Status   models.ProductStatus `db:"status"`
}

type pricedLine struct {
	product  pricedProduct
	quantity int
	subtotal decimal.Decimal
}

// mergeLines folds repeated products into one line, keeping first-seen order.
func mergeLines(items []models.OrderLine) ([]models.OrderLine, error) {
	if len(items) == 0 {
		return nil, apperror.Validation("Order must contain at least one item")
	}

	index := make(map[int]int, len(items))
	merged := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, apperror.Validation("Quantity must be at least 1")
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, models.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return merged, nil
}

func validateCheckout(req *models.CreateOrderRequest) error {
	if !validEmail(NormalizeEmail(req.Contact.Email)) {
		return apperror.Validation("A valid contact email is required")
	}
	if strings.TrimSpace(req.Address.Line1) == "" ||
		strings.TrimSpace(req.Address.City) == "" ||
		strings.TrimSpace(req.Address.Country) == "" {
		return apperror.Validation("Shipping address requires line1, city and country")
	}
	return nil
}

// Create places an order for identity, or a guest order when identity is nil.
// Prices always come from the products table; a client total is only checked.
func (s *OrderService) Create(ctx context.Context, identity *models.Identity, req *models.CreateOrderRequest) (*models.OrderReceipt, error) {
	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	var products []pricedProduct
	err = s.store.QueryIn(ctx, &products,
		"SELECT id, name, price, image_url, stock, status FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, apperror.Internal("failed to load products", err)
	}
	byID := make(map[int]pricedProduct, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	priced := make([]pricedLine, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, apperror.Validation(fmt.Sprintf("Product %d does not exist", line.ProductID))
		}
		if product.Status != models.ProductStatusAvailable {
			return nil, apperror.Validation(fmt.Sprintf("%s is not available for purchase", product.Name))
		}
		if product.Stock < line.Quantity {
			return nil, apperror.Validation(fmt.Sprintf("Insufficient stock for %s", product.Name))
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)
		priced = append(priced, pricedLine{product: product, quantity: line.Quantity, subtotal: subtotal})
	}

	if req.Totals.Total != nil && !req.Totals.Total.Equal(total) {
		s.logger.Warn().
			Str("client_total", req.Totals.Total.String()).
			Str("server_total", total.String()).
			Msg("Rejected order with mismatched total")
		return nil, apperror.Validation("Order total does not match current prices")
	}

	var userID interface{}
	if identity != nil {
		userID = identity.UserID
	}
	orderNumber := s.newOrderNumber()

	stmts := make([]db.Statement, 0, 2*len(priced)+1)
	for _, line := range priced {
		stmts = append(stmts, db.MustAffectStmt(
			"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?",
			line.quantity, line.product.ID, line.quantity,
		))
	}
	headerIndex := len(stmts)
	stmts = append(stmts, db.Stmt(`
		INSERT INTO orders (user_id, order_number, total_amount, status, payment_status,
			customer_name, customer_email, customer_phone,
			shipping_line1, shipping_line2, shipping_city, shipping_state, shipping_postal_code, shipping_country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, orderNumber, total, string(models.OrderStatusPending), string(models.PaymentStatusUnpaid),
		strings.TrimSpace(req.Contact.Name), NormalizeEmail(req.Contact.Email), strings.TrimSpace(req.Contact.Phone),
		strings.TrimSpace(req.Address.Line1), strings.TrimSpace(req.Address.Line2), strings.TrimSpace(req.Address.City),
		strings.TrimSpace(req.Address.State), strings.TrimSpace(req.Address.PostalCode), strings.TrimSpace(req.Address.Country),
	))
	for _, line := range priced {
		stmts = append(stmts, db.Stmt(`
			INSERT INTO order_items (order_id, product_id, product_name, product_image, price, quantity, subtotal)
			SELECT id, ?, ?, ?, ?, ?, ? FROM orders WHERE order_number = ?`,
			line.product.ID, line.product.Name, line.product.ImageURL, line.product.Price,
			line.quantity, line.subtotal, orderNumber,
		))
	}

	results, err := s.store.Batch(ctx, stmts)
	if errors.Is(err, db.ErrNoRowsAffected) {
		return nil, apperror.Validation("Insufficient stock for one or more items")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("Error creating order")
		return nil, apperror.Internal("failed to create order", err)
	}

	metrics.RecordOrderCreated(identity == nil)
	s.logger.Info().
		Str("order_number", orderNumber).
		Str("total", total.String()).
		Bool("guest", identity == nil).
		Msg("Order created")

	return &models.OrderReceipt{
		ID:          int(results[headerIndex].LastInsertID),
		OrderNumber: orderNumber,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
	}, nil
}

// ownerScope appends the ownership predicate for non-admin callers.
func ownerScope(identity models.Identity, query string, args []interface{}) (string, []interface{}) {
	if identity.IsAdmin {
		return query, args
	}
	return query + " AND user_id = ?", append(args, identity.UserID)
}

func (s *OrderService) Get(ctx context.Context, identity models.Identity, id int) (*models.Order, error) {
	query, args := ownerScope(identity, "SELECT "+orderColumns+" FROM orders WHERE id = ?", []interface{}{id})

	var order models.Order
	err := s.store.QueryOne(ctx, &order, query, args...)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperror.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to load order", err)
	}

	order.Items = []models.OrderItem{}
	err = s.store.Query(ctx, &order.Items,
		`SELECT id, order_id, product_id, product_name, product_image, price, quantity, subtotal
		 FROM order_items WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, apperror.Internal("failed to load order items", err)
	}

	return &order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID int) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.store.Query(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, apperror.Internal("failed to list orders", err)
	}
	return orders, nil
}

// List returns every order, optionally filtered by status. Admin only.
func (s *OrderService) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	var args []interface{}
	if status != "" {
		if !status.Valid() {
			return nil, apperror.Validation("Invalid order status")
		}
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	orders := []models.Order{}
	if err := s.store.Query(ctx, &orders, query, args...); err != nil {
		return nil, apperror.Internal("failed to list orders", err)
	}
	return orders, nil
}

// Update lets admins change any status field. Customers may only cancel
// their own pending orders.
func (s *OrderService) Update(ctx context.Context, identity models.Identity, id int, patch models.OrderPatch) error {
	if patch.Status != nil && !patch.Status.Valid() {
		return apperror.Validation("Invalid order status")
	}
	if patch.PaymentStatus != nil && !patch.PaymentStatus.Valid() {
		return apperror.Validation("Invalid payment status")
	}

	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return apperror.Validation("No order fields to update")
	}

	if !identity.IsAdmin {
		if patch.PaymentStatus != nil || patch.Status == nil || *patch.Status != models.OrderStatusCancelled {
			return apperror.Forbidden("Customers may only cancel their orders")
		}
	}

	clause, args := models.SetClause(assignments)
	args = append(args, id)
	query, args := ownerScope(identity, "UPDATE orders SET "+clause+" WHERE id = ?", args)
	if !identity.IsAdmin {
		query += " AND status = ?"
		args = append(args, string(models.OrderStatusPending))
	}

	if patch.Status != nil && *patch.Status == models.OrderStatusCancelled {
		// Restock runs first so it still sees the previous status.
		_, err := s.store.Batch(ctx, []db.Statement{
			restockStmt(identity, id),
			db.MustAffectStmt(query, args...),
		})
		if errors.Is(err, db.ErrNoRowsAffected) {
			return apperror.NotFound("Order not found")
		}
		if err != nil {
			s.logger.Error().Err(err).Int("order_id", id).Msg("Error cancelling order")
			return apperror.Internal("failed to update order", err)
		}
	} else {
		res, err := s.store.Execute(ctx, query, args...)
		if err != nil {
			return apperror.Internal("failed to update order", err)
		}
		if res.AffectedRows == 0 {
			return apperror.NotFound("Order not found")
		}
	}

	s.logger.Info().Int("order_id", id).Int("by_user", identity.UserID).Msg("Order updated")
	return nil
}

// restockStmt returns an order's quantities to stock. Only pending and
// processing orders qualify; cancelled ones were already restocked and
// shipped or completed goods have left.
func restockStmt(identity models.Identity, id int) db.Statement {
	query := `UPDATE products p
		JOIN order_items oi ON oi.product_id = p.id
		JOIN orders o ON o.id = oi.order_id
		SET p.stock = p.stock + oi.quantity
		WHERE o.id = ? AND o.status IN (?, ?)`
	args := []interface{}{id, string(models.OrderStatusPending), string(models.OrderStatusProcessing)}
	if !identity.IsAdmin {
		query += " AND o.user_id = ?"
		args = append(args, identity.UserID)
	}
	return db.Stmt(query, args...)
}

// Delete removes an order and its lines, restocking it unless it was
// already cancelled or shipped.
func (s *OrderService) Delete(ctx context.Context, identity models.Identity, id int) error {
	itemsQuery, itemsArgs := ownerScope(identity,
		"DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE id = ?", []interface{}{id})
	itemsQuery += ")"
	orderQuery, orderArgs := ownerScope(identity, "DELETE FROM orders WHERE id = ?", []interface{}{id})

	_, err := s.store.Batch(ctx, []db.Statement{
		restockStmt(identity, id),
		db.Stmt(itemsQuery, itemsArgs...),
		db.MustAffectStmt(orderQuery, orderArgs...),
	})
	if errors.Is(err, db.ErrNoRowsAffected) {
		return apperror.NotFound("Order not found")
	}
	if err != nil {
		return apperror.Internal("failed to delete order", err)
	}

	s.logger.Info().Int("order_id", id).Int("by_user", identity.UserID).Msg("Order deleted")
	return nil
}
