package services

import (
	"context"
	"errors"
	"strings"

	"storefront-api/internal/apperror"
	"storefront-api/internal/db"
	"storefront-api/internal/models"

	"github.com/rs/zerolog"
)

const productColumns = "id, name, description, category, price, image_url, stock, status, featured, created_at, updated_at"

type ProductService struct {
	store  *db.Store
	logger zerolog.Logger
}

func NewProductService(store *db.Store, logger zerolog.Logger) *ProductService {
	return &ProductService{
		store:  store,
		logger: logger,
	}
}

func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Featured != nil {
		conditions = append(conditions, "featured = ?")
		args = append(args, *filter.Featured)
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY featured DESC, created_at DESC"

	products := []models.Product{}
	if err := s.store.Query(ctx, &products, query, args...); err != nil {
		return nil, apperror.Internal("failed to list products", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	err := s.store.QueryOne(ctx, &product, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperror.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to load product", err)
	}
	return &product, nil
}

func (s *ProductService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation("Product name is required")
	}
	if req.Price.IsNegative() {
		return nil, apperror.Validation("Price cannot be negative")
	}
	if req.Stock < 0 {
		return nil, apperror.Validation("Stock cannot be negative")
	}
	if req.Status == "" {
		req.Status = models.ProductStatusAvailable
	}
	if !req.Status.Valid() {
		return nil, apperror.Validation("Invalid product status")
	}

	res, err := s.store.Execute(ctx,
		`INSERT INTO products (name, description, category, price, image_url, stock, status, featured)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(req.Name), req.Description, req.Category, req.Price,
		req.ImageURL, req.Stock, string(req.Status), req.Featured,
	)
	if err != nil {
		return nil, apperror.Internal("failed to create product", err)
	}

	s.logger.Info().Int64("product_id", res.LastInsertID).Msg("Product created")
	return s.Get(ctx, int(res.LastInsertID))
}

func (s *ProductService) Update(ctx context.Context, id int, patch models.ProductPatch) (*models.Product, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, apperror.Validation("Price cannot be negative")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, apperror.Validation("Stock cannot be negative")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperror.Validation("Invalid product status")
	}

	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return nil, apperror.Validation("No product fields to update")
	}

	clause, args := models.SetClause(assignments)
	args = append(args, id)
	res, err := s.store.Execute(ctx, "UPDATE products SET "+clause+" WHERE id = ?", args...)
	if err != nil {
		return nil, apperror.Internal("failed to update product", err)
	}
	if res.AffectedRows == 0 {
		return nil, apperror.NotFound("Product not found")
	}

	return s.Get(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id int) error {
	res, err := s.store.Execute(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return apperror.Internal("failed to delete product", err)
	}
	if res.AffectedRows == 0 {
		return apperror.NotFound("Product not found")
	}
	s.logger.Info().Int("product_id", id).Msg("Product deleted")
	return nil
}
