package services

import (
	"context"
	"strings"

	"storefront-api/internal/apperror"
	"storefront-api/internal/db"
	"storefront-api/internal/models"

	"github.com/rs/zerolog"
)

// AdminService backs the back-office endpoints plus the two public capture
// forms, feedback and newsletter sign-up.
type AdminService struct {
	store  *db.Store
	logger zerolog.Logger
}

func NewAdminService(store *db.Store, logger zerolog.Logger) *AdminService {
	return &AdminService{
		store:  store,
		logger: logger,
	}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.store.Query(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY id"); err != nil {
		return nil, apperror.Internal("failed to list users", err)
	}
	return users, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, identity models.Identity, userID int) error {
	if identity.UserID == userID {
		return apperror.Validation("You cannot delete your own account")
	}

	res, err := s.store.Execute(ctx, "DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		return apperror.Internal("failed to delete user", err)
	}
	if res.AffectedRows == 0 {
		return apperror.NotFound("User not found")
	}

	s.logger.Info().Int("user_id", userID).Int("by_user", identity.UserID).Msg("User deleted")
	return nil
}

func (s *AdminService) SubmitFeedback(ctx context.Context, req *models.FeedbackRequest) error {
	email := NormalizeEmail(req.Email)
	if !validEmail(email) {
		return apperror.Validation("A valid email is required")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return apperror.Validation("Message is required")
	}

	_, err := s.store.Execute(ctx, "INSERT INTO feedback (name, email, message) VALUES (?, ?, ?)",
		strings.TrimSpace(req.Name), email, message)
	if err != nil {
		return apperror.Internal("failed to save feedback", err)
	}
	return nil
}

func (s *AdminService) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	feedback := []models.Feedback{}
	err := s.store.Query(ctx, &feedback,
		"SELECT id, name, email, message, created_at FROM feedback ORDER BY created_at DESC")
	if err != nil {
		return nil, apperror.Internal("failed to list feedback", err)
	}
	return feedback, nil
}

func (s *AdminService) DeleteFeedback(ctx context.Context, id int) error {
	return s.deleteByID(ctx, "feedback", "Feedback", id)
}

// Subscribe is idempotent; signing up twice is not an error.
func (s *AdminService) Subscribe(ctx context.Context, req *models.SubscribeRequest) error {
	email := NormalizeEmail(req.Email)
	if !validEmail(email) {
		return apperror.Validation("A valid email is required")
	}

	if _, err := s.store.Execute(ctx, "INSERT IGNORE INTO subscribers (email) VALUES (?)", email); err != nil {
		return apperror.Internal("failed to subscribe", err)
	}
	return nil
}

func (s *AdminService) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	subscribers := []models.Subscriber{}
	err := s.store.Query(ctx, &subscribers, "SELECT id, email, created_at FROM subscribers ORDER BY created_at DESC")
	if err != nil {
		return nil, apperror.Internal("failed to list subscribers", err)
	}
	return subscribers, nil
}

func (s *AdminService) DeleteSubscriber(ctx context.Context, id int) error {
	return s.deleteByID(ctx, "subscribers", "Subscriber", id)
}

func (s *AdminService) deleteByID(ctx context.Context, table, noun string, id int) error {
	res, err := s.store.Execute(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return apperror.Internal("failed to delete "+table, err)
	}
	if res.AffectedRows == 0 {
		return apperror.NotFound(noun + " not found")
	}
	return nil
}

// Stats counts revenue from paid orders only.
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	err := s.store.QueryOne(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM products) AS products,
			(SELECT COUNT(*) FROM orders) AS orders,
			(SELECT COUNT(*) FROM orders WHERE status = 'pending') AS pending_orders,
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = 'paid') AS revenue
	`)
	if err != nil {
		return nil, apperror.Internal("failed to load stats", err)
	}
	return &stats, nil
}
