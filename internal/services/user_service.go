package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"storefront-api/internal/apperror"
	"storefront-api/internal/db"
	"storefront-api/internal/models"

	"github.com/rs/zerolog"
)

const (
	userColumns       = "id, email, password_hash, name, phone, is_admin, created_at, updated_at"
	minPasswordLength = 8
)

var errInvalidCredentials = apperror.Unauthorized("Invalid credentials")

type UserService struct {
	store  *db.Store
	auth   *AuthService
	logger zerolog.Logger

	// Compared against when the email is unknown so both login failures cost
	// one bcrypt comparison.
	dummyHash string
}

func NewUserService(store *db.Store, auth *AuthService, logger zerolog.Logger) *UserService {
	dummyHash, err := auth.HashPassword("storefront-login-timing")
	if err != nil {
		logger.Warn().Err(err).Msg("Could not prepare dummy password hash")
	}

	return &UserService{
		store:     store,
		auth:      auth,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

// NormalizeEmail trims and lower-cases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	email := NormalizeEmail(req.Email)
	if !validEmail(email) {
		return nil, apperror.Validation("A valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperror.Validation("Password must be at least 8 characters")
	}

	var existingID int
	err := s.store.QueryOne(ctx, &existingID, "SELECT id FROM users WHERE email = ?", email)
	if err == nil {
		return nil, apperror.Validation("Email is already registered")
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, apperror.Internal("failed to check existing user", err)
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	res, err := s.store.Execute(ctx,
		"INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		email, hash, strings.TrimSpace(req.Name),
	)
	if db.IsDuplicateKey(err) {
		return nil, apperror.Validation("Email is already registered")
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating user")
		return nil, apperror.Internal("failed to create user", err)
	}

	user, err := s.GetUserByID(ctx, int(res.LastInsertID))
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Authenticate never reveals whether the email exists.
func (s *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, errInvalidCredentials
	}

	var user models.User
	err := s.store.QueryOne(ctx, &user, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	if errors.Is(err, db.ErrNotFound) {
		s.auth.VerifyPassword(req.Password, s.dummyHash)
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}

	if !s.auth.VerifyPassword(req.Password, user.PasswordHash) {
		s.logger.Warn().Int("user_id", user.ID).Msg("Failed authentication attempt")
		return nil, errInvalidCredentials
	}

	return &user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID int) (*models.User, error) {
	var user models.User
	err := s.store.QueryOne(ctx, &user, "SELECT "+userColumns+" FROM users WHERE id = ?", userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int, patch models.ProfilePatch) (*models.User, error) {
	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return nil, apperror.Validation("No profile fields to update")
	}

	clause, args := models.SetClause(assignments)
	args = append(args, userID)
	res, err := s.store.Execute(ctx, "UPDATE users SET "+clause+" WHERE id = ?", args...)
	if err != nil {
		return nil, apperror.Internal("failed to update profile", err)
	}
	if res.AffectedRows == 0 {
		return nil, apperror.NotFound("User not found")
	}

	return s.GetUserByID(ctx, userID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return apperror.Validation("Password must be at least 8 characters")
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return apperror.Validation("Current password is incorrect")
	}

	hash, err := s.auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal("failed to hash password", err)
	}

	if _, err := s.store.Execute(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, userID); err != nil {
		return apperror.Internal("failed to update password", err)
	}

	s.logger.Info().Int("user_id", userID).Msg("Password changed")
	return nil
}
