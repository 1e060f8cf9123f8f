package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"slicecraft/internal/apperr"
	"slicecraft/internal/notify"
	"slicecraft/internal/repositories"
	"slicecraft/internal/token"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

const (
	bcryptCost    = 12
	resetTokenTTL = time.Hour
)

type AuthServiceInterface interface {
	Register(name, email, password string) (*models.User, string, error)
	RegisterAdmin(requesterRole models.Role, name, email, password string) (*models.User, error)
	Login(email, password string) (*models.User, string, error)
	ForgotPassword(email, frontendURL string) error
	ResetPassword(resetToken, newPassword string) error
}

type AuthService struct {
	userRepo repositories.UserRepositoryInterface
	tokens   *token.Manager
	mailer   notify.Mailer
	logger   *logger.Logger
}

func NewAuthService(userRepo repositories.UserRepositoryInterface, tokens *token.Manager, mailer notify.Mailer, log *logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		logger:   log.WithComponent("auth-service"),
	}
}

// Register creates a customer account and returns it with a signed token.
func (s *AuthService) Register(name, email, password string) (*models.User, string, error) {
	user, err := s.createAccount(name, email, password, models.RoleUser)
	if err != nil {
		return nil, "", err
	}

	signed, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)
	return user, signed, nil
}

// RegisterAdmin creates an admin account. Only admins may do this.
func (s *AuthService) RegisterAdmin(requesterRole models.Role, name, email, password string) (*models.User, error) {
	if requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("admin access required")
	}

	user, err := s.createAccount(name, email, password, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Admin registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *AuthService) createAccount(name, email, password string, role models.Role) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsVerified:   true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and returns the account with a signed token.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.Validation("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", apperr.Unauthorized("invalid credentials")
		}
		return nil, "", err
	}
	if user.PasswordHash == "" {
		return nil, "", apperr.Unauthorized("account has no password login")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Login failed", "email", email)
		return nil, "", apperr.Unauthorized("invalid credentials")
	}

	signed, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return user, signed, nil
}

// ForgotPassword mails a reset link valid for one hour. The mail is sent
// synchronously so a delivery failure surfaces to the caller.
func (s *AuthService) ForgotPassword(email, frontendURL string) error {
	if email == "" {
		return apperr.Validation("email is required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %v", err)
	}
	resetToken := hex.EncodeToString(raw)

	if err := s.userRepo.SetResetToken(user.ID, resetToken, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", frontendURL, resetToken)
	if err := s.mailer.SendPasswordReset(user.Email, resetURL); err != nil {
		return fmt.Errorf("failed to send reset email: %v", err)
	}

	s.logger.Info("Password reset email sent", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *AuthService) ResetPassword(resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return apperr.Validation("reset token and new password are required")
	}

	user, err := s.userRepo.GetByResetToken(resetToken)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("invalid or expired reset token")
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}
	if err := s.userRepo.UpdatePassword(user.ID, string(hash)); err != nil {
		return err
	}
	if err := s.userRepo.ClearResetToken(user.ID); err != nil {
		return err
	}

	s.logger.Info("Password reset completed", "user_id", user.ID)
	return nil
}
