package service

import (
	"slicecraft/internal/apperr"
	"slicecraft/internal/repositories"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

type UserServiceInterface interface {
	GetProfile(userID string) (*models.User, error)
	UpdateProfile(userID, name, email, profilePhoto string) (*models.User, error)
	ListUsers(requesterRole models.Role) ([]*models.User, error)
	UpdateUserDetails(requesterRole models.Role, userID, name, email string) (*models.User, error)
	UpdateUserRole(requesterRole models.Role, userID string, role models.Role) (*models.User, error)
	DeleteUser(requesterRole models.Role, userID string) error
}

type UserService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *logger.Logger
}

func NewUserService(userRepo repositories.UserRepositoryInterface, log *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   log.WithComponent("user-service"),
	}
}

func (s *UserService) GetProfile(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile changes the caller's own name, email or photo. Empty fields
// keep their current values.
func (s *UserService) UpdateProfile(userID, name, email, profilePhoto string) (*models.User, error) {
	if email != "" {
		taken, err := s.userRepo.EmailTakenByOther(email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("email %s is already in use", email)
		}
	}

	if err := s.userRepo.UpdateProfile(userID, name, email, profilePhoto); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", "user_id", userID)
	return s.userRepo.GetByID(userID)
}

func (s *UserService) ListUsers(requesterRole models.Role) ([]*models.User, error) {
	if requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("admin access required")
	}
	return s.userRepo.GetAll()
}

// UpdateUserDetails lets an admin edit another account's name and email.
func (s *UserService) UpdateUserDetails(requesterRole models.Role, userID, name, email string) (*models.User, error) {
	if requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("admin access required")
	}
	if name == "" && email == "" {
		return nil, apperr.Validation("no fields to update")
	}

	if email != "" {
		taken, err := s.userRepo.EmailTakenByOther(email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("email %s is already in use", email)
		}
	}

	if err := s.userRepo.UpdateProfile(userID, name, email, ""); err != nil {
		return nil, err
	}

	s.logger.Info("User details updated by admin", "user_id", userID)
	return s.userRepo.GetByID(userID)
}

func (s *UserService) UpdateUserRole(requesterRole models.Role, userID string, role models.Role) (*models.User, error) {
	if requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("admin access required")
	}
	if !models.ValidRole(role) {
		return nil, apperr.Validation("invalid role %q", role)
	}

	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		return nil, err
	}

	s.logger.Info("User role updated", "user_id", userID, "role", role)
	return s.userRepo.GetByID(userID)
}

func (s *UserService) DeleteUser(requesterRole models.Role, userID string) error {
	if requesterRole != models.RoleAdmin {
		return apperr.Forbidden("admin access required")
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return err
	}
	s.logger.Info("User deleted", "user_id", userID)
	return nil
}
