package service

import (
	"regexp"

	"slicecraft/internal/apperr"
	"slicecraft/internal/repositories"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type SubscriptionServiceInterface interface {
	Subscribe(email string) (*models.Subscription, error)
	GetAll(requesterRole models.Role) ([]*models.Subscription, error)
	Delete(requesterRole models.Role, id string) error
}

type SubscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepositoryInterface
	logger           *logger.Logger
}

func NewSubscriptionService(subscriptionRepo repositories.SubscriptionRepositoryInterface, log *logger.Logger) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		logger:           log.WithComponent("subscription-service"),
	}
}

// Subscribe adds an address to the newsletter list.
func (s *SubscriptionService) Subscribe(email string) (*models.Subscription, error) {
	if !emailPattern.MatchString(email) {
		return nil, apperr.Validation("invalid email address")
	}

	sub := &models.Subscription{Email: email}
	if err := s.subscriptionRepo.Add(sub); err != nil {
		return nil, err
	}

	s.logger.Info("Newsletter subscription added", "email", email)
	return sub, nil
}

func (s *SubscriptionService) GetAll(requesterRole models.Role) ([]*models.Subscription, error) {
	if requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("admin access required")
	}
	return s.subscriptionRepo.GetAll()
}

func (s *SubscriptionService) Delete(requesterRole models.Role, id string) error {
	if requesterRole != models.RoleAdmin {
		return apperr.Forbidden("admin access required")
	}
	if err := s.subscriptionRepo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("Newsletter subscription removed", "subscription_id", id)
	return nil
}
