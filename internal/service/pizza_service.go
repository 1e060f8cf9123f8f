package service

import (
	"slicecraft/internal/repositories"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

type PizzaServiceInterface interface {
	GetAll() ([]*models.Pizza, error)
	GetByID(id string) (*models.Pizza, error)
}

type PizzaService struct {
	pizzaRepo repositories.PizzaRepositoryInterface
	logger    *logger.Logger
}

func NewPizzaService(pizzaRepo repositories.PizzaRepositoryInterface, log *logger.Logger) *PizzaService {
	return &PizzaService{
		pizzaRepo: pizzaRepo,
		logger:    log.WithComponent("pizza-service"),
	}
}

func (s *PizzaService) GetAll() ([]*models.Pizza, error) {
	return s.pizzaRepo.GetAll()
}

func (s *PizzaService) GetByID(id string) (*models.Pizza, error) {
	return s.pizzaRepo.GetByID(id)
}
