package service

import (
	"slicecraft/internal/apperr"
	"slicecraft/internal/notify"
	"slicecraft/internal/repositories"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

// UpdateStockRequest carries the editable fields of an inventory row. Both are
// pointers so a missing field fails validation instead of zeroing the row.
type UpdateStockRequest struct {
	Quantity  *float64 `json:"quantity"`
	Threshold *float64 `json:"threshold"`
}

type InventoryServiceInterface interface {
	GetAll(requesterRole models.Role) ([]*models.StockItem, error)
	GetByType(itemType models.StockType) ([]*models.StockItem, error)
	Add(requesterRole models.Role, item *models.StockItem) error
	Update(requesterRole models.Role, id string, req UpdateStockRequest) (*models.StockItem, error)
	Delete(requesterRole models.Role, id string) error
}

type InventoryService struct {
	inventoryRepo repositories.InventoryRepositoryInterface
	mailer        notify.Mailer
	logger        *logger.Logger
}

func NewInventoryService(inventoryRepo repositories.InventoryRepositoryInterface, mailer notify.Mailer, log *logger.Logger) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		mailer:        mailer,
		logger:        log.WithComponent("inventory-service"),
	}
}

func (s *InventoryService) GetAll(requesterRole models.Role) ([]*models.StockItem, error) {
	if requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("admin access required")
	}
	return s.inventoryRepo.GetAll()
}

// GetByType lists in-stock items of one ingredient type. Public, so the
// pizza builder can show what is actually available.
func (s *InventoryService) GetByType(itemType models.StockType) ([]*models.StockItem, error) {
	if !models.ValidStockType(itemType) {
		return nil, apperr.Validation("invalid inventory type %q", itemType)
	}
	return s.inventoryRepo.GetByType(itemType)
}

func (s *InventoryService) Add(requesterRole models.Role, item *models.StockItem) error {
	if requesterRole != models.RoleAdmin {
		return apperr.Forbidden("admin access required")
	}
	if err := s.inventoryRepo.Add(item); err != nil {
		return err
	}
	s.logger.Info("Stock item added", "item_type", item.ItemType, "name", item.Name, "quantity", item.Quantity)
	return nil
}

// Update restocks an item. When the new quantity sits at or below the new
// threshold a low-stock alert goes out; the update itself still succeeds.
func (s *InventoryService) Update(requesterRole models.Role, id string, req UpdateStockRequest) (*models.StockItem, error) {
	if requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("admin access required")
	}
	if req.Quantity == nil || req.Threshold == nil {
		return nil, apperr.Validation("quantity and threshold must be numbers")
	}
	if *req.Quantity < 0 || *req.Threshold < 0 {
		return nil, apperr.Validation("quantity and threshold must not be negative")
	}

	item, err := s.inventoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	item.Quantity = *req.Quantity
	item.Threshold = *req.Threshold

	if item.IsLow() {
		s.logger.Warn("Stock item at or below threshold", "item_id", id, "name", item.Name, "quantity", item.Quantity, "threshold", item.Threshold)
		go func(alert models.StockItem) {
			if err := s.mailer.SendLowStockAlert([]*models.StockItem{&alert}); err != nil {
				s.logger.Warn("Failed to send low stock alert", "item_id", alert.ID, "error", err.Error())
			}
		}(*item)
	}

	if err := s.inventoryRepo.Update(id, *req.Quantity, *req.Threshold); err != nil {
		return nil, err
	}

	s.logger.Info("Stock item updated", "item_id", id, "quantity", *req.Quantity, "threshold", *req.Threshold)
	return item, nil
}

func (s *InventoryService) Delete(requesterRole models.Role, id string) error {
	if requesterRole != models.RoleAdmin {
		return apperr.Forbidden("admin access required")
	}
	if err := s.inventoryRepo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("Stock item deleted", "item_id", id)
	return nil
}
