package repositories

import (
	"fmt"

	"slicecraft/internal/apperr"
	"slicecraft/models"
	"slicecraft/pkg/database"
	"slicecraft/pkg/logger"
)

type SubscriptionRepositoryInterface interface {
	GetAll() ([]*models.Subscription, error)
	Add(sub *models.Subscription) error
	Delete(id string) error
}

type SubscriptionRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewSubscriptionRepository(logger *logger.Logger, db *database.DB) *SubscriptionRepository {
	return &SubscriptionRepository{
		logger: logger.WithComponent("subscription_repository"),
		db:     db,
	}
}

func (r *SubscriptionRepository) GetAll() ([]*models.Subscription, error) {
	r.logger.Debug("Retrieving all subscribers from database")

	query := `SELECT id, email, subscribed_at FROM subscriptions ORDER BY subscribed_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to query subscribers", "error", err)
		return nil, fmt.Errorf("failed to query subscribers: %v", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub := &models.Subscription{}
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt); err != nil {
			r.logger.Error("Failed to scan subscriber", "error", err)
			return nil, fmt.Errorf("failed to scan subscriber: %v", err)
		}
		subs = append(subs, sub)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating subscriber rows", "error", err)
		return nil, fmt.Errorf("error iterating subscriber rows: %v", err)
	}

	r.logger.Info("Retrieved all subscribers", "count", len(subs))
	return subs, nil
}

func (r *SubscriptionRepository) Add(sub *models.Subscription) error {
	r.logger.Debug("Adding new subscriber to database")

	query := `INSERT INTO subscriptions (email) VALUES ($1) RETURNING id, subscribed_at`

	err := r.db.QueryRow(query, sub.Email).Scan(&sub.ID, &sub.SubscribedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("Attempted to add duplicate subscriber")
			return apperr.Conflict("email already subscribed")
		}
		r.logger.Error("Failed to add subscriber", "error", err)
		return fmt.Errorf("failed to add subscriber: %v", err)
	}

	r.logger.Info("Added new subscriber", "subscription_id", sub.ID)
	return nil
}

func (r *SubscriptionRepository) Delete(id string) error {
	r.logger.Debug("Deleting subscriber from database", "subscription_id", id)

	result, err := r.db.Exec(`DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete subscriber", "error", err, "subscription_id", id)
		return fmt.Errorf("failed to delete subscriber: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected", "error", err, "subscription_id", id)
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to delete non-existent subscriber", "subscription_id", id)
		return apperr.NotFound("subscriber with id %s not found", id)
	}

	r.logger.Info("Deleted subscriber", "subscription_id", id)
	return nil
}
