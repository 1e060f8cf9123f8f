package models

import "time"

// Subscription is a newsletter signup.
type Subscription struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}
