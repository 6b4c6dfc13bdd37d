package contracts

import "time"

const EventTypeUserCreated = "UserCreated"

// UserCreated is published by user-service. Only the relay consumes it.
type UserCreated struct {
	EventType string    `json:"eventType"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
