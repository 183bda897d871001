package identity

import (
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeUser = "User"

// EventTypeUserRegistered is published when an account is created
const EventTypeUserRegistered = "UserRegistered"

// UserRegisteredEvent is published when an account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(u *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, u.ID),
		UserID:          u.ID,
		Username:        u.Username,
		Role:            u.Role,
	}
}
