package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and timestamps of a stored record
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// AggregateRoot is what services read back from an aggregate after saving it
type AggregateRoot interface {
	GetVersion() int
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds the optimistic lock version and the events
// recorded since the last save. Version starts at 1 and only repositories
// bump it.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

// AddDomainEvent queues event for publication after the save commits
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }
