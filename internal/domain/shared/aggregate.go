package shared

// BaseAggregateRoot adds an optimistic-lock version. Repositories compare
// it on save and bump it when the row is written.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// NewBaseAggregateRoot creates a new aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
