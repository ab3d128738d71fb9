package port

import "context"

type SchemaManager interface {
	EnsureSchema(ctx context.Context) error
}

// Store is the full persistence engine. Both backends implement it, callers
// never depend on which one they hold.
type Store interface {
	SchemaManager
	CatalogRepository
	CartRepository
	OrderRepository
	UserRepository
	OrderCoordinator

	Close() error
}
