package port

import "context"

// UnitOfWork is a pattern that allows to run registry transitions in one transaction
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(uow UnitOfWork) error) error
	HashRegistry() HashRegistry
}
