package unitofwork

import "context"

// RepositoryFactory hands out fresh units of work; services take one per
// request so transaction state never leaks across requests.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
