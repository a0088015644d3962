package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/storage-platform/storage-service/pkg/mongodb"
)

// UnitOfWork implements domain.UnitOfWork on a MongoDB multi-document
// transaction. Repositories pick the session up from the context the
// driver threads through, so they need no transaction awareness of
// their own.
type UnitOfWork struct {
	client *mongodb.Client
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(client *mongodb.Client) *UnitOfWork {
	return &UnitOfWork{client: client}
}

// Execute runs fn inside a transaction, committing on nil and aborting
// on error
func (u *UnitOfWork) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	return u.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}
