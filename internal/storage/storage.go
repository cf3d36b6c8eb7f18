package storage

import (
	"context"

	"tokenLauncher/internal/model"
)

// TokenStore persists launched tokens. Records are written once and never updated.
type TokenStore interface {
	Insert(ctx context.Context, record *model.TokenRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.TokenRecord, error)
}

// Reconciler receives launches whose chain effect succeeded but whose record
// could not be stored.
type Reconciler interface {
	PutUnpersisted(entries []model.UnpersistedLaunch) error
}
