// Package repository defines the persisted page table contract; the
// production implementation lives in internal/repository/sqlite.go.
package repository

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/pagesync/internal/page"
)

// ErrNotFound is returned by GetByIdentifier/GetByFilename when no row matches.
var ErrNotFound = errors.New("repository: not found")

// Repository is the persisted page table contract. Save is an UPSERT keyed
// on filename; it must be atomic per-page, but no cross-page transaction is
// required of it.
type Repository interface {
	GetByIdentifier(ctx context.Context, identifier string) (page.Page, error)
	GetByFilename(ctx context.Context, filename string) (page.Page, error)
	GetAll(ctx context.Context) ([]page.Page, error)
	Save(ctx context.Context, p page.Page) error
	Delete(ctx context.Context, filename string) error
	Close() error
}
