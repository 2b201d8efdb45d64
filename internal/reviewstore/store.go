// Package reviewstore holds the review persistence contract and its backends.
//
// Every backend satisfies ReviewStore, so callers never know whether reviews live
// behind an HTTP API, in a key-value "device storage", or in a database.
package reviewstore

import (
	"context"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
)

// ReviewStore is the capability set shared by every backend.
//
// Create does not validate its draft; that is the caller's job.
// Delete of an unknown id is a no-op.
type ReviewStore interface {
	List(ctx context.Context) ([]model.Review, error)
	Create(ctx context.Context, draft model.ReviewDraft) (*model.Review, error)
	GetByID(ctx context.Context, id string) (*model.Review, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ ReviewStore = (*LocalStore)(nil)
	_ ReviewStore = (*RemoteStore)(nil)
)
