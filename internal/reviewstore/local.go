package reviewstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
)

// StorageKey is the single storage entry holding the whole review collection.
const StorageKey = "juveboxd_reviews"

// LocalStore keeps the collection as one JSON array under StorageKey and rewrites
// it on every mutation. Each successful Create is also handed to the mirror.
//
// Mutations through one LocalStore are serialized. Two LocalStores (or processes)
// sharing the same Storage are not: concurrent writers can still lose updates.
type LocalStore struct {
	storage Storage
	mirror  Mirror
	stamper *Stamper

	mu sync.Mutex
}

// NewLocalStore wires a store over storage. A nil mirror disables mirroring and
// a nil stamper uses the wall clock.
func NewLocalStore(storage Storage, mirror Mirror, stamper *Stamper) *LocalStore {
	if mirror == nil {
		mirror = NopMirror{}
	}
	if stamper == nil {
		stamper = NewStamper()
	}
	return &LocalStore{storage: storage, mirror: mirror, stamper: stamper}
}

func (s *LocalStore) load(ctx context.Context) ([]model.Review, error) {
	raw, ok, err := s.storage.GetItem(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok || raw == "" {
		return []model.Review{}, nil
	}

	var reviews []model.Review
	if err := json.Unmarshal([]byte(raw), &reviews); err != nil {
		return nil, fmt.Errorf("%w: corrupted review data: %v", ErrStoreUnavailable, err)
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}

func (s *LocalStore) save(ctx context.Context, reviews []model.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("failed to encode reviews: %w", err)
	}
	return s.storage.SetItem(ctx, StorageKey, string(data))
}

func (s *LocalStore) List(ctx context.Context) ([]model.Review, error) {
	return s.load(ctx)
}

func (s *LocalStore) Create(ctx context.Context, draft model.ReviewDraft) (*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	review := s.stamper.Stamp(draft)
	reviews = append([]model.Review{review}, reviews...)

	if err := s.save(ctx, reviews); err != nil {
		logger.Error("Failed to persist review", err, map[string]interface{}{
			"review_id": review.ID,
			"count":     len(reviews),
		})
		return nil, err
	}

	// Detached: the caller never learns how the mirror write went.
	s.mirror.Dispatch(review)

	return &review, nil
}

func (s *LocalStore) GetByID(ctx context.Context, id string) (*model.Review, error) {
	reviews, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		if reviews[i].ID == id {
			return &reviews[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := reviews[:0]
	for _, r := range reviews {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(reviews) {
		return nil
	}
	return s.save(ctx, kept)
}

// Export returns the raw stored value, exactly as persisted.
func (s *LocalStore) Export(ctx context.Context) (string, error) {
	raw, ok, err := s.storage.GetItem(ctx, StorageKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return "[]", nil
	}
	return raw, nil
}
