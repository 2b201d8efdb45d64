package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/internal/reviewstore"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
	"gorm.io/gorm"
)

// ReviewRepository is the relational review backend used by the API server.
type ReviewRepository struct {
	db      *gorm.DB
	stamper *reviewstore.Stamper
}

var _ reviewstore.ReviewStore = (*ReviewRepository)(nil)

func NewReviewRepository(db *gorm.DB, stamper *reviewstore.Stamper) *ReviewRepository {
	if stamper == nil {
		stamper = reviewstore.NewStamper()
	}
	return &ReviewRepository{db: db, stamper: stamper}
}

// List 전체 리뷰 조회 (최신순)
func (r *ReviewRepository) List(ctx context.Context) ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.WithContext(ctx).Order("timestamp_ms DESC").Find(&reviews).Error; err != nil {
		logger.Error("Failed to list reviews from database", err)
		return nil, fmt.Errorf("%w: %v", reviewstore.ErrStoreUnavailable, err)
	}
	return reviews, nil
}

func (r *ReviewRepository) Create(ctx context.Context, draft model.ReviewDraft) (*model.Review, error) {
	review := r.stamper.Stamp(draft)

	logger.Debug("Creating review in database", map[string]interface{}{
		"review_id": review.ID,
		"rating":    review.Rating,
	})

	if err := r.db.WithContext(ctx).Create(&review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"review_id": review.ID,
		})
		return nil, fmt.Errorf("%w: %v", reviewstore.ErrStoreUnavailable, err)
	}
	return &review, nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reviewstore.ErrNotFound
	}
	if err != nil {
		logger.Error("Failed to get review from database", err, map[string]interface{}{
			"review_id": id,
		})
		return nil, fmt.Errorf("%w: %v", reviewstore.ErrStoreUnavailable, err)
	}
	return &review, nil
}

// Delete 리뷰 삭제 (없는 ID는 무시)
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Review{})
	if result.Error != nil {
		logger.Error("Failed to delete review from database", result.Error, map[string]interface{}{
			"review_id": id,
		})
		return fmt.Errorf("%w: %v", reviewstore.ErrStoreUnavailable, result.Error)
	}
	logger.Debug("Review delete executed", map[string]interface{}{
		"review_id":     id,
		"rows_affected": result.RowsAffected,
	})
	return nil
}
