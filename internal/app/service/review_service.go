package service

import (
	"context"
	"errors"
	"math"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/internal/reviewstore"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
	"github.com/ikkim/juveboxd-backend/pkg/rating"
)

// CarouselSize is how many reviews the home page shows.
const CarouselSize = 6

// ReviewPublisher receives review changes, e.g. the live feed hub.
type ReviewPublisher interface {
	ReviewCreated(review model.Review)
	ReviewDeleted(id string)
}

type nopPublisher struct{}

func (nopPublisher) ReviewCreated(model.Review) {}
func (nopPublisher) ReviewDeleted(string)       {}

// ReviewSummary is the aggregate shown next to the carousel. Stars is the
// read-only star row for Average, one fill per slot.
type ReviewSummary struct {
	Count   int      `json:"count"`
	Average float64  `json:"average"`
	Stars   []string `json:"stars"`
}

type ReviewService struct {
	store     reviewstore.ReviewStore
	publisher ReviewPublisher
}

func NewReviewService(store reviewstore.ReviewStore, publisher ReviewPublisher) *ReviewService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &ReviewService{store: store, publisher: publisher}
}

// Submit 리뷰 등록. 검증 실패 시 저장소를 호출하지 않는다.
func (s *ReviewService) Submit(ctx context.Context, draft model.ReviewDraft) (*model.Review, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		logger.Debug("Review draft rejected", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, err
	}

	review, err := s.store.Create(ctx, draft)
	if err != nil {
		logger.Error("Failed to submit review", err, map[string]interface{}{
			"nickname": draft.Nickname,
		})
		return nil, err
	}

	logger.Info("Review submitted", map[string]interface{}{
		"review_id": review.ID,
		"rating":    review.Rating,
	})
	s.publisher.ReviewCreated(*review)
	return review, nil
}

// List returns every review, newest first.
func (s *ReviewService) List(ctx context.Context) ([]model.Review, error) {
	reviews, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	model.SortNewestFirst(reviews)
	return reviews, nil
}

// Recent 최신 리뷰 조회. 조회 실패 시 빈 목록을 반환한다.
func (s *ReviewService) Recent(ctx context.Context, limit int) []model.Review {
	reviews, err := s.List(ctx)
	if err != nil {
		logger.Warn("Failed to load reviews, showing none", map[string]interface{}{
			"error": err.Error(),
		})
		return []model.Review{}
	}
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews
}

func (s *ReviewService) Get(ctx context.Context, id string) (*model.Review, error) {
	return s.store.GetByID(ctx, id)
}

// Delete 리뷰 삭제 (없는 ID도 성공)
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": id,
		})
		return err
	}
	s.publisher.ReviewDeleted(id)
	return nil
}

// Summary returns the review count and the average rating to one decimal.
func (s *ReviewService) Summary(ctx context.Context) (*ReviewSummary, error) {
	reviews, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	summary := &ReviewSummary{Count: len(reviews)}
	if len(reviews) > 0 {
		var total float64
		for _, r := range reviews {
			total += r.Rating
		}
		summary.Average = math.Round(total/float64(len(reviews))*10) / 10
	}

	for _, slot := range rating.New(summary.Average, nil).Render() {
		summary.Stars = append(summary.Stars, slot.Fill.String())
	}
	return summary, nil
}

// IsValidationError reports whether err is a rejected draft.
func IsValidationError(err error) bool {
	var verr *model.ValidationError
	return errors.As(err, &verr)
}
