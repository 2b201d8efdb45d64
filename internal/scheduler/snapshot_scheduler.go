package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/internal/export"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	DefaultSnapshotSpec = "0 */6 * * *"

	snapshotPrefix  = "snapshots/"
	snapshotTimeout = 2 * time.Minute
)

type ReviewLister interface {
	List(ctx context.Context) ([]model.Review, error)
}

type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
}

// SnapshotScheduler 리뷰 전체를 주기적으로 JSON/XLSX로 백업
type SnapshotScheduler struct {
	cron     *cron.Cron
	spec     string
	reviews  ReviewLister
	uploader Uploader
	now      func() time.Time
}

func NewSnapshotScheduler(spec string, reviews ReviewLister, uploader Uploader) *SnapshotScheduler {
	if spec == "" {
		spec = DefaultSnapshotSpec
	}
	return &SnapshotScheduler{
		cron:     cron.New(),
		spec:     spec,
		reviews:  reviews,
		uploader: uploader,
		now:      time.Now,
	}
}

// Start 스케줄러 시작
func (s *SnapshotScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()

		if _, err := s.Snapshot(ctx); err != nil {
			logger.Error("Scheduled review snapshot failed", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for review snapshot", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Snapshot scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop waits for a running snapshot to finish.
func (s *SnapshotScheduler) Stop() {
	logger.Info("Stopping snapshot scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Snapshot scheduler stopped", nil)
}

// Snapshot uploads the current review list once and returns the object keys.
func (s *SnapshotScheduler) Snapshot(ctx context.Context) ([]string, error) {
	reviews, err := s.reviews.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	model.SortNewestFirst(reviews)

	jsonBody, err := json.Marshal(reviews)
	if err != nil {
		return nil, err
	}
	var xlsx bytes.Buffer
	if err := export.WriteWorkbook(&xlsx, reviews); err != nil {
		return nil, err
	}

	base := snapshotPrefix + "reviews-" + s.now().UTC().Format("20060102T150405Z")
	objects := []struct {
		key         string
		contentType string
		body        []byte
	}{
		{base + ".json", "application/json", jsonBody},
		{base + ".xlsx", export.ContentType, xlsx.Bytes()},
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if err := s.uploader.Upload(ctx, obj.key, obj.contentType, obj.body); err != nil {
			return keys, err
		}
		keys = append(keys, obj.key)
	}

	logger.Info("Review snapshot uploaded", map[string]interface{}{
		"reviews": len(reviews),
		"keys":    keys,
	})
	return keys, nil
}
