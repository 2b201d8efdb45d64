package reviewstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
)

// Mirror is a best-effort secondary sink for newly created reviews.
// Dispatch must return immediately and never report failure.
type Mirror interface {
	Dispatch(review model.Review)
}

// NopMirror drops everything.
type NopMirror struct{}

func (NopMirror) Dispatch(model.Review) {}

// WebhookMirror forwards each review to a fixed spreadsheet webhook as form data
// with a single "data" field. The response is drained and ignored.
type WebhookMirror struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration

	wg sync.WaitGroup
}

func NewWebhookMirror(endpoint string, timeout time.Duration) *WebhookMirror {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookMirror{
		url:        endpoint,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// Dispatch launches the forward in its own goroutine and returns.
func (m *WebhookMirror) Dispatch(review model.Review) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		if err := m.send(ctx, review); err != nil {
			logger.Warn("Review mirror write discarded", map[string]interface{}{
				"review_id": review.ID,
				"error":     err.Error(),
			})
		}
	}()
}

// Wait blocks until in-flight forwards finish. Only shutdown and tests use it.
func (m *WebhookMirror) Wait() {
	m.wg.Wait()
}

func (m *WebhookMirror) send(ctx context.Context, review model.Review) error {
	payload, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMirrorFailure, err)
	}
	form := url.Values{"data": {string(payload)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMirrorFailure, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMirrorFailure, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	logger.Debug("Review mirrored", map[string]interface{}{
		"review_id": review.ID,
	})
	return nil
}
