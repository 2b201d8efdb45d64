package reviewstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
	"github.com/sony/gobreaker/v2"
)

// RemoteConfig configures the HTTP-backed store.
type RemoteConfig struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api
	BaseURL string

	// Timeout bounds each round-trip.
	Timeout time.Duration

	// BreakerEnabled puts a circuit breaker in front of the API. An open breaker
	// fails calls fast; it never retries.
	BreakerEnabled bool
}

// Validate checks if the configuration is valid
func (c *RemoteConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("remote review store: base URL is required")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("remote review store: invalid base URL: %w", err)
	}
	return nil
}

// RemoteStore maps each operation to one request against {base}/reviews.
type RemoteStore struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*response]
}

type response struct {
	status int
	body   []byte
}

type errorBody struct {
	Message string `json:"message"`
}

func NewRemoteStore(cfg RemoteConfig) (*RemoteStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &RemoteStore{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	if cfg.BreakerEnabled {
		s.breaker = gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
			Name:        "review-api",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
			},
			// 4xx answers mean the API is up.
			IsSuccessful: func(err error) bool {
				var terr *TransportError
				if errors.As(err, &terr) {
					return terr.StatusCode >= 400 && terr.StatusCode < 500
				}
				return err == nil
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state change", map[string]interface{}{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
			},
		})
	}
	return s, nil
}

func (s *RemoteStore) List(ctx context.Context) ([]model.Review, error) {
	var reviews []model.Review
	if err := s.call(ctx, http.MethodGet, "/reviews", nil, &reviews); err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}

func (s *RemoteStore) Create(ctx context.Context, draft model.ReviewDraft) (*model.Review, error) {
	var review model.Review
	if err := s.call(ctx, http.MethodPost, "/reviews", draft, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *RemoteStore) GetByID(ctx context.Context, id string) (*model.Review, error) {
	var review model.Review
	err := s.call(ctx, http.MethodGet, "/reviews/"+url.PathEscape(id), nil, &review)
	if isStatus(err, http.StatusNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	err := s.call(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil)
	if isStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}

func isStatus(err error, status int) bool {
	var terr *TransportError
	return errors.As(err, &terr) && terr.StatusCode == status
}

// call performs one round-trip and decodes a 2xx body into out when out is non-nil.
// An empty body is only accepted when no result is expected.
func (s *RemoteStore) call(ctx context.Context, method, path string, payload, out interface{}) error {
	do := func() (*response, error) { return s.do(ctx, method, path, payload) }

	var (
		resp *response
		err  error
	)
	if s.breaker != nil {
		resp, err = s.breaker.Execute(do)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &TransportError{Message: "review API temporarily unavailable", Err: err}
		}
	} else {
		resp, err = do()
	}
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return &TransportError{StatusCode: resp.status, Message: "invalid response from review API"}
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &TransportError{
			StatusCode: resp.status,
			Message:    "invalid response from review API",
			Err:        err,
		}
	}
	return nil
}

func (s *RemoteStore) do(ctx context.Context, method, path string, payload interface{}) (*response, error) {
	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := statusMessage(resp.StatusCode)
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		logger.Debug("Review API returned error", map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		})
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &response{status: resp.StatusCode, body: data}, nil
}
