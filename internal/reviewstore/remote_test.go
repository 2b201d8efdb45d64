package reviewstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T, handler http.HandlerFunc) *RemoteStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewRemoteStore(RemoteConfig{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return store
}

func TestRemoteConfig_Validate(t *testing.T) {
	assert.Error(t, (&RemoteConfig{}).Validate())
	assert.Error(t, (&RemoteConfig{BaseURL: "not a url"}).Validate())
	assert.NoError(t, (&RemoteConfig{BaseURL: "http://localhost:8080/api"}).Validate())
}

func TestRemoteStore_List(t *testing.T) {
	store := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/reviews", r.URL.Path)
		json.NewEncoder(w).Encode([]model.Review{{ID: "1", Nickname: "Ana", Rating: 4.5, Timestamp: 10}})
	})

	reviews, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Ana", reviews[0].Nickname)
}

func TestRemoteStore_Create(t *testing.T) {
	store := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/reviews", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var draft model.ReviewDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, model.ReviewDraft{Nickname: "Ana", Rating: 4.5, Comment: "Otimo"}, draft)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Review{
			ID: "abc", Nickname: draft.Nickname, Rating: draft.Rating, Comment: draft.Comment, Timestamp: 42,
		})
	})

	review, err := store.Create(context.Background(), model.ReviewDraft{Nickname: "Ana", Rating: 4.5, Comment: "Otimo"})
	require.NoError(t, err)
	assert.Equal(t, "abc", review.ID)
	assert.Equal(t, int64(42), review.Timestamp)
}

func TestRemoteStore_GetByID_NotFound(t *testing.T) {
	store := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reviews/missing", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Review não encontrado"}`))
	})

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestRemoteStore_DeleteIdempotent(t *testing.T) {
	var calls atomic.Int32
	store := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, store.Delete(context.Background(), "abc"))
	assert.NoError(t, store.Delete(context.Background(), "abc"))
}

func TestRemoteStore_EmptySuccessBody(t *testing.T) {
	store := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("create", func(t *testing.T) {
		review, err := store.Create(context.Background(), model.ReviewDraft{Nickname: "Ana", Rating: 4.5})
		assert.Nil(t, review)

		var terr *TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, http.StatusNoContent, terr.StatusCode)
		assert.ErrorIs(t, err, ErrTransport)
		assert.EqualError(t, err, "invalid response from review API")
	})

	t.Run("get by id", func(t *testing.T) {
		review, err := store.GetByID(context.Background(), "x")
		assert.Nil(t, review)
		assert.ErrorIs(t, err, ErrTransport)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "invalid response from review API")
	})

	t.Run("delete", func(t *testing.T) {
		assert.NoError(t, store.Delete(context.Background(), "x"))
	})
}

func TestRemoteStore_ErrorMessages(t *testing.T) {
	t.Run("server message", func(t *testing.T) {
		store := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"VALIDATION_REQUIRED","message":"Por favor, insira seu nome"}`))
		})
		_, err := store.Create(context.Background(), model.ReviewDraft{})

		var terr *TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, http.StatusBadRequest, terr.StatusCode)
		assert.Equal(t, "Por favor, insira seu nome", terr.Error())
	})

	t.Run("malformed body falls back to status", func(t *testing.T) {
		store := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`<html>oops</html>`))
		})
		_, err := store.List(context.Background())

		assert.ErrorIs(t, err, ErrTransport)
		assert.EqualError(t, err, "HTTP error, status 500")
	})
}

func TestRemoteStore_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store, err := NewRemoteStore(RemoteConfig{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = store.List(context.Background())
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, terr.StatusCode)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestRemoteStore_BreakerOpensAndFailsFast(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	store, err := NewRemoteStore(RemoteConfig{BaseURL: srv.URL, Timeout: time.Second, BreakerEnabled: true})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := store.List(context.Background())
		assert.ErrorIs(t, err, ErrTransport)
	}
	require.Equal(t, int32(5), hits.Load())

	_, err = store.List(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, int32(5), hits.Load(), "open breaker must not reach the server")
}

func TestRemoteStore_BreakerIgnoresNotFound(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	store, err := NewRemoteStore(RemoteConfig{BaseURL: srv.URL, BreakerEnabled: true})
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		_, err := store.GetByID(context.Background(), "x")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(8), hits.Load())
}
