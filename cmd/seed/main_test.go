package main

import (
	"context"
	"strings"
	"unicode/utf8"
	"testing"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/internal/app/service"
	"github.com/ikkim/juveboxd-backend/internal/reviewstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportReviews(t *testing.T) {
	store := reviewstore.NewLocalStore(reviewstore.NewMemoryStorage(0), nil, nil)
	svc := service.NewReviewService(store, nil)

	imported, skipped := importReviews(context.Background(), svc, []model.Review{
		{ID: "sheet-1", Nickname: "Ana", Rating: 4.5, Comment: "Lindo"},
		{Nickname: "", Rating: 3},
		{Nickname: "Bia", Rating: 0},
		{Nickname: "Caio", Rating: 2, Comment: strings.Repeat("é", 400)},
	})
	assert.Equal(t, 2, imported)
	assert.Equal(t, 2, skipped)

	reviews, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	for _, r := range reviews {
		assert.NotEqual(t, "sheet-1", r.ID)
		assert.LessOrEqual(t, utf8.RuneCountInString(r.Comment), model.MaxCommentLength)
	}
}
