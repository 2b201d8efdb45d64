package model

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MinRating        = 0.5
	MaxRating        = 5.0
	RatingStep       = 0.5
	MaxCommentLength = 300 // code points
)

// Review is a single submitted review of the show.
// Once created it is never updated, only deleted.
type Review struct {
	ID        string  `gorm:"primaryKey;size:64" json:"id"`
	Nickname  string  `gorm:"size:255;not null" json:"nickname"`
	Rating    float64 `gorm:"not null" json:"rating"`
	Comment   string  `gorm:"type:text" json:"comment"`
	Timestamp int64   `gorm:"column:timestamp_ms;not null;index" json:"timestamp"` // ms since epoch
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewDraft is the transient form state before submission.
type ReviewDraft struct {
	Nickname string  `json:"nickname"`
	Rating   float64 `json:"rating"`
	Comment  string  `json:"comment"`
}

// ValidationError is a caller-side rejection of a draft. It is raised before any
// store call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Normalize trims the nickname. The comment is kept as typed.
func (d ReviewDraft) Normalize() ReviewDraft {
	d.Nickname = strings.TrimSpace(d.Nickname)
	return d
}

// Validate checks a draft the way the submission form does.
func (d ReviewDraft) Validate() error {
	if strings.TrimSpace(d.Nickname) == "" {
		return &ValidationError{Field: "nickname", Message: "Por favor, insira seu nome"}
	}
	if d.Rating < MinRating {
		return &ValidationError{Field: "rating", Message: "Por favor, selecione pelo menos meia estrela"}
	}
	if d.Rating > MaxRating || !IsHalfStep(d.Rating) {
		return &ValidationError{Field: "rating", Message: "A avaliação deve ser entre 0,5 e 5 estrelas, em meias estrelas"}
	}
	if utf8.RuneCountInString(d.Comment) > MaxCommentLength {
		return &ValidationError{Field: "comment", Message: "O review deve ter no máximo 300 caracteres"}
	}
	return nil
}

// IsHalfStep reports whether v is a multiple of RatingStep.
func IsHalfStep(v float64) bool {
	doubled := v / RatingStep
	return doubled == math.Trunc(doubled)
}

// ClampComment cuts s to MaxCommentLength code points.
func ClampComment(s string) string {
	if utf8.RuneCountInString(s) <= MaxCommentLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxCommentLength])
}

// SortNewestFirst orders reviews by timestamp descending, in place.
func SortNewestFirst(reviews []Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Timestamp > reviews[j].Timestamp
	})
}
