package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/internal/reviewstore"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Status  int    // HTTP 상태 코드
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// ParseError maps service and store errors to a response. Transport errors keep
// the upstream message, which is already meant for the user.
func ParseError(err error) ErrorInfo {
	var verr *model.ValidationError
	var terr *reviewstore.TransportError

	switch {
	case err == nil:
		return ErrorInfo{http.StatusInternalServerError, InternalServerError, "Erro no servidor"}
	case errors.As(err, &verr):
		return ErrorInfo{http.StatusBadRequest, validationCode(verr.Field), verr.Message}
	case errors.Is(err, reviewstore.ErrNotFound):
		return ErrorInfo{http.StatusNotFound, ReviewNotFound, "Review não encontrado"}
	case errors.Is(err, reviewstore.ErrPersistenceFull):
		return ErrorInfo{http.StatusInsufficientStorage, StorePersistenceFull, "Espaço de armazenamento esgotado"}
	case errors.As(err, &terr):
		return ErrorInfo{http.StatusBadGateway, StoreUpstreamError, terr.Error()}
	case errors.Is(err, reviewstore.ErrStoreUnavailable):
		return ErrorInfo{http.StatusServiceUnavailable, StoreUnavailable, "Não foi possível carregar os reviews"}
	default:
		return ErrorInfo{http.StatusInternalServerError, InternalServerError, "Erro no servidor. Tente novamente mais tarde"}
	}
}

func validationCode(field string) string {
	switch field {
	case "nickname":
		return ValidationRequired
	case "rating":
		return ReviewInvalidRating
	case "comment":
		return ValidationTooLong
	default:
		return ValidationInvalidInput
	}
}

// ParseAndRespond 에러 파싱 후 응답
func ParseAndRespond(c *gin.Context, err error) {
	info := ParseError(err)

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		RespondWithValidationError(c, info.Code, info.Message, map[string]string{verr.Field: verr.Message})
		return
	}
	RespondWithError(c, info.Status, info.Code, info.Message)
}
