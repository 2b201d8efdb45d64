package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 표준 에러 응답 구조
type ErrorResponse struct {
	Error   string `json:"error"`   // 에러 코드 (프론트엔드에서 매핑용)
	Message string `json:"message"` // 사용자 친화적 메시지
}

// RespondWithError 에러 응답 헬퍼
// statusCode: HTTP 상태 코드
// errorCode: 에러 코드 상수 (codes.go 참조)
// message: 사용자에게 보여질 메시지
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// 자주 사용하는 에러 응답 단축 함수들

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Erro no servidor. Tente novamente mais tarde"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError 검증 에러 (필드별 오류 포함)
type ValidationError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"` // 필드별 오류 메시지
}

func RespondWithValidationError(c *gin.Context, errorCode, message string, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Error:   errorCode,
		Message: message,
		Fields:  fields,
	})
}
