package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 잘못된 입력
	ValidationRequired     = "VALIDATION_REQUIRED"      // 필수 항목
	ValidationTooLong      = "VALIDATION_TOO_LONG"      // 너무 길음

	// ==================== 리뷰 (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"      // 리뷰 없음
	ReviewInvalidRating = "REVIEW_INVALID_RATING" // 잘못된 평점

	// ==================== 저장소 (STORE_) ====================
	StoreUnavailable     = "STORE_UNAVAILABLE"      // 저장소 조회 불가
	StorePersistenceFull = "STORE_PERSISTENCE_FULL" // 저장 공간 부족
	StoreUpstreamError   = "STORE_UPSTREAM_ERROR"   // 원격 API 오류

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR" // 서버 오류
)
