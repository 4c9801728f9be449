package search

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ValidationError 잘못된 입력 필드 (400)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ContinuationError 알 수 없거나 만료된 커서, 또는 세션 도중 쿼리 변경 (400)
type ContinuationError struct {
	Message string
}

func (e *ContinuationError) Error() string {
	return e.Message
}

// UpstreamError 업스트림 제공자 호출 실패 (콤보 단위로 흡수되며 요청을 중단시키지 않음)
type UpstreamError struct {
	Status string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream call failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream returned status %s", e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ErrMissingCredential 업스트림 제공자 자격 증명 누락 (500, 작업 시작 전 즉시 중단)
var ErrMissingCredential = errors.New("maps provider credential is not configured")

// HTTPStatus 에러 분류를 응답 status 코드로 매핑
func HTTPStatus(err error) int {
	var ve *ValidationError
	var ce *ContinuationError
	switch {
	case errors.As(err, &ve), errors.As(err, &ce):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrMissingCredential):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
