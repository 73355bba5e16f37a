package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"zennovel/internal/library"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrIngestion  = errors.New("ingestion error")
	ErrInternal   = errors.New("internal error")
)

// Wrap builds an error message that includes service context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above; a nil marker tags the error as
// ErrInternal. Errors carrying the store's not-found sentinel are always
// classified as ErrNotFound.
func Wrap(marker error, scope, operation, message string, err error) error {
	detail := buildDetail(scope, operation, message)
	if marker == nil {
		marker = ErrInternal
	}
	if errors.Is(err, library.ErrNotFound) {
		marker = ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a service error to the response status the handler should
// emit.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func buildDetail(scope, operation, message string) string {
	parts := make([]string, 0, 3)
	if scope = strings.TrimSpace(scope); scope != "" {
		parts = append(parts, scope)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
