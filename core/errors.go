package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	DocstoreErrorBadInput       = "DOCSTORE_BAD_INPUT"
	DocstoreErrorAuthFailed     = "DOCSTORE_AUTH_FAILED"
	DocstoreErrorStoreOperation = "DOCSTORE_STORE_OPERATION_FAILED"
	DocstoreErrorEncoding       = "DOCSTORE_ENCODING_FAILED"
	DocstoreErrorInternal       = "DOCSTORE_INTERNAL_ERROR"
)

func docstoreErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureDocstoreErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "assertion"), strings.Contains(msg, "token exchange"), strings.Contains(msg, "auth:"):
		return newDocstoreError(err, goerrors.CategoryAuth, DocstoreErrorAuthFailed)
	case strings.Contains(msg, "store request"), strings.Contains(msg, "store status"):
		return newDocstoreError(err, goerrors.CategoryOperation, DocstoreErrorStoreOperation)
	case strings.Contains(msg, "encode"), strings.Contains(msg, "decode"):
		return newDocstoreError(err, goerrors.CategoryOperation, DocstoreErrorEncoding)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newDocstoreError(err, goerrors.CategoryBadInput, DocstoreErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureDocstoreErrorEnvelope(mapped)
}

func newDocstoreError(cause error, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureDocstoreErrorEnvelope(
		goerrors.Wrap(cause, category, cause.Error()).
			WithTextCode(textCode),
	)
}

func ensureDocstoreErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = docstoreHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultDocstoreTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultDocstoreTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return DocstoreErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return DocstoreErrorAuthFailed
	case goerrors.CategoryOperation:
		return DocstoreErrorStoreOperation
	default:
		return DocstoreErrorInternal
	}
}

func docstoreHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
