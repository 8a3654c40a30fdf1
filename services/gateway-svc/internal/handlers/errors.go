package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"algolab/pkg/apperror"
	"algolab/pkg/logger"
	"algolab/pkg/ratelimit"
)

// errorBody JSON тело ошибки обычных HTTP маршрутов
type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HTTPStatus переводит прикладной код в HTTP статус
func HTTPStatus(code apperror.ErrorCode) int {
	switch code {
	case apperror.CodeInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperror.CodeRateLimited:
		return http.StatusTooManyRequests
	case apperror.CodeTimeout:
		return http.StatusGatewayTimeout
	case apperror.CodeUnavailable:
		return http.StatusServiceUnavailable
	case apperror.CodeNotFound:
		return http.StatusNotFound
	case apperror.CodeUnimplemented:
		return http.StatusNotImplemented
	case apperror.CodeCanceled:
		// nginx 499: клиент закрыл соединение
		return 499
	case apperror.CodeInvalidArgument, apperror.CodeInvalidAlgorithm,
		apperror.CodeInvalidFormat, apperror.CodeParseError:
		return http.StatusBadRequest
	}

	if apperror.IsInvalidInput(apperror.New(code, "")) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// WriteError пишет ошибку как {code, message} с заголовком X-Error-Code
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := toAppError(err)
	status := HTTPStatus(appErr.Code)

	body := errorBody{
		Code:      string(appErr.Code),
		Message:   appErr.Message,
		Field:     appErr.Field,
		RequestID: logger.RequestIDFromContext(r.Context()),
	}

	if status >= http.StatusInternalServerError {
		logger.Log.Error("Export failed", "request_id", body.RequestID, "code", body.Code, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(apperror.CodeHeader, body.Code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteRateLimited ответ для middleware.HTTPRateLimit
func WriteRateLimited(w http.ResponseWriter, r *http.Request, _ *ratelimit.LimitInfo) {
	WriteError(w, r, apperror.New(apperror.CodeRateLimited, "rate limit exceeded"))
}

func toAppError(err error) *apperror.Error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.FromContext(err)
	}
	return apperror.FromGRPC(err)
}
