package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/clv/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// StatusFor maps a pipeline error to an HTTP status
// 입력 데이터 문제 → 422, 모델 적합 실패 → 500
func StatusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrDataLoad), errors.Is(err, contracts.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrModelFit):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorKind short error kind for response bodies
func errorKind(err error) string {
	switch {
	case errors.Is(err, contracts.ErrDataLoad):
		return "data_load"
	case errors.Is(err, contracts.ErrParse):
		return "parse"
	case errors.Is(err, contracts.ErrModelFit):
		return "model_fit"
	default:
		return "internal"
	}
}

func respondPipelineError(w http.ResponseWriter, err error) {
	respondJSON(w, StatusFor(err), map[string]string{
		"error": err.Error(),
		"kind":  errorKind(err),
	})
}
