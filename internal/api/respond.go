package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leganyst/weekly-schedule/internal/schedule"
)

// Конверт ответа: {success, data, message?} — его же ждёт клиентское зеркало.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// statusFor переводит доменную ошибку в HTTP-статус.
// Всё, что не распознано, схлопывается в 500 без внутренних деталей.
func statusFor(err error) (int, string) {
	var (
		slotTaken *schedule.SlotTakenError
		conflict  *schedule.TimeConflictError
	)

	switch {
	case errors.Is(err, schedule.ErrMissingField), errors.Is(err, schedule.ErrInvalidRange):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &slotTaken), errors.As(err, &conflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, schedule.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
