package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/leganyst/weekly-schedule/internal/model"
)

// Тело POST /api/create-common-tasks.
// Указатели отличают «поле не прислали» от нулевого значения.
type createCommonTaskRequest struct {
	Weekday   *int    `json:"weekday"`
	Slot      *int    `json:"slot"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type commonTaskJSON struct {
	ID        string    `json:"id"`
	Weekday   int       `json:"weekday"`
	Slot      int       `json:"slot"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type effectiveSlotJSON struct {
	Slot      int    `json:"slot"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func mapCommonTask(t *model.CommonTask) commonTaskJSON {
	return commonTaskJSON{
		ID:        t.ID.String(),
		Weekday:   t.Weekday,
		Slot:      t.Slot,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// POST /api/create-common-tasks
func (s *Server) handleCreateCommonTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req createCommonTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Weekday == nil || req.Slot == nil || req.StartTime == nil || req.EndTime == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: weekday, start_time, end_time, slot")
		return
	}

	task, err := s.svc.CreateCommonTask(r.Context(), *req.Weekday, *req.Slot, *req.StartTime, *req.EndTime)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: mapCommonTask(task)})
}

// GET /api/get-common-tasks[?weekday=N]
func (s *Server) handleGetCommonTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	var weekday *int
	if raw := r.URL.Query().Get("weekday"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "weekday must be an integer between 0 and 6")
			return
		}
		weekday = &day
	}

	tasks, err := s.svc.ListCommonTasks(r.Context(), weekday)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]commonTaskJSON, 0, len(tasks))
	for i := range tasks {
		out = append(out, mapCommonTask(&tasks[i]))
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: out})
}

// GET /api/get-effective-slots?date=YYYY-MM-DD
func (s *Server) handleGetEffectiveSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Missing required query param: date")
		return
	}

	slots, err := s.svc.EffectiveSlots(r.Context(), date)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]effectiveSlotJSON, 0, len(slots))
	for _, sl := range slots {
		out = append(out, effectiveSlotJSON{Slot: sl.Slot, StartTime: sl.Start, EndTime: sl.End})
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    out,
		Message: "Effective slots for " + date,
	})
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	writeError(w, status, message)
}
