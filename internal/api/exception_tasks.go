package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/leganyst/weekly-schedule/internal/model"
	"github.com/leganyst/weekly-schedule/internal/service"
)

// Тело POST /api/create-exception-tasks.
type createExceptionTaskRequest struct {
	CommonTasksID *uuid.UUID `json:"common_tasks_id"`
	SlotDate      string     `json:"slot_date"`
	Status        string     `json:"status"`
	Slot          *int       `json:"slot"`
	StartTime     *string    `json:"start_time"`
	EndTime       *string    `json:"end_time"`
}

type exceptionTaskJSON struct {
	ID            string    `json:"id"`
	CommonTasksID *string   `json:"common_tasks_id"`
	SlotDate      string    `json:"slot_date"`
	Status        string    `json:"status"`
	Slot          int       `json:"slot"`
	StartTime     *string   `json:"start_time"`
	EndTime       *string   `json:"end_time"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type exceptionPageJSON struct {
	Items    []exceptionTaskJSON `json:"items"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	HasNext  bool                `json:"has_next"`
	HasPrev  bool                `json:"has_prev"`
	Total    int                 `json:"total"`
}

func mapExceptionTask(t *model.ExceptionTask) exceptionTaskJSON {
	out := exceptionTaskJSON{
		ID:        t.ID.String(),
		SlotDate:  time.Time(t.SlotDate).Format("2006-01-02"),
		Status:    string(t.Status),
		Slot:      t.Slot,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.CommonTaskID != nil {
		id := t.CommonTaskID.String()
		out.CommonTasksID = &id
	}
	return out
}

// POST /api/create-exception-tasks — upsert по ключу (slot_date, slot).
func (s *Server) handleCreateExceptionTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req createExceptionTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SlotDate == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "slot_date and status are required")
		return
	}
	if req.Slot == nil {
		writeError(w, http.StatusBadRequest, "slot must be an integer between 1 and 2")
		return
	}

	task, err := s.svc.UpsertExceptionTask(r.Context(), service.UpsertExceptionInput{
		CommonTaskID: req.CommonTasksID,
		SlotDate:     req.SlotDate,
		Status:       model.ExceptionStatus(req.Status),
		Slot:         *req.Slot,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: mapExceptionTask(task)})
}

// GET /api/get-exception-tasks?date=YYYY-MM-DD
func (s *Server) handleGetExceptionTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Missing required query param: date")
		return
	}

	tasks, err := s.svc.ListExceptionTasksByDate(r.Context(), date)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]exceptionTaskJSON, 0, len(tasks))
	for i := range tasks {
		out = append(out, mapExceptionTask(&tasks[i]))
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: out})
}

// GET /api/list-exception-tasks[?start_date=&end_date=&page=&page_size=]
func (s *Server) handleListExceptionTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	q := r.URL.Query()

	var from, to *string
	if raw := q.Get("start_date"); raw != "" {
		from = &raw
	}
	if raw := q.Get("end_date"); raw != "" {
		to = &raw
	}

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	result, err := s.svc.ListExceptionTasksByRange(r.Context(), from, to, page, pageSize)
	if err != nil {
		s.respondError(w, err)
		return
	}

	items := make([]exceptionTaskJSON, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, mapExceptionTask(&result.Items[i]))
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: exceptionPageJSON{
		Items:    items,
		Page:     result.Page,
		PageSize: result.PageSize,
		HasNext:  result.HasNext,
		HasPrev:  result.HasPrev,
		Total:    result.Total,
	}})
}

// DELETE /api/delete-exception-tasks?date=YYYY-MM-DD&slot=N
func (s *Server) handleDeleteExceptionTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use DELETE")
		return
	}

	q := r.URL.Query()

	date := q.Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Missing required query param: date")
		return
	}
	slot, err := strconv.Atoi(q.Get("slot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "slot must be an integer between 1 and 2")
		return
	}

	task, err := s.svc.DeleteExceptionTask(r.Context(), date, slot)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: mapExceptionTask(task)})
}
