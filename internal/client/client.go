package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/leganyst/weekly-schedule/internal/schedule"
)

// Client — типизированный HTTP-клиент ядра расписания.
// Помимо обёрток над эндпоинтами умеет то же, что фронтенд:
// локально собирает эффективное расписание (оптимистичный merge
// тем же кодом, что и серверный резолвер) и сохраняет правки дня,
// раскладывая их на минимальные мутации.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError — ответ сервера со статусом вне 2xx.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// Ответы сервера приходят в конверте {success, data, message}.
type apiEnvelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type CommonTask struct {
	ID        string `json:"id"`
	Weekday   int    `json:"weekday"`
	Slot      int    `json:"slot"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type ExceptionTask struct {
	ID            string  `json:"id"`
	CommonTasksID *string `json:"common_tasks_id"`
	SlotDate      string  `json:"slot_date"`
	Status        string  `json:"status"`
	Slot          int     `json:"slot"`
	StartTime     *string `json:"start_time"`
	EndTime       *string `json:"end_time"`
}

type EffectiveSlot struct {
	Slot      int    `json:"slot"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type CreateCommonTaskRequest struct {
	Weekday   int    `json:"weekday"`
	Slot      int    `json:"slot"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type CreateExceptionTaskRequest struct {
	CommonTasksID *string `json:"common_tasks_id,omitempty"`
	SlotDate      string  `json:"slot_date"`
	Status        string  `json:"status"`
	Slot          int     `json:"slot"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
}

// ===== Обёртки над эндпоинтами =====

func (c *Client) CommonTasks(ctx context.Context, weekday *int) ([]CommonTask, error) {
	path := "/api/get-common-tasks"
	if weekday != nil {
		path += "?weekday=" + strconv.Itoa(*weekday)
	}
	return doJSON[[]CommonTask](ctx, c, http.MethodGet, path, nil)
}

func (c *Client) ExceptionTasksByDate(ctx context.Context, date string) ([]ExceptionTask, error) {
	return doJSON[[]ExceptionTask](ctx, c, http.MethodGet, "/api/get-exception-tasks?date="+url.QueryEscape(date), nil)
}

func (c *Client) EffectiveSlots(ctx context.Context, date string) ([]EffectiveSlot, error) {
	return doJSON[[]EffectiveSlot](ctx, c, http.MethodGet, "/api/get-effective-slots?date="+url.QueryEscape(date), nil)
}

func (c *Client) CreateCommonTask(ctx context.Context, req CreateCommonTaskRequest) (CommonTask, error) {
	return doJSON[CommonTask](ctx, c, http.MethodPost, "/api/create-common-tasks", req)
}

func (c *Client) CreateExceptionTask(ctx context.Context, req CreateExceptionTaskRequest) (ExceptionTask, error) {
	return doJSON[ExceptionTask](ctx, c, http.MethodPost, "/api/create-exception-tasks", req)
}

func (c *Client) DeleteExceptionTask(ctx context.Context, date string, slot int) (ExceptionTask, error) {
	path := fmt.Sprintf("/api/delete-exception-tasks?date=%s&slot=%d", url.QueryEscape(date), slot)
	return doJSON[ExceptionTask](ctx, c, http.MethodDelete, path, nil)
}

// ===== Оптимистичное зеркало резолвера =====

// EffectiveDay собирает итоговые окна даты локально: шаблон дня недели
// плюс исключения даты через общий schedule.Merge. Результат обязан
// совпадать с GET /api/get-effective-slots.
func (c *Client) EffectiveDay(ctx context.Context, date string) ([]schedule.Slot, error) {
	d, err := schedule.ParseDate(date)
	if err != nil {
		return nil, err
	}

	weekday := schedule.Weekday(d)
	common, err := c.CommonTasks(ctx, &weekday)
	if err != nil {
		return nil, err
	}

	exceptions, err := c.ExceptionTasksByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	return schedule.Merge(commonToSlots(common), exceptionsToMergeInput(exceptions)), nil
}

// EffectiveWeek — расписание недели, начинающейся с start (любой день).
// Шаблон забирается одним запросом, исключения — по датам; ключ
// результата — "YYYY-MM-DD".
func (c *Client) EffectiveWeek(ctx context.Context, start time.Time) (map[string][]schedule.Slot, error) {
	common, err := c.CommonTasks(ctx, nil)
	if err != nil {
		return nil, err
	}

	byWeekday := make(map[int][]schedule.Slot, 7)
	for _, t := range common {
		byWeekday[t.Weekday] = append(byWeekday[t.Weekday], schedule.Slot{Slot: t.Slot, Start: t.StartTime, End: t.EndTime})
	}

	week := make(map[string][]schedule.Slot, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		date := day.Format("2006-01-02")

		exceptions, err := c.ExceptionTasksByDate(ctx, date)
		if err != nil {
			return nil, err
		}

		week[date] = schedule.Merge(byWeekday[schedule.Weekday(day)], exceptionsToMergeInput(exceptions))
	}

	return week, nil
}

// ValidateLocal — предсохранительная проверка окон дня (формат, end > start,
// попарные пересечения). Авторитетная валидация всё равно серверная.
func (c *Client) ValidateLocal(slots []schedule.Slot) error {
	return schedule.ValidateDay(slots)
}

// SaveDay сравнивает правки дня с шаблоном его дня недели и шлёт
// минимальный набор мутаций:
//   - слот обнулён, но в шаблоне есть  -> исключение deleted;
//   - слота в шаблоне нет              -> новый common-слот;
//   - время отличается от шаблонного   -> исключение updated.
//
// Мутации идут последовательно; при ошибке посередине уже отправленные
// остаются применёнными — частичное сохранение здесь осознанное.
func (c *Client) SaveDay(ctx context.Context, date string, edited []schedule.Slot) error {
	d, err := schedule.ParseDate(date)
	if err != nil {
		return err
	}

	weekday := schedule.Weekday(d)
	common, err := c.CommonTasks(ctx, &weekday)
	if err != nil {
		return err
	}

	baseBySlot := make(map[int]CommonTask, len(common))
	for _, t := range common {
		baseBySlot[t.Slot] = t
	}

	for slotNumber := 1; slotNumber <= 2; slotNumber++ {
		var current *schedule.Slot
		for i := range edited {
			if edited[i].Slot == slotNumber {
				current = &edited[i]
				break
			}
		}

		base, hasBase := baseBySlot[slotNumber]

		if current == nil || isZeroSlot(*current) {
			if hasBase {
				if _, err := c.CreateExceptionTask(ctx, CreateExceptionTaskRequest{
					SlotDate: date,
					Status:   "deleted",
					Slot:     slotNumber,
				}); err != nil {
					return fmt.Errorf("save %s slot %d: %w", date, slotNumber, err)
				}
			}
			continue
		}

		if !hasBase {
			if _, err := c.CreateCommonTask(ctx, CreateCommonTaskRequest{
				Weekday:   weekday,
				Slot:      slotNumber,
				StartTime: current.Start,
				EndTime:   current.End,
			}); err != nil {
				return fmt.Errorf("save %s slot %d: %w", date, slotNumber, err)
			}
			continue
		}

		if current.Start != clip(base.StartTime) || current.End != clip(base.EndTime) {
			if _, err := c.CreateExceptionTask(ctx, CreateExceptionTaskRequest{
				SlotDate:  date,
				Status:    "updated",
				Slot:      slotNumber,
				StartTime: &current.Start,
				EndTime:   &current.End,
			}); err != nil {
				return fmt.Errorf("save %s slot %d: %w", date, slotNumber, err)
			}
		}
	}

	return nil
}

// Обнулённое окно "00:00–00:00" в правках означает «слота нет».
func isZeroSlot(s schedule.Slot) bool {
	return s.Start == "00:00" && s.End == "00:00"
}

// clip усекает "HH:MM:SS" до "HH:MM" на случай, если сервер отдаёт секунды.
func clip(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

func commonToSlots(tasks []CommonTask) []schedule.Slot {
	slots := make([]schedule.Slot, 0, len(tasks))
	for _, t := range tasks {
		slots = append(slots, schedule.Slot{Slot: t.Slot, Start: clip(t.StartTime), End: clip(t.EndTime)})
	}
	return slots
}

func exceptionsToMergeInput(tasks []ExceptionTask) []schedule.Exception {
	exceptions := make([]schedule.Exception, 0, len(tasks))
	for _, t := range tasks {
		ex := schedule.Exception{Slot: t.Slot, Deleted: t.Status == "deleted"}
		if !ex.Deleted {
			if t.StartTime == nil || t.EndTime == nil {
				continue
			}
			ex.Start = clip(*t.StartTime)
			ex.End = clip(*t.EndTime)
		}
		exceptions = append(exceptions, ex)
	}
	return exceptions
}

// ===== Транспорт =====

func doJSON[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read response: %w", err)
	}

	var env apiEnvelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return zero, &APIError{Status: resp.StatusCode}
		}
		return zero, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		return zero, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	return env.Data, nil
}
