package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/leganyst/weekly-schedule/internal/model"
	"github.com/leganyst/weekly-schedule/internal/repository"
	"github.com/leganyst/weekly-schedule/internal/schedule"
)

// ScheduleService — операции над недельным шаблоном и per-date исключениями.
// Валидация всегда идёт до первой записи; гонку «двое прошли валидацию»
// закрывает уникальный индекс хранилища (duplicate key -> SlotTaken).
type ScheduleService struct {
	commonRepo    repository.CommonTaskRepository
	exceptionRepo repository.ExceptionTaskRepository
	log           zerolog.Logger
}

func NewScheduleService(
	commonRepo repository.CommonTaskRepository,
	exceptionRepo repository.ExceptionTaskRepository,
	log zerolog.Logger,
) *ScheduleService {
	return &ScheduleService{
		commonRepo:    commonRepo,
		exceptionRepo: exceptionRepo,
		log:           log,
	}
}

// CreateCommonTask создаёт слот недельного шаблона.
// Шаблон append-only: операций обновления и удаления у него нет,
// точечные правки выражаются исключениями.
func (s *ScheduleService) CreateCommonTask(
	ctx context.Context,
	weekday, slot int,
	startTime, endTime string,
) (*model.CommonTask, error) {
	if weekday < 0 || weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be an integer between 0 and 6", schedule.ErrInvalidRange)
	}
	if err := checkSlotNumber(slot); err != nil {
		return nil, err
	}

	start, end, err := parseSpan(startTime, endTime)
	if err != nil {
		return nil, err
	}

	existing, err := s.commonRepo.FindBySlot(ctx, weekday, slot)
	if err != nil {
		return nil, fmt.Errorf("find common slot: %w", err)
	}
	if existing != nil {
		return nil, &schedule.SlotTakenError{Slot: slot, Scope: fmt.Sprintf("weekday %d", weekday)}
	}

	siblings, err := s.commonRepo.ListByWeekday(ctx, weekday)
	if err != nil {
		return nil, fmt.Errorf("list common slots: %w", err)
	}
	if err := checkConflicts(slot, start, end, commonToSlots(siblings)); err != nil {
		return nil, err
	}

	task := &model.CommonTask{
		ID:        uuid.New(),
		Weekday:   weekday,
		Slot:      slot,
		StartTime: schedule.FormatClock(start),
		EndTime:   schedule.FormatClock(end),
	}

	if err := s.commonRepo.Create(ctx, task); err != nil {
		// Конкурент успел записать ту же пару (weekday, slot)
		// между валидацией и вставкой.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &schedule.SlotTakenError{Slot: slot, Scope: fmt.Sprintf("weekday %d", weekday)}
		}
		return nil, fmt.Errorf("create common task: %w", err)
	}

	s.log.Info().
		Int("weekday", weekday).
		Int("slot", slot).
		Str("start", task.StartTime).
		Str("end", task.EndTime).
		Msg("common task created")

	return task, nil
}

// ListCommonTasks возвращает шаблон целиком либо срез одного дня недели.
func (s *ScheduleService) ListCommonTasks(ctx context.Context, weekday *int) ([]model.CommonTask, error) {
	if weekday == nil {
		return s.commonRepo.ListAll(ctx)
	}
	if *weekday < 0 || *weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be an integer between 0 and 6", schedule.ErrInvalidRange)
	}
	return s.commonRepo.ListByWeekday(ctx, *weekday)
}

// EffectiveSlots — итоговое расписание даты: исключения, наложенные
// на шаблон её дня недели. Deleted-исключение подавляет common-слот,
// ровно так же дату видит и клиентское зеркало.
func (s *ScheduleService) EffectiveSlots(ctx context.Context, dateStr string) ([]schedule.Slot, error) {
	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	common, err := s.commonRepo.ListByWeekday(ctx, schedule.Weekday(date))
	if err != nil {
		return nil, fmt.Errorf("list common slots: %w", err)
	}

	exceptions, err := s.exceptionRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list exceptions: %w", err)
	}

	return schedule.Merge(commonToSlots(common), exceptionsToMergeInput(exceptions)), nil
}

// UpsertExceptionInput — вход CreateOrUpdateExceptionTask.
// StartTime/EndTime обязательны при status = updated и игнорируются
// при status = deleted.
type UpsertExceptionInput struct {
	CommonTaskID *uuid.UUID
	SlotDate     string
	Status       model.ExceptionStatus
	Slot         int
	StartTime    *string
	EndTime      *string
}

// UpsertExceptionTask создаёт либо обновляет исключение по ключу (дата, слот).
// Повторное сохранение той же пары идемпотентно: строка переписывается,
// дубликат не появляется.
func (s *ScheduleService) UpsertExceptionTask(ctx context.Context, in UpsertExceptionInput) (*model.ExceptionTask, error) {
	if in.SlotDate == "" {
		return nil, fmt.Errorf("%w: slot_date", schedule.ErrMissingField)
	}
	if in.Status == "" {
		return nil, fmt.Errorf("%w: status", schedule.ErrMissingField)
	}
	if in.Status != model.ExceptionStatusUpdated && in.Status != model.ExceptionStatusDeleted {
		return nil, fmt.Errorf("%w: status must be 'updated' or 'deleted'", schedule.ErrInvalidRange)
	}
	if err := checkSlotNumber(in.Slot); err != nil {
		return nil, err
	}

	date, err := schedule.ParseDate(in.SlotDate)
	if err != nil {
		return nil, err
	}

	task := &model.ExceptionTask{
		ID:           uuid.New(),
		CommonTaskID: in.CommonTaskID,
		SlotDate:     datatypes.Date(date),
		Slot:         in.Slot,
		Status:       in.Status,
	}

	if in.Status == model.ExceptionStatusUpdated {
		if in.StartTime == nil || in.EndTime == nil {
			return nil, fmt.Errorf("%w: start_time and end_time are required for updated status", schedule.ErrMissingField)
		}

		start, end, err := parseSpan(*in.StartTime, *in.EndTime)
		if err != nil {
			return nil, err
		}

		// Пересечения проверяем против активных исключений ОСТАЛЬНЫХ слотов:
		// строка того же номера будет переписана, сама с собой она не конфликтует.
		active, err := s.exceptionRepo.ListActiveByDate(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("list active exceptions: %w", err)
		}
		if err := checkConflicts(in.Slot, start, end, activeToSlots(active)); err != nil {
			return nil, err
		}

		startStr := schedule.FormatClock(start)
		endStr := schedule.FormatClock(end)
		task.StartTime = &startStr
		task.EndTime = &endStr
	}

	if err := s.exceptionRepo.Upsert(ctx, task); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &schedule.SlotTakenError{Slot: in.Slot, Scope: "date " + in.SlotDate}
		}
		return nil, fmt.Errorf("upsert exception task: %w", err)
	}

	// После upsert перечитываем строку: при обновлении существующей
	// записи её ID и created_at остаются прежними.
	saved, err := s.exceptionRepo.FindAny(ctx, date, in.Slot)
	if err != nil {
		return nil, fmt.Errorf("reload exception task: %w", err)
	}
	if saved == nil {
		return nil, fmt.Errorf("reload exception task: row vanished after upsert")
	}

	s.log.Info().
		Str("date", in.SlotDate).
		Int("slot", in.Slot).
		Str("status", string(in.Status)).
		Msg("exception task saved")

	return saved, nil
}

// ListExceptionTasksByDate возвращает все исключения даты, включая deleted.
func (s *ScheduleService) ListExceptionTasksByDate(ctx context.Context, dateStr string) ([]model.ExceptionTask, error) {
	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	return s.exceptionRepo.ListByDate(ctx, date)
}

// ListExceptionTasksByRange возвращает страницу исключений за период.
// Границы включительны, nil = без ограничения.
func (s *ScheduleService) ListExceptionTasksByRange(
	ctx context.Context,
	fromStr, toStr *string,
	page, pageSize int,
) (schedule.Page[model.ExceptionTask], error) {
	var from, to *time.Time

	if fromStr != nil {
		d, err := schedule.ParseDate(*fromStr)
		if err != nil {
			return schedule.Page[model.ExceptionTask]{}, err
		}
		from = &d
	}
	if toStr != nil {
		d, err := schedule.ParseDate(*toStr)
		if err != nil {
			return schedule.Page[model.ExceptionTask]{}, err
		}
		to = &d
	}

	tasks, err := s.exceptionRepo.ListByRange(ctx, from, to)
	if err != nil {
		return schedule.Page[model.ExceptionTask]{}, fmt.Errorf("list exceptions by range: %w", err)
	}

	return schedule.Paginate(tasks, page, pageSize), nil
}

// DeleteExceptionTask физически удаляет исключение пары (дата, слот),
// возвращая дату под власть недельного шаблона.
func (s *ScheduleService) DeleteExceptionTask(ctx context.Context, dateStr string, slot int) (*model.ExceptionTask, error) {
	if err := checkSlotNumber(slot); err != nil {
		return nil, err
	}

	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	deleted, err := s.exceptionRepo.DeleteBySlot(ctx, date, slot)
	if err != nil {
		return nil, fmt.Errorf("delete exception task: %w", err)
	}
	if deleted == nil {
		return nil, fmt.Errorf("%w: exception for date %s slot %d", schedule.ErrNotFound, dateStr, slot)
	}

	s.log.Info().
		Str("date", dateStr).
		Int("slot", slot).
		Msg("exception task deleted")

	return deleted, nil
}

// ===== Чистые проверки и конвертации =====

func checkSlotNumber(slot int) error {
	// Бизнес-ограничение: не больше двух окон в сутки.
	if slot < 1 || slot > 2 {
		return fmt.Errorf("%w: slot must be 1 or 2", schedule.ErrInvalidRange)
	}
	return nil
}

func parseSpan(startTime, endTime string) (start, end int, err error) {
	start, err = schedule.ParseClock(startTime)
	if err != nil {
		return 0, 0, err
	}
	end, err = schedule.ParseClock(endTime)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("%w: end_time must be greater than start_time", schedule.ErrInvalidRange)
	}
	return start, end, nil
}

// checkConflicts сверяет интервал кандидата с соседними слотами
// (кандидатов с тем же номером из сравнения исключаем).
func checkConflicts(candidateSlot, start, end int, siblings []schedule.Slot) error {
	var conflicting []int
	for _, sib := range siblings {
		if sib.Slot == candidateSlot {
			continue
		}
		sibStart, err := schedule.ParseClock(sib.Start)
		if err != nil {
			return fmt.Errorf("stored slot %d has bad start time: %w", sib.Slot, err)
		}
		sibEnd, err := schedule.ParseClock(sib.End)
		if err != nil {
			return fmt.Errorf("stored slot %d has bad end time: %w", sib.Slot, err)
		}
		if schedule.Overlaps(start, end, sibStart, sibEnd) {
			conflicting = append(conflicting, sib.Slot)
		}
	}
	if len(conflicting) > 0 {
		return &schedule.TimeConflictError{Slots: conflicting}
	}
	return nil
}

func commonToSlots(tasks []model.CommonTask) []schedule.Slot {
	slots := make([]schedule.Slot, 0, len(tasks))
	for _, t := range tasks {
		slots = append(slots, schedule.Slot{Slot: t.Slot, Start: t.StartTime, End: t.EndTime})
	}
	return slots
}

func activeToSlots(tasks []model.ExceptionTask) []schedule.Slot {
	slots := make([]schedule.Slot, 0, len(tasks))
	for _, t := range tasks {
		if t.StartTime == nil || t.EndTime == nil {
			continue
		}
		slots = append(slots, schedule.Slot{Slot: t.Slot, Start: *t.StartTime, End: *t.EndTime})
	}
	return slots
}

func exceptionsToMergeInput(tasks []model.ExceptionTask) []schedule.Exception {
	exceptions := make([]schedule.Exception, 0, len(tasks))
	for _, t := range tasks {
		ex := schedule.Exception{Slot: t.Slot, Deleted: t.Status == model.ExceptionStatusDeleted}
		if !ex.Deleted {
			if t.StartTime == nil || t.EndTime == nil {
				continue
			}
			ex.Start = *t.StartTime
			ex.End = *t.EndTime
		}
		exceptions = append(exceptions, ex)
	}
	return exceptions
}
