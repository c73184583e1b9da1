package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Доменные ошибки ядра расписания. Транспортный слой
// отображает их в HTTP-статусы, ничего не зная про SQL.
var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidRange = errors.New("invalid value")
	ErrNotFound     = errors.New("not found")
)

// SlotTakenError — нарушение уникальности номера слота:
// пара (weekday, slot) или (date, slot) уже занята.
type SlotTakenError struct {
	Slot  int
	Scope string // "weekday 2" либо "date 2025-01-05"
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("slot %d already exists for %s", e.Slot, e.Scope)
}

// TimeConflictError — интервал кандидата пересекается с соседними слотами.
// Slots перечисляет номера конфликтующих слотов.
type TimeConflictError struct {
	Slots []int
}

func (e *TimeConflictError) Error() string {
	nums := make([]string, 0, len(e.Slots))
	for _, s := range e.Slots {
		nums = append(nums, strconv.Itoa(s))
	}
	return "time conflict with existing slot(s): " + strings.Join(nums, ", ")
}
