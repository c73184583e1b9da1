package schedule

import (
	"fmt"
	"sort"
)

// Slot — одно временное окно в расписании дня.
// В сутках не больше двух окон, Slot ∈ {1, 2}.
type Slot struct {
	Slot  int
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// Exception — per-date правка слота: либо новое время (Deleted = false),
// либо подавление слота на эту дату (Deleted = true).
type Exception struct {
	Slot    int
	Deleted bool
	Start   string
	End     string
}

// Merge накладывает исключения даты на недельный шаблон дня
// и возвращает итоговый список окон:
//   - updated-исключение целиком заменяет одноимённый common-слот;
//   - deleted-исключение подавляет common-слот на эту дату;
//   - исключение без common-слота добавляется как новое окно.
//
// Результат отсортирован по номеру слота. Эта же функция работает
// и на сервере (резолвер), и в клиентском зеркале — расходиться им нельзя.
func Merge(common []Slot, exceptions []Exception) []Slot {
	byTmpl := make(map[int]Exception, len(exceptions))
	for _, ex := range exceptions {
		byTmpl[ex.Slot] = ex
	}

	effective := make([]Slot, 0, len(common)+len(exceptions))

	for _, c := range common {
		ex, ok := byTmpl[c.Slot]
		if !ok {
			effective = append(effective, c)
			continue
		}
		if ex.Deleted {
			continue
		}
		effective = append(effective, Slot{Slot: ex.Slot, Start: ex.Start, End: ex.End})
	}

	// Исключения, которым не нашлось common-слота, — чистые добавления.
	for _, ex := range exceptions {
		if ex.Deleted {
			continue
		}
		overrides := false
		for _, c := range common {
			if c.Slot == ex.Slot {
				overrides = true
				break
			}
		}
		if !overrides {
			effective = append(effective, Slot{Slot: ex.Slot, Start: ex.Start, End: ex.End})
		}
	}

	sort.Slice(effective, func(i, j int) bool {
		return effective[i].Slot < effective[j].Slot
	})

	return effective
}

// ValidateDay проверяет набор окон одного дня: корректный формат времени,
// end > start и отсутствие попарных пересечений. Используется клиентом
// перед сохранением; авторитетная проверка всё равно на сервере.
func ValidateDay(slots []Slot) error {
	type span struct {
		slot       int
		start, end int
	}

	spans := make([]span, 0, len(slots))
	for _, s := range slots {
		start, err := ParseClock(s.Start)
		if err != nil {
			return err
		}
		end, err := ParseClock(s.End)
		if err != nil {
			return err
		}
		if end <= start {
			return fmt.Errorf("%w: slot %d end %q must be after start %q", ErrInvalidRange, s.Slot, s.End, s.Start)
		}
		spans = append(spans, span{slot: s.Slot, start: start, end: end})
	}

	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			if Overlaps(spans[i].start, spans[i].end, spans[j].start, spans[j].end) {
				return &TimeConflictError{Slots: []int{spans[j].slot}}
			}
		}
	}

	return nil
}
