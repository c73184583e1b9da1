package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Формат времени в API — строка "HH:MM" или "HH:MM:SS".
// Внутри всё считаем в секундах с полуночи.
var clockRe = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2}))?$`)

// ParseClock разбирает "HH:MM" или "HH:MM:SS" в секунды с полуночи.
// Ведущие нули обязательны ("9:00" — ошибка).
func ParseClock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q must be HH:MM or HH:MM:SS", ErrInvalidRange, s)
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds := 0
	if m[3] != "" {
		seconds, _ = strconv.Atoi(m[3])
	}

	if hours > 23 || minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidRange, s)
	}

	return hours*3600 + minutes*60 + seconds, nil
}

// FormatClock форматирует секунды с полуночи обратно в "HH:MM".
// Секундная часть намеренно отбрасывается — наружу отдаём минутную точность.
func FormatClock(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов [start, end).
// Слоты "впритык" (aEnd == bStart) пересечением не считаются.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd <= bStart || bEnd <= aStart)
}

// ParseDate разбирает календарную дату "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidRange, s)
	}
	return d, nil
}

// Weekday возвращает день недели даты в домене расписания: 0 = воскресенье.
func Weekday(d time.Time) int {
	return int(d.Weekday())
}
