package model

import (
	"time"

	"github.com/google/uuid"
)

// common_tasks — недельный шаблон: повторяющееся окно,
// привязанное к дню недели (0 = воскресенье) и номеру слота (1 или 2).
// Пара (weekday, slot) уникальна; индекс — страховка от гонки
// «валидация прошла у двоих, пишет второй».
type CommonTask struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Weekday int `gorm:"not null;index;uniqueIndex:uniq_common_weekday_slot"`
	Slot    int `gorm:"not null;uniqueIndex:uniq_common_weekday_slot"`

	// Время как строка "HH:MM" — слоты не переживают полночь,
	// таймзоны в домене нет.
	StartTime string `gorm:"type:varchar(8);not null"`
	EndTime   string `gorm:"type:varchar(8);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
