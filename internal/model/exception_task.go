package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Статус per-date исключения.
type ExceptionStatus string

const (
	// Слот на эту дату получает явное время вместо шаблонного.
	ExceptionStatusUpdated ExceptionStatus = "updated"
	// Слот на эту дату подавлен.
	ExceptionStatusDeleted ExceptionStatus = "deleted"
)

// exception_tasks — per-date правка недельного шаблона.
// На пару (slot_date, slot) существует не больше одной строки:
// повторная запись переворачивает статус/время на месте (upsert).
type ExceptionTask struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	// Необязательная ссылка на перекрываемый common-слот.
	// Резолвер её не использует — связь чисто информационная.
	CommonTaskID *uuid.UUID `gorm:"type:uuid;index"`

	// Чистая дата без времени — datatypes.Date
	SlotDate datatypes.Date `gorm:"type:date;not null;index;uniqueIndex:uniq_exception_date_slot"`
	Slot     int            `gorm:"not null;uniqueIndex:uniq_exception_date_slot"`

	Status ExceptionStatus `gorm:"type:varchar(16);not null;index"`

	// Заполнены при status = updated, NULL при status = deleted.
	StartTime *string `gorm:"type:varchar(8)"`
	EndTime   *string `gorm:"type:varchar(8)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	CommonTask *CommonTask `gorm:"foreignKey:CommonTaskID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
