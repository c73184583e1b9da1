package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/leganyst/weekly-schedule/internal/model"
)

type ExceptionTaskRepository interface {
	// Все исключения даты (любой статус), упорядоченные по номеру слота.
	ListByDate(ctx context.Context, date time.Time) ([]model.ExceptionTask, error)
	// Только активные (status = updated) исключения даты.
	ListActiveByDate(ctx context.Context, date time.Time) ([]model.ExceptionTask, error)
	// Исключения за период (границы включительно, nil = без ограничения),
	// упорядоченные по (slot_date, slot).
	ListByRange(ctx context.Context, from, to *time.Time) ([]model.ExceptionTask, error)
	// Строка пары (date, slot) независимо от статуса.
	FindAny(ctx context.Context, date time.Time, slot int) (*model.ExceptionTask, error)
	// Создать либо обновить строку по ключу (slot_date, slot).
	Upsert(ctx context.Context, task *model.ExceptionTask) error
	// Удалить строку по ключу (date, slot); nil без ошибки, если её нет.
	DeleteBySlot(ctx context.Context, date time.Time, slot int) (*model.ExceptionTask, error)
}

// Реализация на GORM.
type GormExceptionTaskRepository struct {
	db *gorm.DB
}

func NewGormExceptionTaskRepository(db *gorm.DB) *GormExceptionTaskRepository {
	return &GormExceptionTaskRepository{db: db}
}

func (r *GormExceptionTaskRepository) ListByDate(ctx context.Context, date time.Time) ([]model.ExceptionTask, error) {
	var tasks []model.ExceptionTask
	err := r.db.WithContext(ctx).
		Where("slot_date = ?", datatypes.Date(date)).
		Order("slot ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormExceptionTaskRepository) ListActiveByDate(ctx context.Context, date time.Time) ([]model.ExceptionTask, error) {
	var tasks []model.ExceptionTask
	err := r.db.WithContext(ctx).
		Where("slot_date = ?", datatypes.Date(date)).
		Where("status = ?", model.ExceptionStatusUpdated).
		Order("slot ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormExceptionTaskRepository) ListByRange(ctx context.Context, from, to *time.Time) ([]model.ExceptionTask, error) {
	q := r.db.WithContext(ctx).Model(&model.ExceptionTask{})

	if from != nil {
		q = q.Where("slot_date >= ?", datatypes.Date(*from))
	}
	if to != nil {
		q = q.Where("slot_date <= ?", datatypes.Date(*to))
	}

	var tasks []model.ExceptionTask
	if err := q.Order("slot_date ASC, slot ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormExceptionTaskRepository) FindAny(ctx context.Context, date time.Time, slot int) (*model.ExceptionTask, error) {
	var task model.ExceptionTask
	err := r.db.WithContext(ctx).
		First(&task, "slot_date = ? AND slot = ?", datatypes.Date(date), slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormExceptionTaskRepository) Upsert(ctx context.Context, task *model.ExceptionTask) error {
	// Одна строка на (slot_date, slot): повторная запись переворачивает
	// статус и время на месте, а не плодит дубликаты.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slot_date"}, {Name: "slot"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"common_task_id", "status", "start_time", "end_time", "updated_at",
			}),
		}).
		Create(task).Error
}

func (r *GormExceptionTaskRepository) DeleteBySlot(ctx context.Context, date time.Time, slot int) (*model.ExceptionTask, error) {
	var task model.ExceptionTask
	err := r.db.WithContext(ctx).
		First(&task, "slot_date = ? AND slot = ?", datatypes.Date(date), slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Delete(&model.ExceptionTask{}, "id = ?", task.ID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}
