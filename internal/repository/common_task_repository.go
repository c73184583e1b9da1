package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/leganyst/weekly-schedule/internal/model"
)

type CommonTaskRepository interface {
	// Все слоты недельного шаблона, упорядоченные по (weekday, slot).
	ListAll(ctx context.Context) ([]model.CommonTask, error)
	// Слоты одного дня недели, упорядоченные по номеру слота.
	ListByWeekday(ctx context.Context, weekday int) ([]model.CommonTask, error)
	// Найти слот по паре (weekday, slot); nil без ошибки, если не существует.
	FindBySlot(ctx context.Context, weekday, slot int) (*model.CommonTask, error)
	// Создать слот шаблона.
	Create(ctx context.Context, task *model.CommonTask) error
}

// Реализация на GORM.
type GormCommonTaskRepository struct {
	db *gorm.DB
}

func NewGormCommonTaskRepository(db *gorm.DB) *GormCommonTaskRepository {
	return &GormCommonTaskRepository{db: db}
}

func (r *GormCommonTaskRepository) ListAll(ctx context.Context) ([]model.CommonTask, error) {
	var tasks []model.CommonTask
	err := r.db.WithContext(ctx).
		Order("weekday ASC, slot ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormCommonTaskRepository) ListByWeekday(ctx context.Context, weekday int) ([]model.CommonTask, error) {
	var tasks []model.CommonTask
	err := r.db.WithContext(ctx).
		Where("weekday = ?", weekday).
		Order("slot ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormCommonTaskRepository) FindBySlot(ctx context.Context, weekday, slot int) (*model.CommonTask, error) {
	var task model.CommonTask
	err := r.db.WithContext(ctx).
		First(&task, "weekday = ? AND slot = ?", weekday, slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormCommonTaskRepository) Create(ctx context.Context, task *model.CommonTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}
