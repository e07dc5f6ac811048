package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todoapp/internal/model"
)

// Scope narrows or orders a task query.
type Scope func(*gorm.DB) *gorm.DB

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateWithinLimit inserts task only while its owner holds fewer than limit
// tasks. The owner row is locked for the duration of the count and insert so
// concurrent creates for the same owner are serialized.
func (r *TaskRepository) CreateWithinLimit(ctx context.Context, task *model.Task, limit int) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", task.OwnerID).
			First(&owner).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.Task{}).Where("owner_id = ?", task.OwnerID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(limit) {
			return nil
		}

		if err := tx.Create(task).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// CountOwned returns how many tasks ownerID currently holds
func (r *TaskRepository) CountOwned(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// FindPage counts the tasks matching filters, then loads one page of them in
// the given order. The count ignores offset and limit.
func (r *TaskRepository) FindPage(ctx context.Context, filters []Scope, order Scope, offset, limit int) ([]model.Task, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Task{})
		for _, f := range filters {
			q = f(q)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tasks := []model.Task{}
	if total == 0 || int64(offset) >= total {
		return tasks, total, nil
	}

	q := query()
	if order != nil {
		q = order(q)
	}
	if err := q.Offset(offset).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// UpdateIf loads the task under a row lock, asks allow whether the change is
// permitted and, if so, applies it and persists title, description and
// completion. Other columns are never written. The returned bool is false when
// allow rejected the change.
func (r *TaskRepository) UpdateIf(ctx context.Context, id uint, allow func(*model.Task) bool, apply func(*model.Task)) (bool, error) {
	updated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := lockTask(tx, id)
		if err != nil {
			return err
		}
		if !allow(task) {
			return nil
		}

		apply(task)
		if err := tx.Model(task).
			Select("title", "description", "is_completed").
			Updates(task).Error; err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// DeleteIf removes the task when allow permits it. ErrTaskNotFound is returned
// for a missing row.
func (r *TaskRepository) DeleteIf(ctx context.Context, id uint, allow func(*model.Task) bool) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := lockTask(tx, id)
		if err != nil {
			return err
		}
		if !allow(task) {
			return nil
		}

		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func lockTask(tx *gorm.DB, id uint) (*model.Task, error) {
	var task model.Task
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
