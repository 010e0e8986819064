package repository

import (
	"strings"

	"github.com/yukikurage/taskflow/internal/database"
	"github.com/yukikurage/taskflow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks matching the filter, ordered by their default position
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	query := r.db.Model(&models.Task{})

	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			return []models.Task{}, nil
		}
		query = query.Where("tasks.id IN ?", filter.IDs)
	}
	if filter.CreatedByID != nil {
		query = query.Where("tasks.created_by_id = ?", *filter.CreatedByID)
	}
	if filter.AssigneeManagerID != nil {
		employees := r.db.Model(&models.Profile{}).
			Select("profiles.user_id").
			Where("profiles.manager_id = ?", *filter.AssigneeManagerID)
		query = query.Where("tasks.assigned_to_id IN (?)", employees)
	}
	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}
	if title := strings.TrimSpace(filter.Title); title != "" {
		query = query.Where("LOWER(tasks.title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.DueBefore != nil {
		query = query.Where("tasks.due_date IS NOT NULL AND tasks.due_date < ?", *filter.DueBefore)
	}

	if filter.Preload {
		query = query.Preload("AssignedTo").Preload("CreatedBy")
	}

	var tasks []models.Task
	if err := query.Scopes(database.DefaultTaskOrder).Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update saves a task's own columns, leaving related users untouched
func (r *GormTaskRepository) Update(task *models.Task, omit ...string) error {
	return r.db.Omit(append([]string{clause.Associations}, omit...)...).Save(task).Error
}

// MarkCompleted moves a task into the completed state unless it already is
func (r *GormTaskRepository) MarkCompleted(id uint64) (bool, error) {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status <> ?", id, models.TaskStatusCompleted).
		Update("status", models.TaskStatusCompleted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a task and its dependent rows in a transaction
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}
