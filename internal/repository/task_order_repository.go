package repository

import (
	"sort"

	"github.com/yukikurage/taskflow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskOrderRepository is a GORM implementation of TaskOrderRepository
type GormTaskOrderRepository struct {
	db *gorm.DB
}

// NewTaskOrderRepository creates a new TaskOrderRepository
func NewTaskOrderRepository(db *gorm.DB) TaskOrderRepository {
	return &GormTaskOrderRepository{db: db}
}

// UpsertPositions creates or overwrites one row per task for the user, all or nothing
func (r *GormTaskOrderRepository) UpsertPositions(userID uint64, positions map[uint64]int) error {
	if len(positions) == 0 {
		return nil
	}

	taskIDs := make([]uint64, 0, len(positions))
	for id := range positions {
		taskIDs = append(taskIDs, id)
	}
	sort.Slice(taskIDs, func(i, j int) bool { return taskIDs[i] < taskIDs[j] })

	orders := make([]models.TaskOrder, len(taskIDs))
	for i, taskID := range taskIDs {
		orders[i] = models.TaskOrder{
			UserID:   userID,
			TaskID:   taskID,
			Position: positions[taskID],
		}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.
			Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"position"}),
			}).
			Create(&orders).Error
	})
}

// PositionsForUser returns the user's saved positions keyed by task ID
func (r *GormTaskOrderRepository) PositionsForUser(userID uint64) (map[uint64]int, error) {
	var orders []models.TaskOrder
	if err := r.db.Where("user_id = ?", userID).Order("position ASC").Find(&orders).Error; err != nil {
		return nil, err
	}

	positions := make(map[uint64]int, len(orders))
	for _, o := range orders {
		positions[o.TaskID] = o.Position
	}
	return positions, nil
}
