package models

// TaskOrder is one user's private position for a task.
type TaskOrder struct {
	ID       uint64 `gorm:"primarykey" json:"id"`
	UserID   uint64 `gorm:"not null;uniqueIndex:idx_task_orders_user_task" json:"user_id"`
	TaskID   uint64 `gorm:"not null;uniqueIndex:idx_task_orders_user_task;index" json:"task_id"`
	Position int    `gorm:"not null;default:0" json:"position"`

	// Relations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}
