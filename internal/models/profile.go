package models

type Role string

const (
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleEmployee
}

// Profile extends a User with its domain role and, for employees, the managing user.
type Profile struct {
	ID        uint64  `gorm:"primarykey" json:"id"`
	UserID    uint64  `gorm:"uniqueIndex;not null" json:"user_id"`
	Role      Role    `gorm:"type:varchar(20);not null" json:"role"`
	ManagerID *uint64 `gorm:"index" json:"manager_id"`

	// Relations
	Manager *User `gorm:"foreignKey:ManagerID;constraint:OnDelete:SET NULL" json:"manager,omitempty"`
}
