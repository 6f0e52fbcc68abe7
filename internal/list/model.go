package list

import "time"

// List is a person's wish collection. It doubles as the address used for
// authorship, recipiency and contributions. One per user, soft delete only.
type List struct {
	ID        uint64     `gorm:"primaryKey" json:"id"`
	UserID    uint64     `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName string     `gorm:"not null;default:''" json:"first_name"`
	LastName  string     `gorm:"not null;default:''" json:"last_name"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"-"`
	DeletedAt *time.Time `gorm:"type:timestamptz;index" json:"-"`
}
