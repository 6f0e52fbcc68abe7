package event

import (
	"time"

	"wishwell/internal/list"
)

// Event groups participants around an occasion (a birthday, a holiday) so
// they can browse each other's lists and plan surprises together.
type Event struct {
	ID          uint64     `gorm:"primaryKey"`
	OwnerID     uint64     `gorm:"index;not null"`
	Title       string     `gorm:"size:255;not null"`
	Description *string    `gorm:"size:255"`
	EventDate   *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"not null;default:now()"`
	DeletedAt   *time.Time `gorm:"type:timestamptz;index"`

	Participants []Participant `gorm:"foreignKey:EventID"`
}

type Participant struct {
	EventID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	ListID    uint64    `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"not null;default:now()"`

	List list.List `gorm:"foreignKey:ListID"`
}
