package message

import (
	"time"

	"wishwell/internal/list"
)

// Message is a short list-to-list text. ListID is the recipient list the
// message was posted to, AuthorID the sender's list.
type Message struct {
	ID        uint64     `gorm:"primaryKey"`
	ListID    uint64     `gorm:"index;not null"`
	AuthorID  uint64     `gorm:"index;not null"`
	Content   string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"not null;default:now()"`
	DeletedAt *time.Time `gorm:"type:timestamptz;index"`

	Author list.List `gorm:"foreignKey:AuthorID"`
}
