package wish

import (
	"time"

	"wishwell/internal/list"
)

// Wish always has exactly one recipient list (whose wish it is) and one
// author list (who added it). Author and recipient differ for surprise
// wishes added to someone else's list.
type Wish struct {
	ID          uint64     `gorm:"primaryKey"`
	RecipientID uint64     `gorm:"index;not null"`
	AuthorID    uint64     `gorm:"index;not null"`
	Title       string     `gorm:"size:255;not null"`
	Description *string    `gorm:"size:255"`
	Link        *string    `gorm:"type:text"`
	Image       *string    `gorm:"type:text"`
	Price       *int       `gorm:"check:price >= 0"`
	SortOrder   int        `gorm:"not null;default:0"`
	CreatedAt   time.Time  `gorm:"not null;default:now()"`
	DeletedAt   *time.Time `gorm:"type:timestamptz;index"`

	Recipient     list.List      `gorm:"foreignKey:RecipientID"`
	Contributions []Contribution `gorm:"foreignKey:WishID"`
}

// Contribution is one contributor's pledged share of funding a wish.
// The (wish, gifter) pair is the unit of contention: a later pledge by the
// same contributor moves the existing amount instead of adding a row.
type Contribution struct {
	WishID    uint64    `gorm:"primaryKey;autoIncrement:false"`
	GifterID  uint64    `gorm:"primaryKey;autoIncrement:false"`
	Amount    int       `gorm:"not null;default:0"`
	Message   *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;default:now()"`

	Gifter list.List `gorm:"foreignKey:GifterID"`
}

// SelfAdded reports whether the recipient put this wish on their own list.
func (w *Wish) SelfAdded() bool {
	return w.AuthorID == w.RecipientID
}

// TotalPledged sums every contributor's percentage.
func (w *Wish) TotalPledged() int {
	total := 0
	for _, c := range w.Contributions {
		total += c.Amount
	}
	return total
}

// PledgedBy returns the gifter's current percentage, 0 if none.
func (w *Wish) PledgedBy(gifterID uint64) int {
	for _, c := range w.Contributions {
		if c.GifterID == gifterID {
			return c.Amount
		}
	}
	return 0
}
