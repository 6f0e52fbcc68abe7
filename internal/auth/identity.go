package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Identity is the resolved caller. It is produced once per request by the
// auth middleware (or at websocket handshake) and passed by value; nothing
// else in the codebase reads session state.
type Identity struct {
	UserID    uint64
	FirstName string
	LastName  string
}

var ErrUnknownUser = errors.New("unknown user")

// Resolver loads an Identity for a verified user id.
type Resolver interface {
	Resolve(ctx context.Context, userID uint64) (Identity, error)
}

type DBResolver struct {
	DB *gorm.DB
}

func (r *DBResolver) Resolve(ctx context.Context, userID uint64) (Identity, error) {
	var u User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrUnknownUser
		}
		return Identity{}, err
	}
	return Identity{UserID: u.ID, FirstName: u.FirstName, LastName: u.LastName}, nil
}
