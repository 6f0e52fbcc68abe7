package list

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wishwell/internal/auth"
)

var ErrNotFound = errors.New("list not found")
var ErrConflict = errors.New("list already exists")

type Service struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// EnsureForUser returns the user's list, lazily creating it from the user's
// registered names on first access. Users without an account are rejected.
func (s *Service) EnsureForUser(ctx context.Context, userID uint64) (*List, error) {
	var l List
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		First(&l).Error
	if err == nil {
		return &l, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var u auth.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	l = List{UserID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
	if err := s.DB.WithContext(ctx).Create(&l).Error; err != nil {
		// Concurrent first access: somebody else provisioned the row, reuse it.
		if isUniqueViolation(err) {
			var existing List
			if ferr := s.DB.WithContext(ctx).
				Where("user_id = ? AND deleted_at IS NULL", userID).
				First(&existing).Error; ferr == nil {
				return &existing, nil
			}
			return nil, ErrConflict
		}
		s.Log.Error("unable to create list", zap.Uint64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &l, nil
}

// FindByUser returns the list of another participant without provisioning it.
func (s *Service) FindByUser(ctx context.Context, userID uint64) (*List, error) {
	var l List
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindOthers returns every participant's list except the caller's own.
func (s *Service) FindOthers(ctx context.Context, caller auth.Identity) ([]List, error) {
	var lists []List
	err := s.DB.WithContext(ctx).
		Where("deleted_at IS NULL AND user_id <> ?", caller.UserID).
		Order("last_name asc, first_name asc").
		Find(&lists).Error
	return lists, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
