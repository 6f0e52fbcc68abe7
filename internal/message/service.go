package message

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"wishwell/internal/list"
)

var ErrBadMessage = errors.New("bad message format")
var ErrNotFound = errors.New("recipient list not found")

const maxContentLength = 2000

type Service struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// Create persists a message from the author's list to the recipient user's
// list. The author identity comes from the authenticated connection, never
// from the payload.
func (s *Service) Create(ctx context.Context, authorListID, recipientUserID uint64, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if authorListID == 0 || recipientUserID == 0 || content == "" || len(content) > maxContentLength {
		return nil, ErrBadMessage
	}

	var recipient list.List
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND deleted_at IS NULL", recipientUserID).
		First(&recipient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m := Message{ListID: recipient.ID, AuthorID: authorListID, Content: content}
	if err := s.DB.WithContext(ctx).Omit("Author").Create(&m).Error; err != nil {
		s.Log.Error("unable to persist message",
			zap.Uint64("author_list", authorListID),
			zap.Uint64("recipient", recipientUserID),
			zap.Error(err))
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Preload("Author").First(&m, "id = ?", m.ID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ForList returns the non-deleted messages posted to a user's list, oldest
// first, with author names attached.
func (s *Service) ForList(ctx context.Context, recipientUserID uint64) ([]Message, error) {
	var msgs []Message
	err := s.DB.WithContext(ctx).
		Preload("Author").
		Joins("JOIN lists ON lists.id = messages.list_id").
		Where("messages.deleted_at IS NULL AND lists.user_id = ?", recipientUserID).
		Order("messages.created_at asc").
		Find(&msgs).Error
	return msgs, err
}
