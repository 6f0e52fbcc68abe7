package event

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wishwell/internal/auth"
	"wishwell/internal/jobs"
	"wishwell/internal/list"
)

var ErrNotFound = errors.New("event not found")
var ErrUnauthorized = errors.New("unauthorized")
var ErrValidation = errors.New("invalid event")

type Lists interface {
	EnsureForUser(ctx context.Context, userID uint64) (*list.List, error)
}

type Service struct {
	DB    *gorm.DB
	Lists Lists
	Jobs  *jobs.Repo
	Log   *zap.Logger
}

type CreateInput struct {
	Title       string
	Description *string
	EventDate   *time.Time
}

// Create opens an event owned by the caller's list, with the owner as first
// participant. When the event is dated, a reminder job is enqueued in the
// same transaction so the two can never diverge.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (*Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || len(in.Title) > 255 {
		return nil, ErrValidation
	}

	owner, err := s.Lists.EnsureForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	ev := &Event{
		OwnerID:     owner.ID,
		Title:       in.Title,
		Description: in.Description,
		EventDate:   in.EventDate,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Create(ev).Error; err != nil {
			return err
		}
		if err := tx.Omit("List").Create(&Participant{EventID: ev.ID, ListID: owner.ID}).Error; err != nil {
			return err
		}
		if in.EventDate != nil {
			runAt := in.EventDate.Add(-24 * time.Hour)
			if runAt.Before(time.Now()) {
				runAt = time.Now()
			}
			return s.Jobs.EnqueueEventReminder(tx, caller.UserID, ev.ID, runAt)
		}
		return nil
	})
	if err != nil {
		s.Log.Error("unable to create event", zap.Uint64("owner", caller.UserID), zap.Error(err))
		return nil, err
	}
	return s.get(ctx, ev.ID)
}

// FindAllFor returns the events the caller owns or participates in.
func (s *Service) FindAllFor(ctx context.Context, caller auth.Identity) ([]Event, error) {
	l, err := s.Lists.EnsureForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	var events []Event
	err = s.DB.WithContext(ctx).
		Preload("Participants.List").
		Joins("JOIN participants ON participants.event_id = events.id").
		Where("events.deleted_at IS NULL AND participants.list_id = ?", l.ID).
		Order("events.event_date asc nulls last, events.id asc").
		Find(&events).Error
	return events, err
}

// Get returns an event the caller belongs to. Outsiders get NotFound rather
// than a hint that the event exists.
func (s *Service) Get(ctx context.Context, caller auth.Identity, eventID uint64) (*Event, error) {
	l, err := s.Lists.EnsureForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	ev, err := s.get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, p := range ev.Participants {
		if p.ListID == l.ID {
			return ev, nil
		}
	}
	return nil, ErrNotFound
}

// AddParticipant invites another user's list to the event. Owner only.
func (s *Service) AddParticipant(ctx context.Context, caller auth.Identity, eventID, userID uint64) (*Event, error) {
	owner, err := s.Lists.EnsureForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	ev, err := s.get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.OwnerID != owner.ID {
		return nil, ErrUnauthorized
	}

	invited, err := s.Lists.EnsureForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := Participant{EventID: ev.ID, ListID: invited.ID}
	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("List").
		Create(&p).Error; err != nil {
		return nil, err
	}
	return s.get(ctx, eventID)
}

// Remove soft-deletes an event and cancels its pending reminders. Owner only.
func (s *Service) Remove(ctx context.Context, caller auth.Identity, eventID uint64) error {
	owner, err := s.Lists.EnsureForUser(ctx, caller.UserID)
	if err != nil {
		return err
	}

	ev, err := s.get(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.OwnerID != owner.ID {
		s.Log.Warn("caller lacks rights over event",
			zap.Uint64("caller", caller.UserID), zap.Uint64("event", eventID))
		return ErrUnauthorized
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Event{}).
			Where("id = ? AND deleted_at IS NULL", ev.ID).
			Update("deleted_at", time.Now()).Error; err != nil {
			return err
		}
		return s.Jobs.CancelEventReminders(tx, ev.ID)
	})
}

func (s *Service) get(ctx context.Context, eventID uint64) (*Event, error) {
	var ev Event
	err := s.DB.WithContext(ctx).
		Preload("Participants.List").
		Where("id = ? AND deleted_at IS NULL", eventID).
		First(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}
