package wish

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"wishwell/internal/auth"
	"wishwell/internal/list"
)

// Lists is the slice of the list service the wish domain needs: resolving the
// caller's own list (provisioning it on first access) and looking up another
// participant's list.
type Lists interface {
	EnsureForUser(ctx context.Context, userID uint64) (*list.List, error)
	FindByUser(ctx context.Context, userID uint64) (*list.List, error)
}

type Service struct {
	Store Store
	Lists Lists
	Log   *zap.Logger
}

type CreateInput struct {
	Title       string
	Description *string
	Link        *string
	Image       *string
	Price       *int
	SortOrder   int
}

func validateFields(title *string, description *string, price *int, sortOrder *int) error {
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return &ValidationError{Field: "title", Reason: "required"}
		}
		if len(t) > 255 {
			return &ValidationError{Field: "title", Reason: "must be at most 255 characters"}
		}
	}
	if description != nil && len(*description) > 255 {
		return &ValidationError{Field: "description", Reason: "must be at most 255 characters"}
	}
	if price != nil && *price < 0 {
		return &ValidationError{Field: "price", Reason: "must be at least 0"}
	}
	if sortOrder != nil && *sortOrder < 0 {
		return &ValidationError{Field: "order", Reason: "must be at least 0"}
	}
	return nil
}

// Create adds a wish to recipientUserID's list on behalf of the caller. The
// recipient's list is provisioned lazily on the first wish written to it.
func (s *Service) Create(ctx context.Context, caller auth.Identity, recipientUserID uint64, in CreateInput) (*Wish, error) {
	if err := validateFields(&in.Title, in.Description, in.Price, &in.SortOrder); err != nil {
		return nil, err
	}

	authorList, err := s.Lists.EnsureForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	recipientList := authorList
	if recipientUserID != caller.UserID {
		recipientList, err = s.Lists.EnsureForUser(ctx, recipientUserID)
		if err != nil {
			return nil, err
		}
	}

	w := &Wish{
		RecipientID: recipientList.ID,
		AuthorID:    authorList.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Link:        in.Link,
		Image:       in.Image,
		Price:       in.Price,
		SortOrder:   in.SortOrder,
	}
	if err := s.Store.Create(ctx, w); err != nil {
		s.Log.Error("unable to create wish",
			zap.Uint64("author", caller.UserID),
			zap.Uint64("recipient", recipientUserID),
			zap.Error(err))
		return nil, err
	}
	w.Contributions = []Contribution{}
	return w, nil
}

// FindAll lists recipientUserID's non-deleted wishes for the caller, sorted by
// display order and masked per the visibility rules. Viewing one's own list
// returns only self-authored wishes, so surprises stay hidden.
func (s *Service) FindAll(ctx context.Context, caller auth.Identity, recipientUserID uint64) ([]Wish, error) {
	viewerList, err := s.Lists.EnsureForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	recipientList := viewerList
	var authorFilter *uint64
	if recipientUserID == caller.UserID {
		authorFilter = &viewerList.ID
	} else {
		recipientList, err = s.Lists.FindByUser(ctx, recipientUserID)
		if err != nil {
			if err == list.ErrNotFound {
				return []Wish{}, nil
			}
			return nil, err
		}
	}

	wishes, err := s.Store.ListByRecipient(ctx, recipientList.ID, authorFilter)
	if err != nil {
		return nil, err
	}
	return FilterAllForViewer(wishes, viewerList.ID), nil
}

// Update edits a wish's fields. Only the original author may do so, and
// contribution data is never touched.
func (s *Service) Update(ctx context.Context, caller auth.Identity, recipientUserID, wishID uint64, in UpdateInput) (*Wish, error) {
	if err := validateFields(in.Title, in.Description, in.Price, in.SortOrder); err != nil {
		return nil, err
	}

	callerList, w, err := s.authorOnly(ctx, caller, recipientUserID, wishID)
	if err != nil {
		return nil, err
	}

	updated, err := s.Store.Update(ctx, w.ID, in)
	if err != nil {
		return nil, err
	}
	return FilterForViewer(updated, callerList.ID), nil
}

// Remove soft-deletes a wish; the row survives but leaves every read path.
// Only the original author may delete.
func (s *Service) Remove(ctx context.Context, caller auth.Identity, recipientUserID, wishID uint64) (*Wish, error) {
	callerList, w, err := s.authorOnly(ctx, caller, recipientUserID, wishID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.Store.SoftDelete(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	return FilterForViewer(deleted, callerList.ID), nil
}

// Redeem applies a REDEEM/REMOVE pledge by the caller against a wish on
// recipientUserID's list. A recipient can never pledge toward their own wish.
func (s *Service) Redeem(ctx context.Context, caller auth.Identity, recipientUserID, wishID uint64, req PledgeRequest) (*Wish, error) {
	if caller.UserID == recipientUserID {
		s.Log.Warn("caller tried to redeem their own wish",
			zap.Uint64("caller", caller.UserID), zap.Uint64("wish", wishID))
		return nil, ErrForbidden
	}

	callerList, err := s.Lists.EnsureForUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	w, err := s.lookup(ctx, recipientUserID, wishID)
	if err != nil {
		return nil, err
	}
	if w.RecipientID == callerList.ID {
		return nil, ErrForbidden
	}

	updated, err := s.Store.Pledge(ctx, w.ID, callerList.ID, req)
	if err != nil {
		return nil, err
	}
	return FilterForViewer(updated, callerList.ID), nil
}

// lookup fetches a live wish and checks it actually sits on the list named in
// the request path.
func (s *Service) lookup(ctx context.Context, recipientUserID, wishID uint64) (*Wish, error) {
	recipientList, err := s.Lists.FindByUser(ctx, recipientUserID)
	if err != nil {
		if err == list.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	w, err := s.Store.Get(ctx, wishID)
	if err != nil {
		return nil, err
	}
	if w.RecipientID != recipientList.ID {
		return nil, ErrNotFound
	}
	return w, nil
}

func (s *Service) authorOnly(ctx context.Context, caller auth.Identity, recipientUserID, wishID uint64) (*list.List, *Wish, error) {
	callerList, err := s.Lists.EnsureForUser(ctx, caller.UserID)
	if err != nil {
		return nil, nil, err
	}

	w, err := s.lookup(ctx, recipientUserID, wishID)
	if err != nil {
		return nil, nil, err
	}
	if w.AuthorID != callerList.ID {
		s.Log.Warn("caller lacks rights over wish",
			zap.Uint64("caller", caller.UserID),
			zap.Uint64("wish", wishID),
			zap.Uint64("recipient", recipientUserID))
		return nil, nil, ErrUnauthorized
	}
	return callerList, w, nil
}
