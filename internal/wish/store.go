package wish

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PledgeRequest is one REDEEM/REMOVE mutation against a wish.
type PledgeRequest struct {
	Type    RedeemType
	Amount  int
	Message *string
}

// UpdateInput carries the author-editable fields; nil means leave unchanged.
// That convention makes clearing an optional column back to NULL
// inexpressible; authors overwrite with a new value instead.
type UpdateInput struct {
	Title       *string
	Description *string
	Link        *string
	Image       *string
	Price       *int
	SortOrder   *int
}

// Store is the read/query and mutation boundary over the persistent store.
// Pledge owns the whole read-validate-write sequence so that concurrent
// pledges against the same wish can never persist a total above 100.
type Store interface {
	Get(ctx context.Context, wishID uint64) (*Wish, error)
	ListByRecipient(ctx context.Context, recipientID uint64, authorID *uint64) ([]Wish, error)
	Create(ctx context.Context, w *Wish) error
	Update(ctx context.Context, wishID uint64, in UpdateInput) (*Wish, error)
	SoftDelete(ctx context.Context, wishID uint64) (*Wish, error)
	Pledge(ctx context.Context, wishID, gifterID uint64, req PledgeRequest) (*Wish, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) preload(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Contributions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Contributions.Gifter")
}

func (s *GormStore) Get(ctx context.Context, wishID uint64) (*Wish, error) {
	var w Wish
	err := s.preload(s.DB.WithContext(ctx)).
		Where("id = ? AND deleted_at IS NULL", wishID).
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (s *GormStore) ListByRecipient(ctx context.Context, recipientID uint64, authorID *uint64) ([]Wish, error) {
	q := s.preload(s.DB.WithContext(ctx)).
		Where("recipient_id = ? AND deleted_at IS NULL", recipientID)
	if authorID != nil {
		q = q.Where("author_id = ?", *authorID)
	}

	var wishes []Wish
	if err := q.Order("sort_order asc, id asc").Find(&wishes).Error; err != nil {
		return nil, err
	}
	return wishes, nil
}

func (s *GormStore) Create(ctx context.Context, w *Wish) error {
	return s.DB.WithContext(ctx).Omit("Recipient", "Contributions").Create(w).Error
}

func (s *GormStore) Update(ctx context.Context, wishID uint64, in UpdateInput) (*Wish, error) {
	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Link != nil {
		updates["link"] = *in.Link
	}
	if in.Image != nil {
		updates["image"] = *in.Image
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.SortOrder != nil {
		updates["sort_order"] = *in.SortOrder
	}

	if len(updates) > 0 {
		res := s.DB.WithContext(ctx).Model(&Wish{}).
			Where("id = ? AND deleted_at IS NULL", wishID).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.Get(ctx, wishID)
}

func (s *GormStore) SoftDelete(ctx context.Context, wishID uint64) (*Wish, error) {
	res := s.DB.WithContext(ctx).Model(&Wish{}).
		Where("id = ? AND deleted_at IS NULL", wishID).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var w Wish
	if err := s.preload(s.DB.WithContext(ctx)).First(&w, "id = ?", wishID).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// Pledge applies a REDEEM/REMOVE inside one transaction. The wish row is
// locked FOR UPDATE before the contribution set is read, so two concurrent
// pledges against the same wish serialize and validation always sees the
// other writer's committed state. Rejections leave the ledger untouched.
func (s *GormStore) Pledge(ctx context.Context, wishID, gifterID uint64, req PledgeRequest) (*Wish, error) {
	var out *Wish
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w Wish
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND deleted_at IS NULL", wishID).
			First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var contribs []Contribution
		if err := tx.Where("wish_id = ?", wishID).Find(&contribs).Error; err != nil {
			return err
		}

		total, personal := 0, 0
		for _, c := range contribs {
			total += c.Amount
			if c.GifterID == gifterID {
				personal = c.Amount
			}
		}

		if err := ValidatePledge(req.Type, req.Amount, total, personal); err != nil {
			return err
		}

		// A zero amount is a validated no-op; writing nothing keeps a zero
		// balance indistinguishable from no contribution.
		if req.Amount > 0 {
			switch req.Type {
			case Redeem:
				res := tx.Model(&Contribution{}).
					Where("wish_id = ? AND gifter_id = ?", wishID, gifterID).
					Update("amount", gorm.Expr("amount + ?", req.Amount))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					c := Contribution{
						WishID:   wishID,
						GifterID: gifterID,
						Amount:   req.Amount,
						Message:  req.Message,
					}
					if err := tx.Omit("Gifter").Create(&c).Error; err != nil {
						return err
					}
				}
			case Remove:
				if err := tx.Model(&Contribution{}).
					Where("wish_id = ? AND gifter_id = ?", wishID, gifterID).
					Update("amount", gorm.Expr("amount - ?", req.Amount)).Error; err != nil {
					return err
				}
				// Drained pledges are dropped; totals treat them the same either way.
				if err := tx.
					Where("wish_id = ? AND gifter_id = ? AND amount <= 0", wishID, gifterID).
					Delete(&Contribution{}).Error; err != nil {
					return err
				}
			}
		}

		var fresh Wish
		if err := s.preload(tx).First(&fresh, "id = ?", wishID).Error; err != nil {
			return err
		}
		out = &fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
