package wish

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps wishes in process memory behind a single mutex, so the
// read-validate-write sequence of Pledge is atomic the same way the
// transactional store's is. It backs tests and local development.
type MemoryStore struct {
	mu     sync.Mutex
	nextID uint64
	wishes map[uint64]*Wish
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, wishes: map[uint64]*Wish{}}
}

func (s *MemoryStore) Get(ctx context.Context, wishID uint64) (*Wish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wishes[wishID]
	if !ok || w.DeletedAt != nil {
		return nil, ErrNotFound
	}
	return copyWish(w), nil
}

func (s *MemoryStore) ListByRecipient(ctx context.Context, recipientID uint64, authorID *uint64) ([]Wish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Wish
	for _, w := range s.wishes {
		if w.DeletedAt != nil || w.RecipientID != recipientID {
			continue
		}
		if authorID != nil && w.AuthorID != *authorID {
			continue
		}
		out = append(out, *copyWish(w))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, w *Wish) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.ID = s.nextID
	s.nextID++
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	s.wishes[w.ID] = copyWish(w)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, wishID uint64, in UpdateInput) (*Wish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wishes[wishID]
	if !ok || w.DeletedAt != nil {
		return nil, ErrNotFound
	}
	if in.Title != nil {
		w.Title = *in.Title
	}
	if in.Description != nil {
		w.Description = in.Description
	}
	if in.Link != nil {
		w.Link = in.Link
	}
	if in.Image != nil {
		w.Image = in.Image
	}
	if in.Price != nil {
		w.Price = in.Price
	}
	if in.SortOrder != nil {
		w.SortOrder = *in.SortOrder
	}
	return copyWish(w), nil
}

func (s *MemoryStore) SoftDelete(ctx context.Context, wishID uint64) (*Wish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wishes[wishID]
	if !ok || w.DeletedAt != nil {
		return nil, ErrNotFound
	}
	now := time.Now()
	w.DeletedAt = &now
	return copyWish(w), nil
}

func (s *MemoryStore) Pledge(ctx context.Context, wishID, gifterID uint64, req PledgeRequest) (*Wish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wishes[wishID]
	if !ok || w.DeletedAt != nil {
		return nil, ErrNotFound
	}

	total, personal := 0, 0
	for _, c := range w.Contributions {
		total += c.Amount
		if c.GifterID == gifterID {
			personal = c.Amount
		}
	}

	if err := ValidatePledge(req.Type, req.Amount, total, personal); err != nil {
		return nil, err
	}

	if req.Amount > 0 {
		switch req.Type {
		case Redeem:
			applied := false
			for i := range w.Contributions {
				if w.Contributions[i].GifterID == gifterID {
					w.Contributions[i].Amount += req.Amount
					applied = true
					break
				}
			}
			if !applied {
				w.Contributions = append(w.Contributions, Contribution{
					WishID:    wishID,
					GifterID:  gifterID,
					Amount:    req.Amount,
					Message:   req.Message,
					CreatedAt: time.Now(),
				})
			}
		case Remove:
			kept := w.Contributions[:0]
			for _, c := range w.Contributions {
				if c.GifterID == gifterID {
					c.Amount -= req.Amount
					if c.Amount <= 0 {
						continue
					}
				}
				kept = append(kept, c)
			}
			w.Contributions = kept
		}
	}

	return copyWish(w), nil
}

func copyWish(w *Wish) *Wish {
	out := *w
	out.Contributions = make([]Contribution, len(w.Contributions))
	copy(out.Contributions, w.Contributions)
	return &out
}
