package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
)

// CreateActor stores new actor, ErrConflictData on duplicate login
func (s *Store) CreateActor(ctx context.Context, actor *models.Actor) error {
	defer s.lock(ctx)()

	if _, ok := s.actors[actor.ID]; ok {
		return models.ErrConflictData
	}
	for _, a := range s.actors {
		if a.Login == actor.Login {
			return models.ErrConflictData
		}
	}

	s.actors[actor.ID] = *actor
	return nil
}

// GetActorByID returns actor by id
func (s *Store) GetActorByID(ctx context.Context, id string) (*models.Actor, error) {
	defer s.lock(ctx)()

	a, ok := s.actors[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return &a, nil
}

// GetActorByLogin returns actor by login
func (s *Store) GetActorByLogin(ctx context.Context, login string) (*models.Actor, error) {
	defer s.lock(ctx)()

	for _, a := range s.actors {
		if a.Login == login {
			return &a, nil
		}
	}
	return nil, models.ErrDataNotFound
}

// LockActor checks actor exists. The store lock held by WithinTx already serializes writers.
func (s *Store) LockActor(ctx context.Context, id string) error {
	defer s.lock(ctx)()

	if _, ok := s.actors[id]; !ok {
		return models.ErrDataNotFound
	}
	return nil
}

// UpdateActorRating stores aggregate rating
func (s *Store) UpdateActorRating(ctx context.Context, id string, mean decimal.Decimal, count int, at time.Time) error {
	defer s.lock(ctx)()

	a, ok := s.actors[id]
	if !ok {
		return models.ErrDataNotFound
	}
	a.Rating = mean
	a.TotalRatings = count
	a.UpdatedAt = at
	s.actors[id] = a
	return nil
}

// ListActors returns active actors best rated first
func (s *Store) ListActors(ctx context.Context, filter models.ActorFilter) ([]models.Actor, error) {
	defer s.lock(ctx)()

	city := strings.TrimSpace(filter.City)

	actors := []models.Actor{}
	for _, a := range s.actors {
		if !a.IsActive {
			continue
		}
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		if city != "" && !strings.EqualFold(a.City, city) {
			continue
		}
		actors = append(actors, a)
	}

	sort.Slice(actors, func(i, j int) bool {
		a, b := actors[i], actors[j]
		if !a.Rating.Equal(b.Rating) {
			return a.Rating.GreaterThan(b.Rating)
		}
		if a.TotalRatings != b.TotalRatings {
			return a.TotalRatings > b.TotalRatings
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return window(actors, filter.Limit, filter.Offset), nil
}

// UpdateActorProfile replaces editable profile fields
func (s *Store) UpdateActorProfile(ctx context.Context, id string, upd models.ProfileUpdate, at time.Time) (*models.Actor, error) {
	defer s.lock(ctx)()

	a, ok := s.actors[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	a.DisplayName = upd.DisplayName
	a.BusinessName = upd.BusinessName
	a.Phone = upd.Phone
	a.Address = upd.Address
	a.City = upd.City
	a.UpdatedAt = at
	s.actors[id] = a
	return &a, nil
}
