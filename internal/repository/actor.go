package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/repository/postgres"
	"github.com/shopspring/decimal"
)

const (
	actorColumns = `id, login, password_hash, role, display_name, business_name, phone, address, city,
						rating, total_ratings, is_active, created_at, updated_at`

	insertActorQuery = `
						INSERT INTO actors (id, login, password_hash, role, display_name, business_name, phone, address, city,
						                    rating, total_ratings, is_active, created_at, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`
	selectActorByIDQuery = `
						SELECT ` + actorColumns + ` FROM actors
						WHERE id = $1
`
	selectActorByLoginQuery = `
						SELECT ` + actorColumns + ` FROM actors
						WHERE login = $1
`
	lockActorQuery = `
						SELECT id FROM actors
						WHERE id = $1
						FOR UPDATE
`
	updateActorProfileQuery = `
						UPDATE actors
						SET display_name = $1, business_name = $2, phone = $3, address = $4, city = $5, updated_at = $6
						WHERE id = $7
						RETURNING ` + actorColumns + `
`
	updateActorRatingQuery = `
						UPDATE actors
						SET rating = $1, total_ratings = $2, updated_at = $3
						WHERE id = $4
`
)

// ActorRepository implements ActorRepository interface
type ActorRepository struct {
	db *postgres.DB
}

// NewActorRepository creates new ActorRepository instance
func NewActorRepository(db *postgres.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

func scanActor(row interface{ Scan(dest ...any) error }, a *models.Actor) error {
	var role string
	err := row.Scan(&a.ID, &a.Login, &a.PasswordHash, &role, &a.DisplayName, &a.BusinessName, &a.Phone,
		&a.Address, &a.City, &a.Rating, &a.TotalRatings, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	a.Role = models.Role(role)
	return err
}

// CreateActor inserts new actor
func (ar *ActorRepository) CreateActor(ctx context.Context, actor *models.Actor) error {
	_, err := ar.db.Exec(ctx, insertActorQuery, actor.ID, actor.Login, actor.PasswordHash, string(actor.Role),
		actor.DisplayName, actor.BusinessName, actor.Phone, actor.Address, actor.City,
		actor.Rating, actor.TotalRatings, actor.IsActive, actor.CreatedAt, actor.UpdatedAt)
	return translate(ar.db, "create actor", err)
}

// GetActorByID returns actor by id
func (ar *ActorRepository) GetActorByID(ctx context.Context, id string) (*models.Actor, error) {
	actor := models.Actor{}
	if err := scanActor(ar.db.QueryRow(ctx, selectActorByIDQuery, id), &actor); err != nil {
		return nil, translate(ar.db, "get actor", err)
	}
	return &actor, nil
}

// GetActorByLogin returns actor by login
func (ar *ActorRepository) GetActorByLogin(ctx context.Context, login string) (*models.Actor, error) {
	actor := models.Actor{}
	if err := scanActor(ar.db.QueryRow(ctx, selectActorByLoginQuery, login), &actor); err != nil {
		return nil, translate(ar.db, "get actor by login", err)
	}
	return &actor, nil
}

// LockActor locks actor row until transaction ends
func (ar *ActorRepository) LockActor(ctx context.Context, id string) error {
	var locked string
	err := ar.db.QueryRow(ctx, lockActorQuery, id).Scan(&locked)
	return translate(ar.db, "lock actor", err)
}

// UpdateActorRating stores aggregate rating
func (ar *ActorRepository) UpdateActorRating(ctx context.Context, id string, mean decimal.Decimal, count int, at time.Time) error {
	cmd, err := ar.db.Exec(ctx, updateActorRatingQuery, mean, count, at, id)
	if err != nil {
		return translate(ar.db, "update actor rating", err)
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// ListActors returns active actors best rated first
func (ar *ActorRepository) ListActors(ctx context.Context, filter models.ActorFilter) ([]models.Actor, error) {
	var (
		where = []string{"is_active"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Role != "" {
		where = append(where, "role = "+arg(string(filter.Role)))
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		where = append(where, "city ILIKE "+arg(city))
	}

	query := `SELECT ` + actorColumns + ` FROM actors WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY rating DESC, total_ratings DESC, created_at` +
		` LIMIT ` + arg(limitOrDefault(filter.Limit)) + ` OFFSET ` + arg(max(filter.Offset, 0))

	rows, err := ar.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(ar.db, "list actors", err)
	}
	defer rows.Close()

	actors := []models.Actor{}

	for rows.Next() {
		actor := models.Actor{}
		if err := scanActor(rows, &actor); err != nil {
			return nil, translate(ar.db, "scan actor", err)
		}
		actors = append(actors, actor)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(ar.db, "list actors", err)
	}

	return actors, nil
}

// UpdateActorProfile replaces editable profile fields
func (ar *ActorRepository) UpdateActorProfile(ctx context.Context, id string, upd models.ProfileUpdate, at time.Time) (*models.Actor, error) {
	actor := models.Actor{}
	err := scanActor(ar.db.QueryRow(ctx, updateActorProfileQuery, upd.DisplayName, upd.BusinessName, upd.Phone,
		upd.Address, upd.City, at, id), &actor)
	if err != nil {
		return nil, translate(ar.db, "update actor profile", err)
	}
	return &actor, nil
}
