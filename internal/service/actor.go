package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rookgm/streetmart/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// TokenService issues and verifies auth tokens
type TokenService interface {
	CreateToken(p models.Principal) (string, error)
	VerifyToken(tokenString string) (*models.Principal, error)
}

// RegisterRequest is registration data of new actor
type RegisterRequest struct {
	Login        string
	Password     string
	Role         models.Role
	DisplayName  string
	BusinessName string
	Phone        string
	Address      string
	City         string
}

// ActorService implements ActorService interface
type ActorService struct {
	base
	repo   ActorRepository
	tokens TokenService
	cost   int
}

// NewActorService creates new ActorService instance
func NewActorService(repo ActorRepository, tokens TokenService, opts ...Option) *ActorService {
	return &ActorService{
		base:   newBase(opts),
		repo:   repo,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
	}
}

// Register creates actor and returns auth token
func (as *ActorService) Register(ctx context.Context, req RegisterRequest) (*models.Actor, string, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		return nil, "", models.NewValidationError("login", "is required")
	}
	if req.Password == "" {
		return nil, "", models.NewValidationError("password", "is required")
	}
	if !req.Role.Valid() {
		return nil, "", models.NewValidationError("role", "must be customer, vendor or supplier")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), as.cost)
	if err != nil {
		return nil, "", err
	}

	now := as.now()
	actor := models.Actor{
		ID:           as.newID(),
		Login:        login,
		PasswordHash: string(hash),
		Role:         req.Role,
		DisplayName:  req.DisplayName,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		Rating:       decimal.Zero,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := as.repo.CreateActor(ctx, &actor); err != nil {
		return nil, "", err
	}

	token, err := as.tokens.CreateToken(actor.Principal())
	if err != nil {
		return nil, "", err
	}

	return &actor, token, nil
}

// Login checks credentials and returns auth token
func (as *ActorService) Login(ctx context.Context, login, password string) (string, error) {
	actor, err := as.repo.GetActorByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", err
	}

	if !actor.IsActive {
		return "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return as.tokens.CreateToken(actor.Principal())
}

// Profile returns actor of principal
func (as *ActorService) Profile(ctx context.Context, p models.Principal) (*models.Actor, error) {
	return as.repo.GetActorByID(ctx, p.ActorID)
}

// PublicProfile returns actor by id
func (as *ActorService) PublicProfile(ctx context.Context, id string) (*models.Actor, error) {
	actor, err := as.repo.GetActorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsActive {
		return nil, models.ErrDataNotFound
	}
	return actor, nil
}

// ListActors returns active actors best rated first
func (as *ActorService) ListActors(ctx context.Context, filter models.ActorFilter) ([]models.Actor, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, models.NewValidationError("role", "must be customer, vendor or supplier")
	}
	return as.repo.ListActors(ctx, filter)
}

// UpdateProfile replaces editable profile fields of principal
func (as *ActorService) UpdateProfile(ctx context.Context, p models.Principal, upd models.ProfileUpdate) (*models.Actor, error) {
	upd = models.ProfileUpdate{
		DisplayName:  strings.TrimSpace(upd.DisplayName),
		BusinessName: strings.TrimSpace(upd.BusinessName),
		Phone:        strings.TrimSpace(upd.Phone),
		Address:      strings.TrimSpace(upd.Address),
		City:         strings.TrimSpace(upd.City),
	}
	if upd.DisplayName == "" {
		return nil, models.NewValidationError("display_name", "is required")
	}

	return as.repo.UpdateActorProfile(ctx, p.ActorID, upd, as.now())
}
