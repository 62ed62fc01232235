package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joao-fontenele/shopflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shopflow-otel-demo/internal/storage"
)

// Directory owns user identity.
type Directory struct {
	repo   *UserRepository
	logger *slog.Logger
}

func NewDirectory(repo *UserRepository, logger *slog.Logger) *Directory {
	return &Directory{
		repo:   repo,
		logger: logger,
	}
}

// Login returns the user registered under email, creating it on first use.
// An empty name defaults to the local part of the email.
func (d *Directory) Login(ctx context.Context, email, name string) (*domain.User, error) {
	user, err := d.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	user = &domain.User{ID: uuid.New().String(), Email: email, Name: name}

	created, err := d.repo.CreateIfAbsent(ctx, user)
	if err != nil {
		return nil, err
	}
	if !created {
		// lost a race with a concurrent login for the same email
		user, err = d.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fmt.Errorf("user %s vanished during login", email)
		}
		return user, nil
	}

	d.logger.InfoContext(ctx, "created user via login", "user_id", user.ID)
	return user, nil
}

func (d *Directory) Create(ctx context.Context, email, name string) (*domain.User, error) {
	user := &domain.User{ID: uuid.New().String(), Email: email, Name: name}

	if err := d.repo.Create(ctx, user); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, fmt.Errorf("user %s already exists: %w", email, domain.ErrConflict)
		}
		return nil, err
	}

	d.logger.InfoContext(ctx, "created user", "user_id", user.ID)
	return user, nil
}

func (d *Directory) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

func (d *Directory) List(ctx context.Context) ([]domain.User, error) {
	return d.repo.List(ctx)
}

func (d *Directory) Count(ctx context.Context) (int, error) {
	return d.repo.Count(ctx)
}
