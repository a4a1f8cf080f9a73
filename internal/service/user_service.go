package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/repository"
)

type UserService interface {
	Register(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, p models.Principal) ([]*models.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Register создаёт или обновляет пользователя по open_id
func (s *userService) Register(ctx context.Context, user *models.User) (*models.User, error) {
	user.OpenID = strings.TrimSpace(user.OpenID)
	if user.OpenID == "" {
		return nil, fmt.Errorf("%w: open_id is required", ErrInvalidInput)
	}

	switch user.Role {
	case "":
		user.Role = models.RoleUser
	case models.RoleUser, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, user.Role)
	}

	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context, p models.Principal) ([]*models.User, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx)
}
