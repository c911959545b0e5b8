package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/config"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minUsernameLen = 3
	minPasswordLen = 8
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// View is the API shape of an operator account. The password hash never
// leaves the service.
type View struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func newView(u models.User) View {
	return View{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CreateInput captures a new account. Role defaults to STAFF when empty.
type CreateInput struct {
	Username string
	Password string
	Role     string
}

// Service owns operator accounts.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	List(ctx context.Context) ([]View, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role string) (*View, error)
	ChangePassword(ctx context.Context, id uuid.UUID, password string) error
	Delete(ctx context.Context, id, actorID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	password config.PasswordConfig
}

// NewService wires the user service.
func NewService(repo Repository, tx txRunner, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx, password: password}, nil
}

func validUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "username must be at least %d characters", minUsernameLen)
	}
	return username, nil
}

func validPassword(password string) error {
	if len(password) < minPasswordLen {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	username, err := validUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if err := validPassword(input.Password); err != nil {
		return nil, err
	}

	role := enums.UserRoleStaff
	if input.Role != "" {
		parsed, err := enums.ParseUserRole(input.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		role = parsed
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "uq_users_username") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert user")
	}

	view := newView(*user)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	view := newView(*user)
	return &view, nil
}

func (s *service) List(ctx context.Context) ([]View, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, newView(row))
	}
	return views, nil
}

// ChangeRole swaps an account's role. The last remaining admin cannot be
// demoted.
func (s *service) ChangeRole(ctx context.Context, id uuid.UUID, role string) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	parsed, err := enums.ParseUserRole(role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if user.Role == parsed {
			return nil
		}

		if user.Role == enums.UserRoleAdmin {
			admins, err := repo.CountByRole(ctx, enums.UserRoleAdmin.String())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
			}
			if admins <= 1 {
				return pkgerrors.New(pkgerrors.CodeConflict, "cannot demote the last admin")
			}
		}

		user.Role = parsed
		if err := repo.Save(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user role")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := validPassword(password); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hash password")
	}
	user.PasswordHash = hash
	if err := s.repo.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

// Delete soft-deletes an account. Self-deletion and removing the last admin
// are both refused.
func (s *service) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if id == actorID {
		return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete your own account")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}

		if user.Role == enums.UserRoleAdmin {
			admins, err := repo.CountByRole(ctx, enums.UserRoleAdmin.String())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
			}
			if admins <= 1 {
				return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete the last admin")
			}
		}

		if err := repo.SoftDelete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
		}
		return nil
	})
}
