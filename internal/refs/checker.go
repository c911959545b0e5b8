package refs

import (
	"context"

	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Checker validates that referenced rows exist before a write depends on them.
type Checker interface {
	WithTx(tx *gorm.DB) Checker
	Product(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Employee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	Branch(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	Category(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Department(ctx context.Context, id uuid.UUID) (*models.Department, error)
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type checker struct {
	db *gorm.DB
}

// NewChecker builds a Checker tied to the provided GORM DB.
func NewChecker(conn *gorm.DB) Checker {
	return &checker{db: conn}
}

// WithTx returns a checker bound to the provided transaction.
func (c *checker) WithTx(tx *gorm.DB) Checker {
	return &checker{db: tx}
}

func (c *checker) Product(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	return &row, c.first(ctx, &row, id, "product")
}

func (c *checker) Employee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var row models.Employee
	return &row, c.first(ctx, &row, id, "employee")
}

func (c *checker) Branch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var row models.Branch
	return &row, c.first(ctx, &row, id, "branch")
}

func (c *checker) Category(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var row models.Category
	return &row, c.first(ctx, &row, id, "category")
}

func (c *checker) Department(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	var row models.Department
	return &row, c.first(ctx, &row, id, "department")
}

func (c *checker) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var row models.User
	return &row, c.first(ctx, &row, id, "user")
}

func (c *checker) first(ctx context.Context, dest any, id uuid.UUID, entity string) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, entity+" id required")
	}
	if err := c.db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
	}
	return nil
}
