package products

import (
	"fmt"
	"testing"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS branches (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS departments (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  model TEXT NOT NULL,
  category_id TEXT NOT NULL,
  branch_id TEXT NOT NULL,
  department_id TEXT,
  warranty_months INTEGER,
  compliance_status INTEGER NOT NULL DEFAULT 0,
  min_stock_level INTEGER NOT NULL DEFAULT 0,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS inventory_units (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  serial_number TEXT,
  status TEXT NOT NULL DEFAULT 'AVAILABLE',
  condition TEXT NOT NULL DEFAULT 'NEW',
  purchase_date DATETIME NOT NULL,
  purchase_price TEXT,
  warranty_expiry DATETIME,
  location TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_inventory_units_serial
  ON inventory_units (serial_number)
  WHERE serial_number IS NOT NULL AND deleted_at IS NULL;`,
		`CREATE TABLE IF NOT EXISTS assignments (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  inventory_unit_id TEXT NOT NULL,
  employee_id TEXT NOT NULL,
  assigned_by_id TEXT NOT NULL,
  pc_name TEXT,
  status TEXT NOT NULL DEFAULT 'ASSIGNED',
  assigned_at DATETIME NOT NULL,
  expected_return_at DATETIME,
  returned_at DATETIME,
  return_condition TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS stock_transactions (
  id TEXT PRIMARY KEY,
  inventory_unit_id TEXT NOT NULL,
  type TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  reason TEXT NOT NULL,
  reference TEXT NOT NULL,
  acting_user_id TEXT,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedBranch(t *testing.T, db *gorm.DB, name string) *models.Branch {
	t.Helper()
	branch := &models.Branch{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(branch).Error)
	return branch
}

func seedDepartment(t *testing.T, db *gorm.DB, name string) *models.Department {
	t.Helper()
	department := &models.Department{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(department).Error)
	return department
}

func seedUnitWithStatus(t *testing.T, db *gorm.DB, productID uuid.UUID, status enums.UnitStatus) *models.InventoryUnit {
	t.Helper()
	unit := &models.InventoryUnit{
		ID:           uuid.New(),
		ProductID:    productID,
		Status:       status,
		Condition:    enums.UnitConditionNew,
		PurchaseDate: time.Now().UTC(),
	}
	require.NoError(t, db.Create(unit).Error)
	return unit
}
