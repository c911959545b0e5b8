package inventory

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

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
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
		`CREATE TABLE IF NOT EXISTS employees (
  id TEXT PRIMARY KEY,
  emp_id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT,
  position TEXT,
  department TEXT,
  branch_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
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
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_assignments_open_unit
  ON assignments (inventory_unit_id)
  WHERE returned_at IS NULL AND deleted_at IS NULL;`,
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
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'STAFF',
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, warrantyMonths *int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:             uuid.New(),
		Name:           "Dell Latitude",
		Model:          "5450",
		CategoryID:     uuid.New(),
		BranchID:       uuid.New(),
		WarrantyMonths: warrantyMonths,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedUnit(t *testing.T, db *gorm.DB, productID uuid.UUID, status enums.UnitStatus, createdAt time.Time) *models.InventoryUnit {
	t.Helper()
	unit := &models.InventoryUnit{
		ID:           uuid.New(),
		ProductID:    productID,
		Status:       status,
		Condition:    enums.UnitConditionNew,
		PurchaseDate: createdAt,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(unit).Error)
	return unit
}

func seedOpenAssignment(t *testing.T, db *gorm.DB, unit *models.InventoryUnit) *models.Assignment {
	t.Helper()
	assignment := &models.Assignment{
		ID:              uuid.New(),
		ProductID:       unit.ProductID,
		InventoryUnitID: unit.ID,
		EmployeeID:      uuid.New(),
		AssignedByID:    uuid.New(),
		Status:          enums.AssignmentStatusAssigned,
		AssignedAt:      time.Now().UTC(),
	}
	require.NoError(t, db.Create(assignment).Error)
	return assignment
}
