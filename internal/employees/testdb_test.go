package employees

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
	gormlogger "gorm.io/gorm/logger"
)

func setupEmployeesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE branches (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE employees (
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
		)`,
		`CREATE UNIQUE INDEX uq_employees_emp_id ON employees(emp_id) WHERE deleted_at IS NULL`,
		`CREATE TABLE assignments (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			inventory_unit_id TEXT NOT NULL,
			employee_id TEXT NOT NULL,
			assigned_by_id TEXT NOT NULL,
			pc_name TEXT,
			status TEXT NOT NULL,
			assigned_at DATETIME NOT NULL,
			expected_return_at DATETIME,
			returned_at DATETIME,
			return_condition TEXT,
			notes TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedBranch(t *testing.T, conn *gorm.DB, name string) models.Branch {
	t.Helper()
	branch := models.Branch{ID: uuid.New(), Name: name}
	require.NoError(t, conn.Create(&branch).Error)
	return branch
}

func seedEmployee(t *testing.T, conn *gorm.DB, empID, name string, branchID uuid.UUID) models.Employee {
	t.Helper()
	employee := models.Employee{
		ID:       uuid.New(),
		EmpID:    empID,
		Name:     name,
		BranchID: branchID,
	}
	require.NoError(t, conn.Create(&employee).Error)
	return employee
}

func seedAssignment(t *testing.T, conn *gorm.DB, employeeID uuid.UUID, returnedAt *time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		ID:              uuid.New(),
		ProductID:       uuid.New(),
		InventoryUnitID: uuid.New(),
		EmployeeID:      employeeID,
		AssignedByID:    uuid.New(),
		Status:          enums.AssignmentStatusAssigned,
		AssignedAt:      time.Now().UTC().Add(-48 * time.Hour),
		ReturnedAt:      returnedAt,
	}
	if returnedAt != nil {
		assignment.Status = enums.AssignmentStatusReturned
	}
	require.NoError(t, conn.Create(&assignment).Error)
	return assignment
}
