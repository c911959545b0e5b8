package employees

import (
	"context"
	"testing"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/refs"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), refs.NewChecker(conn), db.FromConn(conn))
	require.NoError(t, err)
	return svc
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	conn := setupEmployeesTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	branch := seedBranch(t, conn, "HQ")

	view, err := svc.Create(ctx, CreateInput{
		EmpID:      "EMP-001",
		Name:       "Daniela Reyes",
		Email:      strPtr("daniela@example.com"),
		Position:   strPtr("Engineer"),
		Department: strPtr("Platform"),
		BranchID:   branch.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "EMP-001", view.EmpID)
	assert.Equal(t, "Daniela Reyes", view.Name)
	require.NotNil(t, view.Branch)
	assert.Equal(t, branch.ID, view.Branch.ID)
	assert.Equal(t, "HQ", view.Branch.Name)
	assert.Zero(t, view.ActiveAssignments)
}

func TestCreate_Failures(t *testing.T) {
	conn := setupEmployeesTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	branch := seedBranch(t, conn, "HQ")
	seedEmployee(t, conn, "EMP-001", "Existing", branch.ID)

	t.Run("missing emp id", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{Name: "No Badge", BranchID: branch.ID})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{EmpID: "EMP-002", BranchID: branch.ID})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("unknown branch", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{EmpID: "EMP-002", Name: "Ghost Branch", BranchID: uuid.New()})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	})

	t.Run("duplicate emp id", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{EmpID: "EMP-001", Name: "Copycat", BranchID: branch.ID})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	})
}

func TestCreate_ReusesEmpIDOfDeletedEmployee(t *testing.T) {
	conn := setupEmployeesTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	branch := seedBranch(t, conn, "HQ")
	old := seedEmployee(t, conn, "EMP-001", "Departed", branch.ID)
	require.NoError(t, svc.Delete(ctx, old.ID))

	view, err := svc.Create(ctx, CreateInput{EmpID: "EMP-001", Name: "Replacement", BranchID: branch.ID})
	require.NoError(t, err)
	assert.Equal(t, "EMP-001", view.EmpID)
}

func TestGet(t *testing.T) {
	conn := setupEmployeesTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	branch := seedBranch(t, conn, "HQ")
	employee := seedEmployee(t, conn, "EMP-001", "Daniela Reyes", branch.ID)
	seedAssignment(t, conn, employee.ID, nil)
	seedAssignment(t, conn, employee.ID, nil)
	returned := time.Now().UTC()
	seedAssignment(t, conn, employee.ID, &returned)

	view, err := svc.Get(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.ActiveAssignments)

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestList(t *testing.T) {
	conn := setupEmployeesTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	hq := seedBranch(t, conn, "HQ")
	remote := seedBranch(t, conn, "Remote")

	carla := seedEmployee(t, conn, "EMP-003", "Carla Mendes", hq.ID)
	alice := models.Employee{
		ID:         uuid.New(),
		EmpID:      "EMP-001",
		Name:       "Alice Tan",
		Email:      strPtr("alice@example.com"),
		Department: strPtr("Finance"),
		BranchID:   hq.ID,
	}
	require.NoError(t, conn.Create(&alice).Error)
	seedEmployee(t, conn, "EMP-002", "Bruno Costa", remote.ID)
	seedAssignment(t, conn, carla.ID, nil)

	t.Run("ordered by name with counts", func(t *testing.T) {
		views, err := svc.List(ctx, ListQuery{})
		require.NoError(t, err)
		require.Len(t, views, 3)
		assert.Equal(t, "Alice Tan", views[0].Name)
		assert.Equal(t, "Bruno Costa", views[1].Name)
		assert.Equal(t, "Carla Mendes", views[2].Name)
		assert.Equal(t, int64(1), views[2].ActiveAssignments)
		require.NotNil(t, views[1].Branch)
		assert.Equal(t, "Remote", views[1].Branch.Name)
	})

	t.Run("search matches name emp id and email", func(t *testing.T) {
		views, err := svc.List(ctx, ListQuery{Search: "alice@"})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Alice Tan", views[0].Name)

		views, err = svc.List(ctx, ListQuery{Search: "emp-002"})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Bruno Costa", views[0].Name)
	})

	t.Run("branch filter", func(t *testing.T) {
		views, err := svc.List(ctx, ListQuery{BranchID: &hq.ID})
		require.NoError(t, err)
		assert.Len(t, views, 2)
	})

	t.Run("department filter", func(t *testing.T) {
		views, err := svc.List(ctx, ListQuery{Department: "fin"})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Alice Tan", views[0].Name)
	})
}

func TestUpdate(t *testing.T) {
	conn := setupEmployeesTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	hq := seedBranch(t, conn, "HQ")
	remote := seedBranch(t, conn, "Remote")
	employee := seedEmployee(t, conn, "EMP-001", "Daniela Reyes", hq.ID)
	seedEmployee(t, conn, "EMP-002", "Other", hq.ID)

	view, err := svc.Update(ctx, employee.ID, UpdateInput{
		Name:     strPtr("Daniela R. Silva"),
		Position: strPtr("Staff Engineer"),
		BranchID: &remote.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Daniela R. Silva", view.Name)
	require.NotNil(t, view.Position)
	assert.Equal(t, "Staff Engineer", *view.Position)
	require.NotNil(t, view.Branch)
	assert.Equal(t, "Remote", view.Branch.Name)
	assert.Equal(t, "EMP-001", view.EmpID)

	t.Run("unknown branch", func(t *testing.T) {
		ghost := uuid.New()
		_, err := svc.Update(ctx, employee.ID, UpdateInput{BranchID: &ghost})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	})

	t.Run("duplicate emp id", func(t *testing.T) {
		_, err := svc.Update(ctx, employee.ID, UpdateInput{EmpID: strPtr("EMP-002")})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, employee.ID, UpdateInput{Name: strPtr("")})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})
}

func TestDelete(t *testing.T) {
	conn := setupEmployeesTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	branch := seedBranch(t, conn, "HQ")
	employee := seedEmployee(t, conn, "EMP-001", "Daniela Reyes", branch.ID)
	assignment := seedAssignment(t, conn, employee.ID, nil)

	err := svc.Delete(ctx, employee.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	returned := time.Now().UTC()
	require.NoError(t, conn.Model(&models.Assignment{}).
		Where("id = ?", assignment.ID).
		Updates(map[string]any{"returned_at": returned, "status": "RETURNED"}).
		Error)

	require.NoError(t, svc.Delete(ctx, employee.ID))

	_, err = svc.Get(ctx, employee.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	var total int64
	require.NoError(t, conn.Unscoped().Model(&models.Employee{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}
