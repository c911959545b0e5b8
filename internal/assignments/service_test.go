package assignments

import (
	"context"
	"testing"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/inventory"
	"github.com/assetdesk/assetdesk-backend/internal/refs"
	"github.com/assetdesk/assetdesk-backend/internal/stock"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn := setupAssignmentsTestDB(t)
	stockSvc, err := stock.NewService(stock.NewRepository(conn))
	require.NoError(t, err)

	checker := refs.NewChecker(conn)
	client := db.FromConn(conn)
	unitSvc, err := inventory.NewService(inventory.NewRepository(conn), stockSvc, checker, client)
	require.NoError(t, err)

	svc, err := NewService(NewRepository(conn), unitSvc, stockSvc, checker, client)
	require.NoError(t, err)
	return svc, conn
}

func futureTime(d time.Duration) *time.Time {
	at := time.Now().UTC().Add(d)
	return &at
}

func TestAssign_FIFOPicksOldestAvailable(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Nina Vu")
	product := seedProduct(t, conn, "MacBook Air")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, base)
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, base.AddDate(0, 1, 0))

	view, err := svc.Assign(ctx, AssignInput{
		ProductID:    product.ID,
		EmployeeID:   employee.ID,
		AssignedByID: admin.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, view.InventoryUnit)
	assert.Equal(t, oldest.ID, view.InventoryUnit.ID)
	assert.Equal(t, enums.AssignmentStatusAssigned, view.Status)
	assert.Equal(t, employee.ID, view.Employee.ID)
	assert.Equal(t, admin.Username, view.AssignedBy.Username)

	// unit flipped and the OUT entry landed in the same commit
	var unit models.InventoryUnit
	require.NoError(t, conn.First(&unit, "id = ?", oldest.ID).Error)
	assert.Equal(t, enums.UnitStatusAssigned, unit.Status)

	var entry models.StockTransaction
	require.NoError(t, conn.First(&entry, "inventory_unit_id = ?", oldest.ID).Error)
	assert.Equal(t, enums.StockTransactionTypeOut, entry.Type)
	assert.Equal(t, stock.AssignmentReference(view.ID), entry.Reference)
	assert.Contains(t, entry.Reason, "Nina Vu")
	require.NotNil(t, entry.ActingUserID)
	assert.Equal(t, admin.ID, *entry.ActingUserID)
}

func TestAssign_ExplicitUnit(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Omar Haddad")
	product := seedProduct(t, conn, "Dock Station")

	base := time.Now().UTC()
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, base.AddDate(0, 0, -30))
	newer := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, base)

	view, err := svc.Assign(ctx, AssignInput{
		ProductID:       product.ID,
		InventoryUnitID: &newer.ID,
		EmployeeID:      employee.ID,
		AssignedByID:    admin.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, newer.ID, view.InventoryUnit.ID)

	// naming a unit does not let the caller bypass the status check
	damaged := seedUnit(t, conn, product.ID, enums.UnitStatusDamaged, base)
	_, err = svc.Assign(ctx, AssignInput{
		ProductID:       product.ID,
		InventoryUnitID: &damaged.ID,
		EmployeeID:      employee.ID,
		AssignedByID:    admin.ID,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestAssign_Failures(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Lena Moss")
	product := seedProduct(t, conn, "Monitor")
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())

	t.Run("missing actor", func(t *testing.T) {
		_, err := svc.Assign(ctx, AssignInput{ProductID: product.ID, EmployeeID: employee.ID})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)
	})

	t.Run("past expected return", func(t *testing.T) {
		past := time.Now().UTC().AddDate(0, 0, -1)
		_, err := svc.Assign(ctx, AssignInput{
			ProductID:        product.ID,
			EmployeeID:       employee.ID,
			AssignedByID:     admin.ID,
			ExpectedReturnAt: &past,
		})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.Assign(ctx, AssignInput{ProductID: uuid.New(), EmployeeID: employee.ID, AssignedByID: admin.ID})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.Assign(ctx, AssignInput{ProductID: product.ID, EmployeeID: uuid.New(), AssignedByID: admin.ID})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	})

	t.Run("out of stock", func(t *testing.T) {
		empty := seedProduct(t, conn, "Headset")
		_, err := svc.Assign(ctx, AssignInput{ProductID: empty.ID, EmployeeID: employee.ID, AssignedByID: admin.ID})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	})
}

func TestAssign_OpenAssignmentIndexBackstop(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Iris Chen")
	product := seedProduct(t, conn, "Tablet")

	// unit still reads AVAILABLE but an open assignment row already exists,
	// mimicking a racing writer that committed first
	unit := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())
	require.NoError(t, conn.Create(&models.Assignment{
		ID:              uuid.New(),
		ProductID:       product.ID,
		InventoryUnitID: unit.ID,
		EmployeeID:      employee.ID,
		AssignedByID:    admin.ID,
		Status:          enums.AssignmentStatusAssigned,
		AssignedAt:      time.Now().UTC(),
	}).Error)

	_, err := svc.Assign(ctx, AssignInput{
		ProductID:       product.ID,
		InventoryUnitID: &unit.ID,
		EmployeeID:      employee.ID,
		AssignedByID:    admin.ID,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	// the losing transaction must not leave a second OUT entry behind
	var entries int64
	require.NoError(t, conn.Model(&models.StockTransaction{}).Where("inventory_unit_id = ?", unit.ID).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestReturn_RoundTrip(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Piotr Nowak")
	product := seedProduct(t, conn, "Laptop")
	unit := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())

	assigned, err := svc.Assign(ctx, AssignInput{
		ProductID:    product.ID,
		EmployeeID:   employee.ID,
		AssignedByID: admin.ID,
	})
	require.NoError(t, err)

	returned, err := svc.Return(ctx, assigned.ID, ReturnInput{Condition: "GOOD"})
	require.NoError(t, err)
	assert.Equal(t, enums.AssignmentStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)
	require.NotNil(t, returned.ReturnCondition)
	assert.Equal(t, "GOOD", *returned.ReturnCondition)

	// unit is back in the pool and immediately assignable again
	var fresh models.InventoryUnit
	require.NoError(t, conn.First(&fresh, "id = ?", unit.ID).Error)
	assert.Equal(t, enums.UnitStatusAvailable, fresh.Status)

	var entries []models.StockTransaction
	require.NoError(t, conn.Where("inventory_unit_id = ?", unit.ID).Order("created_at").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, enums.StockTransactionTypeOut, entries[0].Type)
	assert.Equal(t, enums.StockTransactionTypeIn, entries[1].Type)
	assert.Equal(t, stock.ReturnReference(assigned.ID), entries[1].Reference)

	_, err = svc.Assign(ctx, AssignInput{
		ProductID:    product.ID,
		EmployeeID:   employee.ID,
		AssignedByID: admin.ID,
	})
	require.NoError(t, err)
}

func TestReturn_Dispositions(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Sara Kim")
	product := seedProduct(t, conn, "Camera")

	cases := []struct {
		inventoryStatus string
		condition       string
		wantStatus      enums.UnitStatus
		wantCondition   string
	}{
		{"DAMAGED", "Cracked screen", enums.UnitStatusDamaged, "Cracked screen"},
		{"MAINTENANCE", "", enums.UnitStatusMaintenance, enums.UnitConditionNew},
		{"AVAILABLE", "USED", enums.UnitStatusAvailable, "USED"},
		{"", "", enums.UnitStatusAvailable, enums.UnitConditionNew},
	}
	for _, tc := range cases {
		unit := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())
		assigned, err := svc.Assign(ctx, AssignInput{
			ProductID:       product.ID,
			InventoryUnitID: &unit.ID,
			EmployeeID:      employee.ID,
			AssignedByID:    admin.ID,
		})
		require.NoError(t, err)

		returned, err := svc.Return(ctx, assigned.ID, ReturnInput{
			InventoryStatus: tc.inventoryStatus,
			Condition:       tc.condition,
		})
		require.NoError(t, err)

		// the disposition moves the unit, the reported condition sticks to it
		var fresh models.InventoryUnit
		require.NoError(t, conn.First(&fresh, "id = ?", unit.ID).Error)
		assert.Equal(t, tc.wantStatus, fresh.Status, "inventoryStatus %q", tc.inventoryStatus)
		assert.Equal(t, tc.wantCondition, fresh.Condition, "inventoryStatus %q", tc.inventoryStatus)

		if tc.condition == "" {
			assert.Nil(t, returned.ReturnCondition)
		} else {
			require.NotNil(t, returned.ReturnCondition)
			assert.Equal(t, tc.condition, *returned.ReturnCondition)
		}
	}
}

func TestReturn_TwiceConflicts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Max Roy")
	product := seedProduct(t, conn, "Phone")
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())

	assigned, err := svc.Assign(ctx, AssignInput{
		ProductID:    product.ID,
		EmployeeID:   employee.ID,
		AssignedByID: admin.ID,
	})
	require.NoError(t, err)

	_, err = svc.Return(ctx, assigned.ID, ReturnInput{Condition: "GOOD"})
	require.NoError(t, err)

	_, err = svc.Return(ctx, assigned.ID, ReturnInput{Condition: "GOOD"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = svc.Return(ctx, uuid.New(), ReturnInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestUpdate_OpenOnly(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Ana Silva")
	product := seedProduct(t, conn, "Projector")
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())

	assigned, err := svc.Assign(ctx, AssignInput{
		ProductID:    product.ID,
		EmployeeID:   employee.ID,
		AssignedByID: admin.ID,
	})
	require.NoError(t, err)

	pcName := "WS-0042"
	updated, err := svc.Update(ctx, assigned.ID, UpdateInput{
		PCName:           &pcName,
		ExpectedReturnAt: futureTime(14 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, pcName, *updated.PCName)
	require.NotNil(t, updated.ExpectedReturnAt)

	past := time.Now().UTC().AddDate(0, 0, -3)
	_, err = svc.Update(ctx, assigned.ID, UpdateInput{ExpectedReturnAt: &past})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.Return(ctx, assigned.ID, ReturnInput{Condition: "GOOD"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, assigned.ID, UpdateInput{PCName: &pcName})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestListActive_FiltersAndOverdue(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	alice := seedEmployee(t, conn, "Alice Wong")
	bob := seedEmployee(t, conn, "Bob Marsh")
	laptop := seedProduct(t, conn, "Laptop")
	monitor := seedProduct(t, conn, "Monitor")
	seedUnit(t, conn, laptop.ID, enums.UnitStatusAvailable, time.Now().UTC())
	seedUnit(t, conn, laptop.ID, enums.UnitStatusAvailable, time.Now().UTC())
	seedUnit(t, conn, monitor.ID, enums.UnitStatusAvailable, time.Now().UTC())

	first, err := svc.Assign(ctx, AssignInput{
		ProductID:        laptop.ID,
		EmployeeID:       alice.ID,
		AssignedByID:     admin.ID,
		ExpectedReturnAt: futureTime(time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, AssignInput{ProductID: laptop.ID, EmployeeID: bob.ID, AssignedByID: admin.ID})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, AssignInput{ProductID: monitor.ID, EmployeeID: bob.ID, AssignedByID: admin.ID})
	require.NoError(t, err)

	// walk the deadline into the past to make the first assignment overdue
	overdueAt := time.Now().UTC().Add(-25 * time.Hour)
	require.NoError(t, conn.Model(&models.Assignment{}).Where("id = ?", first.ID).Update("expected_return_at", overdueAt).Error)

	views, total, err := svc.ListActive(ctx, ActiveQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, views, 3)

	views, total, err = svc.ListActive(ctx, ActiveQuery{EmployeeID: &bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	views, total, err = svc.ListActive(ctx, ActiveQuery{ProductID: &monitor.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	views, total, err = svc.ListActive(ctx, ActiveQuery{Search: "alice"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, alice.ID, views[0].Employee.ID)

	// search also reaches the unit serial and the product model
	require.NoError(t, conn.Model(&models.InventoryUnit{}).
		Where("id = ?", first.InventoryUnit.ID).Update("serial_number", "SN-FIND-ME").Error)
	views, total, err = svc.ListActive(ctx, ActiveQuery{Search: "sn-find"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, first.ID, views[0].ID)

	require.NoError(t, conn.Model(&models.Product{}).
		Where("id = ?", monitor.ID).Update("model", "UltraSharp").Error)
	views, total, err = svc.ListActive(ctx, ActiveQuery{Search: "ultrasharp"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, monitor.ID, views[0].Product.ID)

	views, total, err = svc.ListActive(ctx, ActiveQuery{OverdueOnly: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, first.ID, views[0].ID)
	assert.True(t, views[0].IsOverdue)
	assert.Equal(t, 1, views[0].DaysOverdue)
}

func TestListHistory_OrderedByReturn(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Dmitri Ro")
	product := seedProduct(t, conn, "Keyboard")
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())

	var returnedIDs []uuid.UUID
	for i := 0; i < 3; i++ {
		assigned, err := svc.Assign(ctx, AssignInput{ProductID: product.ID, EmployeeID: employee.ID, AssignedByID: admin.ID})
		require.NoError(t, err)
		_, err = svc.Return(ctx, assigned.ID, ReturnInput{Condition: "GOOD"})
		require.NoError(t, err)
		returnedIDs = append(returnedIDs, assigned.ID)
		// spread returned_at so the ordering is unambiguous
		require.NoError(t, conn.Model(&models.Assignment{}).Where("id = ?", assigned.ID).
			Update("returned_at", time.Now().UTC().Add(time.Duration(i)*time.Hour)).Error)
	}

	views, total, err := svc.ListHistory(ctx, HistoryQuery{Pagination: pagination.Params{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, views, 2)
	assert.Equal(t, returnedIDs[2], views[0].ID)
	assert.Equal(t, enums.AssignmentStatusReturned, views[0].Status)
	assert.False(t, views[0].IsOverdue)
}

func TestListByEmployeeAndProduct(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	employee := seedEmployee(t, conn, "Noor Aziz")
	product := seedProduct(t, conn, "Scanner")
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())

	assigned, err := svc.Assign(ctx, AssignInput{ProductID: product.ID, EmployeeID: employee.ID, AssignedByID: admin.ID})
	require.NoError(t, err)

	byEmployee, err := svc.ListByEmployee(ctx, employee.ID)
	require.NoError(t, err)
	require.Len(t, byEmployee, 1)
	assert.Equal(t, assigned.ID, byEmployee[0].ID)

	byProduct, err := svc.ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, byProduct, 1)

	_, err = svc.ListByEmployee(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	_, err = svc.ListByProduct(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestAnalytics(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	alice := seedEmployee(t, conn, "Alice Wong")
	bob := seedEmployee(t, conn, "Bob Marsh")
	laptop := seedProduct(t, conn, "Laptop")
	for i := 0; i < 4; i++ {
		seedUnit(t, conn, laptop.ID, enums.UnitStatusAvailable, time.Now().UTC())
	}

	// four assignments: three for alice (one overdue, two returned), one for bob
	overdueTarget, err := svc.Assign(ctx, AssignInput{
		ProductID: laptop.ID, EmployeeID: alice.ID, AssignedByID: admin.ID,
		ExpectedReturnAt: futureTime(time.Minute),
	})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		assigned, err := svc.Assign(ctx, AssignInput{ProductID: laptop.ID, EmployeeID: alice.ID, AssignedByID: admin.ID})
		require.NoError(t, err)
		_, err = svc.Return(ctx, assigned.ID, ReturnInput{Condition: "GOOD"})
		require.NoError(t, err)
	}
	_, err = svc.Assign(ctx, AssignInput{ProductID: laptop.ID, EmployeeID: bob.ID, AssignedByID: admin.ID})
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, conn.Model(&models.Assignment{}).Where("id = ?", overdueTarget.ID).Update("expected_return_at", past).Error)

	analytics, err := svc.Analytics(ctx, AnalyticsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, analytics.TotalAssignments)
	assert.EqualValues(t, 2, analytics.ActiveAssignments)
	assert.EqualValues(t, 1, analytics.OverdueAssignments)
	assert.InDelta(t, 50.0, analytics.ReturnRate, 0.01)

	require.NotEmpty(t, analytics.TopEmployees)
	assert.Equal(t, alice.ID, analytics.TopEmployees[0].EmployeeID)
	assert.EqualValues(t, 3, analytics.TopEmployees[0].Count)
	require.NotEmpty(t, analytics.TopProducts)
	assert.Equal(t, laptop.ID, analytics.TopProducts[0].ProductID)
	assert.EqualValues(t, 4, analytics.TopProducts[0].Count)
}

func TestAnalytics_DateRange(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, conn)
	alice := seedEmployee(t, conn, "Alice Wong")
	bob := seedEmployee(t, conn, "Bob Marsh")
	laptop := seedProduct(t, conn, "Laptop")
	for i := 0; i < 3; i++ {
		seedUnit(t, conn, laptop.ID, enums.UnitStatusAvailable, time.Now().UTC())
	}

	old, err := svc.Assign(ctx, AssignInput{ProductID: laptop.ID, EmployeeID: alice.ID, AssignedByID: admin.ID})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, AssignInput{ProductID: laptop.ID, EmployeeID: bob.ID, AssignedByID: admin.ID})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, AssignInput{ProductID: laptop.ID, EmployeeID: bob.ID, AssignedByID: admin.ID})
	require.NoError(t, err)

	// push one assignment out of the window
	lastYear := time.Now().UTC().AddDate(-1, 0, 0)
	require.NoError(t, conn.Model(&models.Assignment{}).Where("id = ?", old.ID).Update("assigned_at", lastYear).Error)

	from := time.Now().UTC().AddDate(0, -1, 0)
	analytics, err := svc.Analytics(ctx, AnalyticsQuery{From: &from})
	require.NoError(t, err)
	assert.EqualValues(t, 2, analytics.TotalAssignments)
	// live counts describe the present regardless of the window
	assert.EqualValues(t, 3, analytics.ActiveAssignments)
	require.NotEmpty(t, analytics.TopEmployees)
	assert.Equal(t, bob.ID, analytics.TopEmployees[0].EmployeeID)
	assert.EqualValues(t, 2, analytics.TopEmployees[0].Count)
	require.NotEmpty(t, analytics.TopProducts)
	assert.EqualValues(t, 2, analytics.TopProducts[0].Count)

	to := lastYear.AddDate(0, 0, 1)
	analytics, err = svc.Analytics(ctx, AnalyticsQuery{To: &to})
	require.NoError(t, err)
	assert.EqualValues(t, 1, analytics.TotalAssignments)

	_, err = svc.Analytics(ctx, AnalyticsQuery{From: &to, To: &lastYear})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestAnalytics_EmptySystem(t *testing.T) {
	svc, _ := newTestService(t)

	analytics, err := svc.Analytics(context.Background(), AnalyticsQuery{})
	require.NoError(t, err)
	assert.Zero(t, analytics.TotalAssignments)
	assert.Zero(t, analytics.ReturnRate)
}
