package inventory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/refs"
	"github.com/assetdesk/assetdesk-backend/internal/stock"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn := setupInventoryTestDB(t)
	stockSvc, err := stock.NewService(stock.NewRepository(conn))
	require.NoError(t, err)

	svc, err := NewService(NewRepository(conn), stockSvc, refs.NewChecker(conn), db.FromConn(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestAddUnits(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	months := 12
	product := seedProduct(t, conn, &months)
	actor := uuid.New()
	purchase := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	units, err := svc.AddUnits(ctx, AddUnitsInput{
		ProductID:     product.ID,
		Quantity:      3,
		SerialNumbers: []string{"SN-001", "SN-002"},
		PurchaseDate:  purchase,
		ActingUserID:  &actor,
		Initial:       true,
	})
	require.NoError(t, err)
	require.Len(t, units, 3)

	assert.Equal(t, "SN-001", *units[0].SerialNumber)
	assert.Equal(t, "SN-002", *units[1].SerialNumber)
	assert.Nil(t, units[2].SerialNumber)
	for _, unit := range units {
		assert.Equal(t, enums.UnitStatusAvailable, unit.Status)
		assert.Equal(t, enums.UnitConditionNew, unit.Condition)
		require.NotNil(t, unit.WarrantyExp)
		assert.Equal(t, purchase.AddDate(0, 12, 0), unit.WarrantyExp.UTC())
	}

	var entries []models.StockTransaction
	require.NoError(t, conn.Order("reference").Find(&entries).Error)
	require.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, enums.StockTransactionTypeIn, entry.Type)
		assert.Equal(t, 1, entry.Quantity)
		assert.True(t, strings.HasPrefix(entry.Reference, "INIT-"+product.ID.String()), "reference %s", entry.Reference)
		assert.Equal(t, stock.InitialReference(product.ID, i+1), entry.Reference)
		require.NotNil(t, entry.ActingUserID)
		assert.Equal(t, actor, *entry.ActingUserID)
	}
}

func TestAddUnits_NoWarranty(t *testing.T) {
	svc, conn := newTestService(t)

	product := seedProduct(t, conn, nil)
	units, err := svc.AddUnits(context.Background(), AddUnitsInput{
		ProductID:    product.ID,
		Quantity:     1,
		PurchaseDate: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Nil(t, units[0].WarrantyExp)
}

func TestAddUnits_DuplicateSerialRollsBack(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	_, err := svc.AddUnits(ctx, AddUnitsInput{
		ProductID:     product.ID,
		Quantity:      1,
		SerialNumbers: []string{"SN-DUP"},
		PurchaseDate:  time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = svc.AddUnits(ctx, AddUnitsInput{
		ProductID:     product.ID,
		Quantity:      2,
		SerialNumbers: []string{"SN-NEW", "SN-DUP"},
		PurchaseDate:  time.Now().UTC(),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	var count int64
	require.NoError(t, conn.Model(&models.InventoryUnit{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "failed batch must not leave partial rows")

	var entries int64
	require.NoError(t, conn.Model(&models.StockTransaction{}).Count(&entries).Error)
	assert.EqualValues(t, 1, entries)
}

func TestAddUnits_Validation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, nil)

	cases := []struct {
		name  string
		input AddUnitsInput
		code  pkgerrors.Code
	}{
		{"zero quantity", AddUnitsInput{ProductID: product.ID, PurchaseDate: time.Now()}, pkgerrors.CodeValidation},
		{"over limit", AddUnitsInput{ProductID: product.ID, Quantity: MaxUnitsPerRequest + 1, PurchaseDate: time.Now()}, pkgerrors.CodeValidation},
		{"too many serials", AddUnitsInput{ProductID: product.ID, Quantity: 1, SerialNumbers: []string{"a", "b"}, PurchaseDate: time.Now()}, pkgerrors.CodeValidation},
		{"missing purchase date", AddUnitsInput{ProductID: product.ID, Quantity: 1}, pkgerrors.CodeValidation},
		{"unknown product", AddUnitsInput{ProductID: uuid.New(), Quantity: 1, PurchaseDate: time.Now()}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddUnits(ctx, tc.input)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestSelectForAssignment_FIFO(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, base)
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, base.Add(48*time.Hour))
	// older than everything but not AVAILABLE, must be skipped
	seedUnit(t, conn, product.ID, enums.UnitStatusDamaged, base.Add(-72*time.Hour))

	picked, err := svc.SelectForAssignment(ctx, conn, product.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, picked.ID)
}

func TestSelectForAssignment_ExplicitUnit(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	other := seedProduct(t, conn, nil)
	now := time.Now().UTC()

	available := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, now)
	assigned := seedUnit(t, conn, product.ID, enums.UnitStatusAssigned, now)
	foreign := seedUnit(t, conn, other.ID, enums.UnitStatusAvailable, now)

	picked, err := svc.SelectForAssignment(ctx, conn, product.ID, &available.ID)
	require.NoError(t, err)
	assert.Equal(t, available.ID, picked.ID)

	_, err = svc.SelectForAssignment(ctx, conn, product.ID, &assigned.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	// anything not AVAILABLE is refused even when named explicitly
	for _, status := range []enums.UnitStatus{enums.UnitStatusRetired, enums.UnitStatusDamaged, enums.UnitStatusMaintenance} {
		unit := seedUnit(t, conn, product.ID, status, now)
		_, err = svc.SelectForAssignment(ctx, conn, product.ID, &unit.ID)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "status %s got %v", status, err)
	}

	_, err = svc.SelectForAssignment(ctx, conn, product.ID, &foreign.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	missing := uuid.New()
	_, err = svc.SelectForAssignment(ctx, conn, product.ID, &missing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestSelectForAssignment_OutOfStock(t *testing.T) {
	svc, conn := newTestService(t)

	product := seedProduct(t, conn, nil)
	seedUnit(t, conn, product.ID, enums.UnitStatusAssigned, time.Now().UTC())

	_, err := svc.SelectForAssignment(context.Background(), conn, product.ID, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestUpdateUnit_StatusChangeLogsAdjustment(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	unit := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())
	actor := uuid.New()

	status := enums.UnitStatusMaintenance
	updated, err := svc.UpdateUnit(ctx, unit.ID, UpdateUnitInput{
		Status:       &status,
		ActingUserID: &actor,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.UnitStatusMaintenance, updated.Status)

	var entry models.StockTransaction
	require.NoError(t, conn.First(&entry, "inventory_unit_id = ?", unit.ID).Error)
	assert.Equal(t, enums.StockTransactionTypeAdjustment, entry.Type)
	assert.Contains(t, entry.Reason, "AVAILABLE")
	assert.Contains(t, entry.Reason, "MAINTENANCE")
	assert.True(t, strings.HasPrefix(entry.Reference, "UPD-"), "reference %s", entry.Reference)
}

func TestUpdateUnit_StatusBlockedWhileAssigned(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	unit := seedUnit(t, conn, product.ID, enums.UnitStatusAssigned, time.Now().UTC())
	seedOpenAssignment(t, conn, unit)

	status := enums.UnitStatusAvailable
	_, err := svc.UpdateUnit(ctx, unit.ID, UpdateUnitInput{Status: &status})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	// metadata edits stay allowed while assigned
	location := "HQ storage"
	updated, err := svc.UpdateUnit(ctx, unit.ID, UpdateUnitInput{Location: &location})
	require.NoError(t, err)
	assert.Equal(t, location, *updated.Location)
}

func TestUpdateUnit_RejectsManualAssigned(t *testing.T) {
	svc, conn := newTestService(t)

	product := seedProduct(t, conn, nil)
	unit := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())

	status := enums.UnitStatusAssigned
	_, err := svc.UpdateUnit(context.Background(), unit.ID, UpdateUnitInput{Status: &status})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestRetireUnit(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	unit := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())

	retired, err := svc.RetireUnit(ctx, unit.ID, RetireInput{Reason: "Broken hinge"})
	require.NoError(t, err)
	assert.Equal(t, enums.UnitStatusRetired, retired.Status)

	var entry models.StockTransaction
	require.NoError(t, conn.First(&entry, "inventory_unit_id = ?", unit.ID).Error)
	assert.Equal(t, enums.StockTransactionTypeRetired, entry.Type)
	assert.Equal(t, "Broken hinge", entry.Reason)

	_, err = svc.RetireUnit(ctx, unit.ID, RetireInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestDeleteUnit_PurgesHistory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	unit := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())

	closed := seedOpenAssignment(t, conn, unit)
	returnedAt := time.Now().UTC()
	require.NoError(t, conn.Model(closed).Updates(map[string]any{
		"returned_at": returnedAt,
		"status":      enums.AssignmentStatusReturned,
	}).Error)
	require.NoError(t, conn.Create(&models.StockTransaction{
		ID:              uuid.New(),
		InventoryUnitID: unit.ID,
		Type:            enums.StockTransactionTypeIn,
		Quantity:        1,
		Reason:          "seed",
		Reference:       "ADD-1-1",
	}).Error)

	require.NoError(t, svc.DeleteUnit(ctx, unit.ID))

	var units, assignments, entries int64
	require.NoError(t, conn.Unscoped().Model(&models.InventoryUnit{}).Where("id = ?", unit.ID).Count(&units).Error)
	require.NoError(t, conn.Unscoped().Model(&models.Assignment{}).Where("inventory_unit_id = ?", unit.ID).Count(&assignments).Error)
	require.NoError(t, conn.Model(&models.StockTransaction{}).Where("inventory_unit_id = ?", unit.ID).Count(&entries).Error)
	assert.Zero(t, units)
	assert.Zero(t, assignments)
	assert.Zero(t, entries)
}

func TestDeleteUnit_BlockedWhileAssigned(t *testing.T) {
	svc, conn := newTestService(t)

	product := seedProduct(t, conn, nil)
	unit := seedUnit(t, conn, product.ID, enums.UnitStatusAssigned, time.Now().UTC())
	seedOpenAssignment(t, conn, unit)

	err := svc.DeleteUnit(context.Background(), unit.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestDeleteUnits_AllOrNothing(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	now := time.Now().UTC()
	first := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, now)
	second := seedUnit(t, conn, product.ID, enums.UnitStatusDamaged, now)
	for _, unit := range []*models.InventoryUnit{first, second} {
		require.NoError(t, conn.Create(&models.StockTransaction{
			ID:              uuid.New(),
			InventoryUnitID: unit.ID,
			Type:            enums.StockTransactionTypeIn,
			Quantity:        1,
			Reason:          "seed",
			Reference:       "ADD-1-1",
		}).Error)
	}

	t.Run("missing id fails the batch", func(t *testing.T) {
		err := svc.DeleteUnits(ctx, []uuid.UUID{first.ID, uuid.New()})
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

		var count int64
		require.NoError(t, conn.Model(&models.InventoryUnit{}).Count(&count).Error)
		assert.EqualValues(t, 2, count, "a failed batch must delete nothing")
	})

	t.Run("open assignment fails the batch", func(t *testing.T) {
		held := seedUnit(t, conn, product.ID, enums.UnitStatusAssigned, now)
		seedOpenAssignment(t, conn, held)

		err := svc.DeleteUnits(ctx, []uuid.UUID{first.ID, held.ID})
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

		var count int64
		require.NoError(t, conn.Model(&models.InventoryUnit{}).Where("id = ?", first.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("deletes units and their history together", func(t *testing.T) {
		require.NoError(t, svc.DeleteUnits(ctx, []uuid.UUID{first.ID, second.ID}))

		var units, entries int64
		require.NoError(t, conn.Unscoped().Model(&models.InventoryUnit{}).
			Where("id IN ?", []uuid.UUID{first.ID, second.ID}).Count(&units).Error)
		require.NoError(t, conn.Model(&models.StockTransaction{}).
			Where("inventory_unit_id IN ?", []uuid.UUID{first.ID, second.ID}).Count(&entries).Error)
		assert.Zero(t, units)
		assert.Zero(t, entries)
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		err := svc.DeleteUnits(ctx, nil)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	})
}

func TestPublicUnitInfo(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	unit := seedUnit(t, conn, product.ID, enums.UnitStatusAssigned, time.Now().UTC())

	holder := &models.Employee{
		ID:       uuid.New(),
		EmpID:    "EMP-PUB-1",
		Name:     "Karla Reyes",
		BranchID: uuid.New(),
	}
	require.NoError(t, conn.Create(holder).Error)
	assignment := seedOpenAssignment(t, conn, unit)
	require.NoError(t, conn.Model(assignment).Update("employee_id", holder.ID).Error)

	view, err := svc.PublicUnitInfo(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, unit.ID, view.ID)
	require.NotNil(t, view.Product)
	assert.Equal(t, product.Name, view.Product.Name)
	require.NotNil(t, view.CurrentAssignment)
	assert.Equal(t, assignment.ID, view.CurrentAssignment.ID)
	require.NotNil(t, view.CurrentAssignment.Employee)
	assert.Equal(t, "Karla Reyes", view.CurrentAssignment.Employee.Name)

	// a unit sitting in stock has no holder to show
	idle := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, time.Now().UTC())
	view, err = svc.PublicUnitInfo(ctx, idle.ID)
	require.NoError(t, err)
	assert.Nil(t, view.CurrentAssignment)

	_, err = svc.PublicUnitInfo(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestMarkReturned_Disposition(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)

	cases := []struct {
		disposition   string
		condition     string
		wantStatus    enums.UnitStatus
		wantCondition string
	}{
		{"DAMAGED", "Cracked screen", enums.UnitStatusDamaged, "Cracked screen"},
		{"MAINTENANCE", "", enums.UnitStatusMaintenance, enums.UnitConditionNew},
		{"AVAILABLE", "USED", enums.UnitStatusAvailable, "USED"},
		{"GOOD", "", enums.UnitStatusAvailable, enums.UnitConditionNew},
		{"", "", enums.UnitStatusAvailable, enums.UnitConditionNew},
	}
	for _, tc := range cases {
		unit := seedUnit(t, conn, product.ID, enums.UnitStatusAssigned, time.Now().UTC())
		got, err := svc.MarkReturned(ctx, conn, unit.ID, tc.disposition, tc.condition)
		require.NoError(t, err)
		assert.Equal(t, tc.wantStatus, got.Status, "disposition %q", tc.disposition)
		assert.Equal(t, tc.wantCondition, got.Condition, "disposition %q condition %q", tc.disposition, tc.condition)
	}
}

func TestStatusCounts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, nil)
	now := time.Now().UTC()
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, now)
	seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, now)
	seedUnit(t, conn, product.ID, enums.UnitStatusAssigned, now)
	seedUnit(t, conn, product.ID, enums.UnitStatusDamaged, now)

	// soft-deleted rows are not counted
	ghost := seedUnit(t, conn, product.ID, enums.UnitStatusAvailable, now)
	require.NoError(t, conn.Delete(ghost).Error)

	counts, err := svc.StatusCounts(ctx, product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, counts.Total)
	assert.EqualValues(t, 2, counts.Available)
	assert.EqualValues(t, 1, counts.Assigned)
	assert.EqualValues(t, 1, counts.Damaged)

	_, err = svc.StatusCounts(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}
