package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(gorm.ErrRecordNotFound) {
		t.Fatal("expected record-not-found to match")
	}
	if !IsNotFound(fmt.Errorf("load row: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("expected wrapped record-not-found to match")
	}
	if IsNotFound(errors.New("boom")) {
		t.Fatal("unrelated error should not match")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_inventory_units_serial"}

	if !IsUniqueViolation(pgErr, "") {
		t.Fatal("pg unique violation should match without constraint filter")
	}
	if !IsUniqueViolation(pgErr, "uq_inventory_units_serial") {
		t.Fatal("pg unique violation should match its constraint")
	}
	if IsUniqueViolation(pgErr, "uq_assignments_open_unit") {
		t.Fatal("constraint filter should reject other constraints")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: inventory_units.serial_number"), "") {
		t.Fatal("sqlite unique violation should match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should not match")
	}
}
