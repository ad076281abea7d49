package infra

import (
	"fmt"

	"cajaledger/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// to create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express: the partial unique index guarding the single active
// session per register, and the triggers that make the operation and audit
// tables insert-only at the database level (not just by convention).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the schema and applies SQL patches. Also used by
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.TipoOperacion{},
		&model.SesionCaja{},
		&model.OperacionCaja{},
		&model.RegistroAuditoria{},
		&model.CuentaCorriente{},
		&model.CajaConfig{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
// Each statement uses IF NOT EXISTS / OR REPLACE semantics so re-running on
// an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One session per register may be "abierta" or "cerrando" at a time.
		// The index makes a racing second open() fail atomically at insert.
		{"partial unique index for single active session", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_sesiones_caja_activa
    ON sesiones_caja (caja_id)
    WHERE estado IN ('abierta', 'cerrando')`},

		// Insert-only ledgers: operations and audit rows admit no UPDATE or
		// DELETE, whoever connects. Corrections are offsetting inserts.
		{"insert-only trigger function", `
CREATE OR REPLACE FUNCTION reject_mutation() RETURNS trigger AS $$
BEGIN
  RAISE EXCEPTION '% rows are insert-only', TG_TABLE_NAME;
END;
$$ LANGUAGE plpgsql`},
		{"operaciones_caja insert-only", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_operaciones_caja_insert_only') THEN
    CREATE TRIGGER trg_operaciones_caja_insert_only
      BEFORE UPDATE OR DELETE ON operaciones_caja
      FOR EACH ROW EXECUTE FUNCTION reject_mutation();
  END IF;
END $$`},
		{"registros_auditoria insert-only", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_registros_auditoria_insert_only') THEN
    CREATE TRIGGER trg_registros_auditoria_insert_only
      BEFORE UPDATE OR DELETE ON registros_auditoria
      FOR EACH ROW EXECUTE FUNCTION reject_mutation();
  END IF;
END $$`},

		// One receivable per originating sale; makes the venta-credito
		// notification idempotent even under concurrent re-delivery.
		{"unique venta origen per cuenta", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_cuentas_venta_origen
    ON cuentas_corrientes (venta_origen_id)
    WHERE venta_origen_id IS NOT NULL`},

		// Collection-priority listing: oldest open obligation first.
		{"cuentas abiertas listing index", `
CREATE INDEX IF NOT EXISTS idx_cuentas_deudor_abiertas
    ON cuentas_corrientes (deudor_id, created_at)
    WHERE estado <> 'saldada'`},

		// Audit reporting per register and date range.
		{"auditoria caja/fecha index", `
CREATE INDEX IF NOT EXISTS idx_auditoria_caja_fecha
    ON registros_auditoria (caja_id, created_at)`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
