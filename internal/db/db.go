package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cutclub/cutclub-backend/internal/config"
	"github.com/cutclub/cutclub-backend/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Subscription{},
		&models.WorkingHours{},
		&models.Appointment{},
		&models.PaymentIntent{},
		&models.PaymentRecord{},
		&models.PointsEntry{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	applyConstraints(db)
	seedPlans(db)

	return db
}

// applyConstraints adds the guarantees AutoMigrate cannot express. All
// statements are idempotent so restarts are safe.
func applyConstraints(db *gorm.DB) {
	db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`)

	// Two live appointments for the same barber can never overlap, even when
	// two transactions race past the application-level check.
	db.Exec(`
        DO $$ BEGIN
            ALTER TABLE appointments
                ADD CONSTRAINT appointments_no_overlap
                EXCLUDE USING gist (
                    barber_id WITH =,
                    tsrange(start_time, end_time) WITH &&
                )
                WHERE (status IN ('booked', 'confirmed'));
        EXCEPTION
            WHEN duplicate_table THEN NULL;
            WHEN duplicate_object THEN NULL;
        END $$;
    `)

	// The idempotency key dedupes retried creates; canceled rows free the key
	// so the same client can rebook the slot they gave up.
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_idem_key
            ON appointments (idempotency_key)
            WHERE status <> 'canceled'
    `)

	// One live appointment per client per start time.
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_client_slot
            ON appointments (client_id, start_time)
            WHERE status IN ('booked', 'confirmed')
    `)

	// Backstop for idempotent point credits under concurrent webhook delivery.
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_points_entries_ref
            ON points_entries (reason, ref_type, ref_id)
            WHERE delta > 0
    `)
}

// seedPlans fills an empty catalog with the launch plans. Existing rows are
// never touched; plan CRUD owns the table from then on.
func seedPlans(db *gorm.DB) {
	var n int64
	if err := db.Model(&models.Plan{}).Count(&n).Error; err != nil || n > 0 {
		return
	}

	plans := []models.Plan{
		{
			Name:         "Clube Corte",
			Description:  "Cortes mensais na barbearia",
			PriceCents:   9990,
			CutsPerMonth: 4,
			Channel:      "shop",
			Active:       true,
		},
		{
			Name:         "Clube Corte em Casa",
			Description:  "Atendimento em domicílio",
			PriceCents:   17990,
			CutsPerMonth: 2,
			Channel:      "home",
			Active:       true,
		},
	}
	if err := db.Create(&plans).Error; err != nil {
		log.Printf("seed plans: %v", err)
	}
}
