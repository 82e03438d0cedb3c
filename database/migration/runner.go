// Package migration applies versioned, programmatic GORM migrations tracked
// in a schema_migrations table. The table definition is portable across
// sqlite and postgres.
package migration

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/clinicq/logger"
)

// Migration describes a single schema or data migration.
type Migration struct {
	ID          string
	Description string
	Up          func(*gorm.DB) error
}

// record is a row of schema_migrations.
type record struct {
	ID        string    `gorm:"primaryKey;size:255"`
	AppliedAt time.Time `gorm:"not null"`
}

func (record) TableName() string { return "schema_migrations" }

// Runner applies migrations in registration order, each in its own transaction.
type Runner struct {
	db         *gorm.DB
	log        *logger.Logger
	migrations []Migration
}

// NewRunner creates a runner bound to db.
func NewRunner(db *gorm.DB, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Runner{db: db, log: log.WithComponent("migration")}
}

// Add registers migrations. IDs must be unique.
func (r *Runner) Add(ms ...Migration) *Runner {
	r.migrations = append(r.migrations, ms...)
	return r
}

// Run applies every pending migration and returns how many were applied.
func (r *Runner) Run() (int, error) {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	seen := make(map[string]bool, len(r.migrations))
	applied := 0
	for _, m := range r.migrations {
		if seen[m.ID] {
			return applied, fmt.Errorf("duplicate migration id %q", m.ID)
		}
		seen[m.ID] = true

		done, err := r.isApplied(m.ID)
		if err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if done {
			r.log.Debug("Migration already applied", map[string]interface{}{"id": m.ID})
			continue
		}

		r.log.Info("Applying migration", map[string]interface{}{
			"id":          m.ID,
			"description": m.Description,
		})
		err = r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{ID: m.ID, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		applied++
	}
	return applied, nil
}

// Applied lists the ids already recorded, oldest first.
func (r *Runner) Applied() ([]string, error) {
	var rows []record
	if err := r.db.Order("applied_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

func (r *Runner) isApplied(id string) (bool, error) {
	var count int64
	err := r.db.Model(&record{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
