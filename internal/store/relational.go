// Package store loads produced layouts into external stores: a relational database via
// gorm, MongoDB for documents and Redis as a key-value cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reshape/internal/integrity"
	"reshape/internal/loadorder"
	"reshape/internal/logger"
	"reshape/internal/models"
)

// Store names used in load errors and metrics.
const (
	NameRelational = "relational"
	NameDocuments  = "documents"
	NameCache      = "cache"
)

const defaultBatchSize = 500

var ErrUnsupportedDriver = errors.New("unsupported relational driver")

// Relational loads tabular layouts into a SQL database.
type Relational struct {
	db        *gorm.DB
	log       *logger.Logger
	batchSize int
}

// OpenRelational connects with driver "postgres" or "sqlite".
func OpenRelational(driver, dsn string, batchSize int, log *logger.Logger) (*Relational, error) {
	var dialector gorm.Dialector

	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	return NewRelational(db, batchSize, log), nil
}

// NewRelational wraps an open connection.
func NewRelational(db *gorm.DB, batchSize int, log *logger.Logger) *Relational {
	if log == nil {
		log = logger.Discard()
	}

	if batchSize < 1 {
		batchSize = defaultBatchSize
	}

	return &Relational{db: db, batchSize: batchSize, log: log}
}

// DB exposes the connection.
func (r *Relational) DB() *gorm.DB {
	return r.db
}

// Close releases the connection pool.
func (r *Relational) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Load replaces the tables of a layout. Existing tables are dropped children first,
// then each table is created and filled parents first, each inside its own transaction.
// Loading stops at the first failing table, which is reported as *integrity.LoadError.
// It returns the rows inserted per table.
func (r *Relational) Load(ctx context.Context, layout string, tables []models.Table, graph *loadorder.Graph) (map[string]int, error) {
	order, err := graph.Order()
	if err != nil {
		return nil, &integrity.LoadError{Store: NameRelational, Table: layout, Err: err}
	}

	byName := make(map[string]models.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	for i := len(order) - 1; i >= 0; i-- {
		if err := r.db.WithContext(ctx).Migrator().DropTable(order[i]); err != nil {
			return nil, &integrity.LoadError{Store: NameRelational, Table: order[i], Err: fmt.Errorf("drop: %w", err)}
		}
	}

	loaded := make(map[string]int, len(order))

	for _, name := range order {
		t, ok := byName[name]
		if !ok {
			continue
		}

		start := time.Now()

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Table(name).AutoMigrate(t.Model()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			if t.Len() == 0 {
				return nil
			}

			if err := tx.Table(name).CreateInBatches(slicePointer(t.Records), r.batchSize).Error; err != nil {
				return fmt.Errorf("insert: %w", err)
			}

			return nil
		})
		if err != nil {
			return loaded, &integrity.LoadError{Store: NameRelational, Table: name, Err: err}
		}

		loaded[name] = t.Len()
		r.log.Debug("loaded table", "layout", layout, "table", name, "rows", t.Len(), "duration", time.Since(start))
	}

	r.log.Info("loaded layout", "store", NameRelational, "layout", layout, "tables", len(loaded))

	return loaded, nil
}

// slicePointer returns a pointer to a copy of a slice value.
func slicePointer(records any) any {
	v := reflect.ValueOf(records)
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)

	return ptr.Interface()
}

// Count returns the number of rows in a table.
func (r *Relational) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table(table).Count(&n).Error

	return n, err
}

// CheckReferences counts orphaned foreign keys in the loaded tables with a LEFT JOIN per
// relation. Relations whose tables are absent are skipped.
func (r *Relational) CheckReferences(ctx context.Context, layout string, relations []integrity.Relation) (*integrity.Report, error) {
	report := integrity.NewReport(layout)
	migrator := r.db.WithContext(ctx).Migrator()

	for _, rel := range relations {
		if !migrator.HasTable(rel.Table) || !migrator.HasTable(rel.Target) {
			continue
		}

		var orphans int64

		err := r.db.WithContext(ctx).
			Table(rel.Table+" AS c").
			Joins(fmt.Sprintf("LEFT JOIN %s AS p ON c.%s = p.%s", rel.Target, rel.Column, rel.TargetColumn)).
			Where(fmt.Sprintf("c.%s IS NOT NULL AND p.%s IS NULL", rel.Column, rel.TargetColumn)).
			Count(&orphans).Error
		if err != nil {
			return report, fmt.Errorf("failed to check %s.%s: %w", rel.Table, rel.Column, err)
		}

		if orphans > 0 {
			report.AddError(&integrity.ReferentialIntegrityError{
				Table:  rel.Table,
				Column: rel.Column,
				Target: rel.Target,
				Value:  fmt.Sprintf("%d orphaned rows", orphans),
			})
		}
	}

	return report, nil
}
