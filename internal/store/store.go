// Package store implements the key/value parameter persistence layer
// (spec §4.7, §3 "Parameter key schema"). It is wired to the event bus:
// on construction it subscribes to the four mutation events and the four
// hydration events; mutations are delete-then-insert upserts, and
// hydration replies are broadcast back over the bus using the exact
// notify_*/*_failed contract effects and the transport expect.
//
// Persistence itself is grounded on the teacher's
// internal/infrastructure/db package (GORM + SQLite, WAL mode, busy
// timeout, connection pooling) adapted from a row-per-entity repository
// into a single key/value table, per the original source's database.h.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/l-bnp/audioproc/internal/dsp"
	"github.com/l-bnp/audioproc/internal/eventbus"
	"github.com/l-bnp/audioproc/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Parameter is the single table backing all persisted state: one row
// per (parameter_name), typed columns for each value kind (spec §3).
type Parameter struct {
	ParameterName        string `gorm:"column:parameter_name;primaryKey"`
	ParameterIntValue    int64
	ParameterDoubleValue float64
	ParameterStrValue    string
}

func (Parameter) TableName() string { return "audio_parameters" }

// Config configures the underlying SQLite connection.
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig mirrors the teacher's db.DefaultConfig pool sizing,
// scaled down for a process that makes far fewer persistence calls than
// a music-library database.
func DefaultConfig() Config {
	return Config{
		Path:            "audioproc.db",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}

// Store is the parameter_name -> value persistence layer. It is an
// explicit collaborator (not a singleton), constructed with the bus it
// should subscribe against, per spec §9's redesign note.
type Store struct {
	mu sync.Mutex
	db *gorm.DB
}

// Open opens (creating if necessary) the SQLite-backed parameter table
// and subscribes Store's handlers to bus. The subscription tokens are
// not kept, and Close does not remove the subscriptions from bus.
func Open(cfg Config, bus *eventbus.Bus) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:       gormlogger.Default.LogMode(gormlogger.Warn),
		PrepareStmt:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying sql database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := db.AutoMigrate(&Parameter{}); err != nil {
		return nil, fmt.Errorf("migrate audio_parameters: %w", err)
	}

	s := &Store{db: db}
	s.subscribe(bus)

	logger.Info("parameter store opened", logger.String("path", cfg.Path))
	return s, nil
}

// Close releases the underlying database connection. Bus subscriptions
// are not unregistered here: the Store is expected to live for the
// process lifetime, per spec §5 "Parameter store and transport hold
// external connections for their entire lifetimes."
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// upsert performs the delete-then-insert pattern spec §4.7 mandates so
// that two consecutive writes of the same key leave exactly one row
// (invariant 7).
func (s *Store) upsert(row Parameter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parameter_name = ?", row.ParameterName).Delete(&Parameter{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
}

func (s *Store) lookup(name string) (Parameter, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row Parameter
	err := s.db.Where("parameter_name = ?", name).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return Parameter{}, false, nil
	}
	if err != nil {
		return Parameter{}, false, err
	}
	return row, true, nil
}

func gainKey(side dsp.Side, index int) string { return fmt.Sprintf("%s_volume_%d", side, index) }
func muteKey(side dsp.Side, index int) string { return fmt.Sprintf("%s_mute_%d", side, index) }
func mixerKey(i, o int) string                { return fmt.Sprintf("routing_%d_%d", i, o) }

func filterKeyBase(side dsp.Side, index, filterID int) string {
	return fmt.Sprintf("%s_filter_%d_%d", side, index, filterID)
}

func filterAttrKey(side dsp.Side, index, filterID int, attr string) string {
	return filterKeyBase(side, index, filterID) + "_" + attr
}
