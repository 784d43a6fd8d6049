package forward

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dipole-explorer/pkg/geometry"
)

// ErrNotFound is returned when no lookup entry exists for a grid point.
var ErrNotFound = errors.New("no forward solution for grid point")

// Entry is one precomputed forward solution: the leadfield matrix for a
// dipole at a grid position, keyed by subject. Grid coordinates are RAS
// millimeters rounded to the grid step.
type Entry struct {
	ID      uint   `gorm:"primaryKey"`
	Subject string `gorm:"uniqueIndex:idx_subject_grid;size:64"`
	XMM     int    `gorm:"uniqueIndex:idx_subject_grid;column:x_mm"`
	YMM     int    `gorm:"uniqueIndex:idx_subject_grid;column:y_mm"`
	ZMM     int    `gorm:"uniqueIndex:idx_subject_grid;column:z_mm"`

	// Leadfield is a JSON-encoded [][3]float64, one row per channel in
	// layout order.
	Leadfield datatypes.JSON
}

// Store is the SQLite-backed forward lookup table.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) a lookup table at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating lookup directory: %w", err)
		}
	}
	return open(path)
}

// OpenMemory opens an in-memory lookup table, used by tests and as a
// scratch target for cmd/fwdgen dry runs.
func OpenMemory() (*Store, error) {
	return open(":memory:")
}

func open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening forward lookup table: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating forward lookup table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Put stores the leadfield for a grid point, replacing any existing entry.
func (s *Store) Put(subject string, grid geometry.Vec3, leadfield [][3]float64) error {
	blob, err := json.Marshal(leadfield)
	if err != nil {
		return fmt.Errorf("encoding leadfield: %w", err)
	}

	entry := Entry{
		Subject:   subject,
		XMM:       int(math.Round(grid.X)),
		YMM:       int(math.Round(grid.Y)),
		ZMM:       int(math.Round(grid.Z)),
		Leadfield: datatypes.JSON(blob),
	}

	return s.db.
		Where("subject = ? AND x_mm = ? AND y_mm = ? AND z_mm = ?",
			entry.Subject, entry.XMM, entry.YMM, entry.ZMM).
		Assign(Entry{Leadfield: entry.Leadfield}).
		FirstOrCreate(&entry).Error
}

// Nearest returns the leadfield of the grid point closest to an RAS mm
// position, snapping each coordinate to the grid step. Returns
// ErrNotFound when the snapped point has no entry.
func (s *Store) Nearest(subject string, p geometry.Vec3, stepMM float64) ([][3]float64, error) {
	if stepMM <= 0 {
		stepMM = 1
	}
	snap := func(v float64) int {
		return int(math.Round(v/stepMM) * stepMM)
	}

	var entry Entry
	err := s.db.
		Where("subject = ? AND x_mm = ? AND y_mm = ? AND z_mm = ?",
			subject, snap(p.X), snap(p.Y), snap(p.Z)).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: subject %s at (%d, %d, %d) mm",
			ErrNotFound, subject, snap(p.X), snap(p.Y), snap(p.Z))
	}
	if err != nil {
		return nil, fmt.Errorf("querying forward lookup table: %w", err)
	}

	var leadfield [][3]float64
	if err := json.Unmarshal(entry.Leadfield, &leadfield); err != nil {
		return nil, fmt.Errorf("decoding leadfield: %w", err)
	}
	return leadfield, nil
}

// Count returns the number of grid entries stored for a subject.
func (s *Store) Count(subject string) (int64, error) {
	var n int64
	err := s.db.Model(&Entry{}).Where("subject = ?", subject).Count(&n).Error
	return n, err
}
