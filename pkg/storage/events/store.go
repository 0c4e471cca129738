package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gitping/internal"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config mirrors the storage configuration for the events table.
type Config struct {
	Driver      string
	DSN         string
	Dialect     string
	Table       string
	AutoMigrate bool
}

// Store implements storage.EventStore on top of GORM.
type Store struct {
	db    *gorm.DB
	table string
}

type row struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID  string `gorm:"column:request_id;size:128;not null"`
	Author     string `gorm:"column:author;size:255;not null"`
	Action     string `gorm:"column:action;size:32;not null"`
	FromBranch string `gorm:"column:from_branch;size:255"`
	ToBranch   string `gorm:"column:to_branch;size:255"`
	Timestamp  string `gorm:"column:timestamp;size:64;not null;index"`
}

// Open creates a GORM-backed events store.
func Open(cfg Config) (*Store, error) {
	if cfg.Driver == "" && cfg.Dialect == "" {
		return nil, errors.New("storage driver or dialect is required")
	}
	if cfg.DSN == "" {
		return nil, errors.New("storage dsn is required")
	}
	driver := normalizeDriver(cfg.Driver)
	if driver == "" {
		driver = normalizeDriver(cfg.Dialect)
	}
	if driver == "" {
		return nil, errors.New("unsupported storage driver")
	}

	gormDB, err := openGorm(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	table := cfg.Table
	if table == "" {
		table = "events"
	}
	store := &Store{
		db:    gormDB,
		table: table,
	}
	if cfg.AutoMigrate {
		if err := store.migrate(); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Close closes the underlying DB connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Insert persists one event and returns the assigned id.
func (s *Store) Insert(ctx context.Context, event internal.Event) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("store is not initialized")
	}
	if !event.Action.Valid() {
		return "", fmt.Errorf("%w: %q", internal.ErrInvalidAction, string(event.Action))
	}
	data := toRow(event)
	data.ID = 0
	if err := s.tableDB().WithContext(ctx).Create(&data).Error; err != nil {
		return "", err
	}
	return strconv.FormatUint(data.ID, 10), nil
}

// ListLatest returns up to limit events ordered by timestamp descending.
// A non-positive limit yields an empty slice.
func (s *Store) ListLatest(ctx context.Context, limit int) ([]internal.Event, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if limit <= 0 {
		return []internal.Event{}, nil
	}
	var data []row
	err := s.tableDB().
		WithContext(ctx).
		Order("timestamp desc, id desc").
		Limit(limit).
		Find(&data).Error
	if err != nil {
		return nil, err
	}
	events := make([]internal.Event, 0, len(data))
	for _, item := range data {
		events = append(events, fromRow(item))
	}
	return events, nil
}

// GetByID fetches one event. Malformed and unknown ids both report not found.
func (s *Store) GetByID(ctx context.Context, id string) (*internal.Event, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	key, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return nil, nil
	}
	var data row
	err = s.tableDB().
		WithContext(ctx).
		Where("id = ?", key).
		Take(&data).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	event := fromRow(data)
	return &event, nil
}

// DeleteAll clears the events table and returns the number of rows removed.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}
	result := s.tableDB().
		WithContext(ctx).
		Where("1 = 1").
		Delete(&row{})
	return result.RowsAffected, result.Error
}

func (s *Store) migrate() error {
	return s.tableDB().AutoMigrate(&row{})
}

func (s *Store) tableDB() *gorm.DB {
	return s.db.Table(s.table)
}

func toRow(event internal.Event) row {
	data := row{
		RequestID:  event.RequestID,
		Author:     event.Author,
		Action:     string(event.Action),
		FromBranch: event.FromBranch,
		ToBranch:   event.ToBranch,
		Timestamp:  event.Timestamp,
	}
	if event.ID != "" {
		if key, err := strconv.ParseUint(event.ID, 10, 64); err == nil {
			data.ID = key
		}
	}
	return data
}

func fromRow(data row) internal.Event {
	return internal.Event{
		ID:         strconv.FormatUint(data.ID, 10),
		RequestID:  data.RequestID,
		Author:     data.Author,
		Action:     internal.Action(data.Action),
		FromBranch: data.FromBranch,
		ToBranch:   data.ToBranch,
		Timestamp:  data.Timestamp,
	}
}

func normalizeDriver(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "postgres", "postgresql", "pgx":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return ""
	}
}

func openGorm(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "mysql":
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
}
