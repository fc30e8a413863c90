package deliveries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sailhook/pkg/storage"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config mirrors the storage configuration for the deliveries table.
type Config struct {
	Driver      string
	DSN         string
	Dialect     string
	Table       string
	AutoMigrate bool
	Pool        storage.PoolConfig
}

// Store implements storage.DeliveryStore on top of GORM.
type Store struct {
	db    *gorm.DB
	table string
}

type row struct {
	ID           string    `gorm:"column:id;size:64;primaryKey"`
	MessageID    string    `gorm:"column:message_id;size:128;index"`
	RequestID    string    `gorm:"column:request_id;size:128;index"`
	EventType    string    `gorm:"column:event_type;size:32;not null;index"`
	EventName    string    `gorm:"column:event_name;size:128;index"`
	Call         string    `gorm:"column:call_kind;size:32"`
	VendorEvent  string    `gorm:"column:vendor_event;size:128;index"`
	RuleID       string    `gorm:"column:rule_id;size:64;index"`
	PayloadJSON  string    `gorm:"column:payload_json;type:text"`
	Status       string    `gorm:"column:status;size:32;not null;index"`
	ErrorMessage string    `gorm:"column:error_message;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

// Open creates a GORM-backed deliveries store.
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
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
	gormDB, err := openGorm(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := storage.ApplyPoolConfig(gormDB, cfg.Pool); err != nil {
		return nil, err
	}
	table := cfg.Table
	if table == "" {
		table = "sailhook_deliveries"
	}
	store := &Store{db: gormDB, table: table}
	if cfg.AutoMigrate {
		if err := store.migrate(); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Save persists a delivery outcome. A missing ID is generated.
func (s *Store) Save(ctx context.Context, record storage.DeliveryRecord) error {
	data := toRow(record)
	if data.ID == "" {
		data.ID = uuid.NewString()
	}
	return s.tableDB().WithContext(ctx).Create(&data).Error
}

// List returns delivery records matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter storage.DeliveryFilter) ([]storage.DeliveryRecord, error) {
	query := s.tableDB().WithContext(ctx)
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.EventName != "" {
		query = query.Where("event_name = ?", filter.EventName)
	}
	if filter.Call != "" {
		query = query.Where("call_kind = ?", filter.Call)
	}
	if filter.VendorEvent != "" {
		query = query.Where("vendor_event = ?", filter.VendorEvent)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequestID != "" {
		query = query.Where("request_id = ?", filter.RequestID)
	}
	if !filter.StartTime.IsZero() {
		query = query.Where("created_at >= ?", filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		query = query.Where("created_at <= ?", filter.EndTime)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []row
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]storage.DeliveryRecord, 0, len(rows))
	for _, data := range rows {
		records = append(records, fromRow(data))
	}
	return records, nil
}

// CountByStatus returns delivery counts grouped by status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type bucket struct {
		Status string
		Count  int64
	}
	var buckets []bucket
	err := s.tableDB().WithContext(ctx).
		Select("status, count(*) as count").
		Group("status").
		Find(&buckets).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		counts[b.Status] = b.Count
	}
	return counts, nil
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

func (s *Store) migrate() error {
	return s.tableDB().AutoMigrate(&row{})
}

func (s *Store) tableDB() *gorm.DB {
	return s.db.Table(s.table)
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

func toRow(record storage.DeliveryRecord) row {
	return row{
		ID:           record.ID,
		MessageID:    record.MessageID,
		RequestID:    record.RequestID,
		EventType:    record.EventType,
		EventName:    record.EventName,
		Call:         record.Call,
		VendorEvent:  record.VendorEvent,
		RuleID:       record.RuleID,
		PayloadJSON:  record.PayloadJSON,
		Status:       record.Status,
		ErrorMessage: record.ErrorMessage,
		CreatedAt:    record.CreatedAt,
	}
}

func fromRow(data row) storage.DeliveryRecord {
	return storage.DeliveryRecord{
		ID:           data.ID,
		MessageID:    data.MessageID,
		RequestID:    data.RequestID,
		EventType:    data.EventType,
		EventName:    data.EventName,
		Call:         data.Call,
		VendorEvent:  data.VendorEvent,
		RuleID:       data.RuleID,
		PayloadJSON:  data.PayloadJSON,
		Status:       data.Status,
		ErrorMessage: data.ErrorMessage,
		CreatedAt:    data.CreatedAt,
	}
}
