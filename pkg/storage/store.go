package storage

import (
	"context"
	"time"
)

// Delivery statuses.
const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
	StatusDropped   = "dropped"
	StatusSkipped   = "skipped"
)

// DeliveryRecord stores the outcome of processing one inbound event.
type DeliveryRecord struct {
	ID           string
	MessageID    string
	RequestID    string
	EventType    string
	EventName    string
	Call         string
	VendorEvent  string
	RuleID       string
	PayloadJSON  string
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// DeliveryFilter selects delivery rows.
type DeliveryFilter struct {
	EventType   string
	EventName   string
	Call        string
	VendorEvent string
	Status      string
	RequestID   string
	StartTime   time.Time
	EndTime     time.Time
	Limit       int
	Offset      int
}

// DeliveryStore persists delivery outcomes.
type DeliveryStore interface {
	Save(ctx context.Context, record DeliveryRecord) error
	List(ctx context.Context, filter DeliveryFilter) ([]DeliveryRecord, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	Close() error
}
