package storage

import (
	"context"

	"gitping/internal"
)

// EventStore defines the persistence interface for canonical events.
//
// Insert returns the assigned id in string form. GetByID returns (nil, nil)
// when no event matches, including ids that do not parse as store keys.
type EventStore interface {
	Insert(ctx context.Context, event internal.Event) (string, error)
	ListLatest(ctx context.Context, limit int) ([]internal.Event, error)
	GetByID(ctx context.Context, id string) (*internal.Event, error)
	DeleteAll(ctx context.Context) (int64, error)
	Close() error
}
